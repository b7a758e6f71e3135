// Package connector implements source-specific fetch logic. Each
// connector turns a source configuration into a list of normalized
// candidates; everything downstream (dedup, curation) is source-agnostic.
package connector

import (
	"context"
	"encoding/json"

	"curator/types"
)

// Connector fetches the current candidate list for one source
// configuration. Implementations may cache internally; callers treat
// Fetch as a pure function of config.
type Connector interface {
	// Type identifies the connector inside the router registry.
	Type() string
	Fetch(ctx context.Context, config json.RawMessage) ([]types.Candidate, error)
}
