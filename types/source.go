package types

import (
	"encoding/json"
	"time"
)

// Source is a configured content origin. Created from configuration;
// only Enabled and LastScanAt change after creation.
type Source struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Config     json.RawMessage `json:"config"`
	Enabled    bool            `json:"enabled"`
	LastScanAt *time.Time      `json:"last_scan_at,omitempty"`
}

// Candidate is a raw record returned by a connector. It only exists
// in flight; it is never persisted as-is.
type Candidate struct {
	Title       string            `json:"title"`
	URL         string            `json:"url"`
	Content     string            `json:"content"`
	PublishedAt time.Time         `json:"published_at,omitzero"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// ScanResult summarizes one scan worker invocation.
type ScanResult struct {
	Scanned int `json:"scanned"`
	New     int `json:"new"`
}
