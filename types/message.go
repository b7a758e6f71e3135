package types

import (
	"encoding/json"
	"time"
)

// ScanTriggerMessage is the queue payload published by the scheduler
// and consumed by the router. Immutable once enqueued.
type ScanTriggerMessage struct {
	Type           string          `json:"type"` // always "scan"
	SourceID       int64           `json:"source_id"`
	SourceType     string          `json:"source_type"`
	Config         json.RawMessage `json:"config"`
	TriggeredAt    time.Time       `json:"triggered_at"`
	Force          bool            `json:"force,omitempty"`
	DateRangeStart *time.Time      `json:"date_range_start,omitempty"`
	DateRangeEnd   *time.Time      `json:"date_range_end,omitempty"`
}

// CurationRequest asks the curator to turn one candidate into an item.
type CurationRequest struct {
	ItemID   string            `json:"item_id"`
	SourceID int64             `json:"source_id"`
	Source   string            `json:"source"`
	Title    string            `json:"title"`
	URL      string            `json:"url"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
