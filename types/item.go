package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Item is a curated, persisted record. Its ID is a content address
// derived from (sourceID, url), so re-curating the same URL always
// lands on the same row.
type Item struct {
	ID                string            `json:"id"`
	SourceID          int64             `json:"source_id"`
	Title             string            `json:"title"`
	URL               string            `json:"url"`
	Summary           string            `json:"summary"`
	Tags              []string          `json:"tags"`
	Reason            string            `json:"reason"`
	Score             float64           `json:"score"`
	FollowUpQuestions []string          `json:"follow_up_questions,omitempty"`
	EmbeddingRef      string            `json:"embedding_ref,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// Badge is a canonical tag. Name matching is case-insensitive exact.
type Badge struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// ItemID derives the stable item identifier for a (source, url) pair.
func ItemID(sourceID int64, url string) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%d|%s", sourceID, url)))
	return hex.EncodeToString(hash[:])[:16]
}
