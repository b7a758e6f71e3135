package common

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"curator/types"
)

// CandidateArchive writes raw candidate records to S3 before they are
// transformed by curation. Archival is best-effort; callers treat
// failures as log-and-continue.
type CandidateArchive struct {
	s3     *S3
	bucket string
	prefix string
}

// NewCandidateArchive wires an archive onto an S3 client. prefix may
// be empty.
func NewCandidateArchive(s3 *S3, bucket, prefix string) *CandidateArchive {
	return &CandidateArchive{s3: s3, bucket: bucket, prefix: prefix}
}

// ArchiveCandidate stores the candidate as pretty-printed JSON under
// candidates/{sourceID}/{itemID}.json.
func (a *CandidateArchive) ArchiveCandidate(ctx context.Context, sourceID int64, itemID string, candidate types.Candidate) error {
	payload, err := json.MarshalIndent(candidate, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal candidate %s: %w", itemID, err)
	}

	key := fmt.Sprintf("%scandidates/%d/%s.json", a.prefix, sourceID, itemID)
	if err := a.s3.Put(ctx, a.bucket, key, bytes.NewReader(payload), "application/json"); err != nil {
		return fmt.Errorf("upload candidate %s: %w", itemID, err)
	}
	return nil
}
