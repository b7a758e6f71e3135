// Package scanner implements the per-source scan workers: fetch
// candidates, filter out already-seen URLs, and dispatch curation
// requests for the rest.
package scanner

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"curator/connector"
	"curator/deduplication"
	"curator/types"
)

// Dispatcher hands a curation request to the downstream stage,
// typically a queue publish.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *types.CurationRequest) error
}

// Archiver stores a best-effort raw copy of a dispatched candidate.
type Archiver interface {
	ArchiveCandidate(ctx context.Context, sourceID int64, itemID string, candidate types.Candidate) error
}

// LastScanRecorder stamps a source's last successful scan time.
type LastScanRecorder interface {
	UpdateLastScan(ctx context.Context, sourceID int64) error
}

// Worker scans sources of one connector type. It owns the seen-URL
// state for those sources; scans of the same source id serialize on a
// per-id mutex so the read-modify-write of the seen set never loses
// updates, while different sources scan fully in parallel.
type Worker struct {
	connector connector.Connector
	seen      deduplication.SeenStore
	dispatch  Dispatcher
	archive   Archiver         // optional
	lastScan  LastScanRecorder // optional

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewWorker builds a scan worker for one connector. archive and
// lastScan may be nil.
func NewWorker(conn connector.Connector, seen deduplication.SeenStore, dispatch Dispatcher,
	archive Archiver, lastScan LastScanRecorder) *Worker {
	return &Worker{
		connector: conn,
		seen:      seen,
		dispatch:  dispatch,
		archive:   archive,
		lastScan:  lastScan,
		locks:     make(map[int64]*sync.Mutex),
	}
}

// Type reports which source type this worker handles.
func (w *Worker) Type() string {
	return w.connector.Type()
}

// Scan executes one scan for the triggering message's source.
// A connector failure aborts the scan before any seen-set change and
// propagates so the delivery layer can retry. A dispatch failure for
// one candidate is logged, the candidate is still marked seen, and the
// scan continues; re-curating it later is safe but not guaranteed.
func (w *Worker) Scan(ctx context.Context, msg *types.ScanTriggerMessage) (*types.ScanResult, error) {
	lock := w.sourceLock(msg.SourceID)
	lock.Lock()
	defer lock.Unlock()

	started := time.Now()

	candidates, err := w.connector.Fetch(ctx, msg.Config)
	if err != nil {
		return nil, fmt.Errorf("fetch candidates for source %d (%s): %w", msg.SourceID, w.Type(), err)
	}

	seen, err := w.seen.Members(ctx, msg.SourceID)
	if err != nil {
		return nil, err
	}

	result := &types.ScanResult{Scanned: len(candidates)}
	var newKeys []string

	for _, candidate := range candidates {
		if candidate.URL == "" {
			continue
		}
		if !withinDateRange(candidate.PublishedAt, msg.DateRangeStart, msg.DateRangeEnd) {
			continue
		}

		key := deduplication.NormalizeURL(candidate.URL)
		if !msg.Force && seen[key] {
			continue
		}

		itemID := types.ItemID(msg.SourceID, candidate.URL)
		req := &types.CurationRequest{
			ItemID:   itemID,
			SourceID: msg.SourceID,
			Source:   msg.SourceType,
			Title:    candidate.Title,
			URL:      candidate.URL,
			Content:  candidate.Content,
			Metadata: candidate.Metadata,
		}

		if err := w.dispatch.Dispatch(ctx, req); err != nil {
			// Marked seen regardless: one bad candidate must not turn
			// every redelivery of this trigger into a dispatch storm.
			log.Printf("Failed to dispatch curation for %s (source %d): %v", candidate.URL, msg.SourceID, err)
		} else {
			result.New++
		}

		if !seen[key] {
			seen[key] = true
			newKeys = append(newKeys, key)
		}

		if w.archive != nil {
			if err := w.archive.ArchiveCandidate(ctx, msg.SourceID, itemID, candidate); err != nil {
				log.Printf("Failed to archive candidate %s: %v", candidate.URL, err)
			}
		}
	}

	if err := w.seen.Add(ctx, msg.SourceID, newKeys); err != nil {
		return nil, err
	}

	if w.lastScan != nil {
		if err := w.lastScan.UpdateLastScan(ctx, msg.SourceID); err != nil {
			log.Printf("Failed to record last scan for source %d: %v", msg.SourceID, err)
		}
	}

	log.Printf("Scanned source %d (%s): %d candidates, %d new, took %s",
		msg.SourceID, w.Type(), result.Scanned, result.New, time.Since(started).Round(time.Millisecond))
	return result, nil
}

// withinDateRange applies the optional publication-date window.
// Candidates without a parseable timestamp pass (fail-open): the
// connector may simply not have timestamped them, and silently
// dropping content is worse than over-including it. The end bound is
// inclusive of the whole end day: [start, end+1day).
func withinDateRange(publishedAt time.Time, start, end *time.Time) bool {
	if publishedAt.IsZero() {
		return true
	}
	if start != nil && publishedAt.Before(*start) {
		return false
	}
	if end != nil && !publishedAt.Before(end.Add(24*time.Hour)) {
		return false
	}
	return true
}

func (w *Worker) sourceLock(sourceID int64) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()
	lock, ok := w.locks[sourceID]
	if !ok {
		lock = &sync.Mutex{}
		w.locks[sourceID] = lock
	}
	return lock
}
