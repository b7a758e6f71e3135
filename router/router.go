// Package router delivers scan-trigger messages to the scan worker
// registered for their source type.
package router

import (
	"context"
	"encoding/json"
	"log"

	"curator/scanner"
	"curator/types"
)

// Router consumes scan-trigger messages and dispatches them to the
// worker keyed by source type. It implements kafka.MessageHandler:
// permanent conditions (malformed payload, unknown source type) mark
// the message so it is dropped; transient scan failures leave it
// unmarked so the queue redelivers it. Scans are idempotent, so
// duplicate delivery of one trigger is safe.
type Router struct {
	workers map[string]*scanner.Worker
}

// New creates a router over the given workers, keyed by their
// connector type.
func New(workers ...*scanner.Worker) *Router {
	byType := make(map[string]*scanner.Worker, len(workers))
	for _, worker := range workers {
		byType[worker.Type()] = worker
	}
	return &Router{workers: byType}
}

// Register adds or replaces the worker for a source type.
func (r *Router) Register(worker *scanner.Worker) {
	r.workers[worker.Type()] = worker
}

// HandleMessage routes one scan-trigger message.
func (r *Router) HandleMessage(ctx context.Context, message []byte) (bool, error) {
	var msg types.ScanTriggerMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Printf("Dropping malformed scan trigger: %v", err)
		return true, nil
	}

	if msg.Type != "scan" || msg.SourceID <= 0 {
		log.Printf("Dropping invalid scan trigger (type=%q, source_id=%d)", msg.Type, msg.SourceID)
		return true, nil
	}

	worker, ok := r.workers[msg.SourceType]
	if !ok {
		// Permanent condition: no amount of redelivery makes an
		// unconfigured source type routable.
		log.Printf("Dropping scan trigger for unknown source type %q (source %d)", msg.SourceType, msg.SourceID)
		return true, nil
	}

	result, err := worker.Scan(ctx, &msg)
	if err != nil {
		log.Printf("Scan failed for source %d (%s), leaving for redelivery: %v", msg.SourceID, msg.SourceType, err)
		return false, err
	}

	log.Printf("Scan trigger for source %d handled: scanned=%d new=%d", msg.SourceID, result.Scanned, result.New)
	return true, nil
}
