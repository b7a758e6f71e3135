// Package scheduler drives periodic and on-demand scan cycles by
// publishing one scan-trigger message per enabled source.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"curator/types"
)

// SourceLister loads the sources a cycle should cover.
type SourceLister interface {
	ListEnabledSources(ctx context.Context) ([]types.Source, error)
	GetSource(ctx context.Context, id int64) (*types.Source, error)
}

// QueuePublisher publishes a keyed message onto the work queue.
// Satisfied by kafka.Producer.
type QueuePublisher interface {
	Publish(key string, payload interface{}) error
}

// TriggerOptions scope an on-demand scan cycle.
type TriggerOptions struct {
	SourceID       int64      `json:"source_id,omitempty"`
	Force          bool       `json:"force,omitempty"`
	DateRangeStart *time.Time `json:"date_range_start,omitempty"`
	DateRangeEnd   *time.Time `json:"date_range_end,omitempty"`
}

// TriggerSummary reports what an on-demand trigger did.
type TriggerSummary struct {
	SourcesScanned int   `json:"sources_scanned"`
	DurationMs     int64 `json:"duration_ms"`
}

// Status describes the scheduler's timer state.
type Status struct {
	LastRunAt  *time.Time `json:"last_run_at,omitempty"`
	NextFireAt *time.Time `json:"next_fire_at,omitempty"`
	Active     bool       `json:"active"`
}

// Scheduler owns the recurring scan timer and the on-demand trigger
// entry point. A failed cycle never stops the timer: the next fire is
// always scheduled at now + interval.
type Scheduler struct {
	sources  SourceLister
	queue    QueuePublisher
	events   EventPublisher
	interval time.Duration

	mu         sync.Mutex
	lastRunAt  *time.Time
	nextFireAt *time.Time
	active     bool
}

// New builds a scheduler. events may be nil to disable progress
// broadcasting.
func New(sources SourceLister, queue QueuePublisher, events EventPublisher, interval time.Duration) *Scheduler {
	if events == nil {
		events = NopEventPublisher{}
	}
	return &Scheduler{
		sources:  sources,
		queue:    queue,
		events:   events,
		interval: interval,
	}
}

// Run starts the timer loop, blocking until ctx is cancelled. Cycle
// failures are logged; forward progress is unconditional.
func (s *Scheduler) Run(ctx context.Context) {
	s.setActive(true)
	defer s.setActive(false)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.setNextFire(time.Now().Add(s.interval))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.runCycle(ctx, TriggerOptions{}); err != nil {
				log.Printf("Scheduled scan cycle failed: %v", err)
			}
			s.setNextFire(time.Now().Add(s.interval))
		}
	}
}

// TriggerNow runs one cycle immediately, scoped to a single source
// when opts.SourceID is set.
func (s *Scheduler) TriggerNow(ctx context.Context, opts TriggerOptions) (*TriggerSummary, error) {
	return s.runCycle(ctx, opts)
}

// GetStatus reports timer state.
func (s *Scheduler) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		LastRunAt:  s.lastRunAt,
		NextFireAt: s.nextFireAt,
		Active:     s.active,
	}
}

// runCycle enumerates target sources and publishes one trigger per
// source. A source-enumeration failure degrades the cycle to a no-op;
// a single enqueue failure is logged and the cycle continues.
func (s *Scheduler) runCycle(ctx context.Context, opts TriggerOptions) (*TriggerSummary, error) {
	started := time.Now()
	s.events.PublishEvent(ctx, Event{Type: EventScanStarted, Timestamp: started})

	sources, err := s.loadSources(ctx, opts)
	if err != nil {
		s.events.PublishEvent(ctx, Event{Type: EventScanFailed, Error: err.Error(), Timestamp: time.Now()})
		return nil, fmt.Errorf("load sources: %w", err)
	}
	s.events.PublishEvent(ctx, Event{Type: EventSourcesLoaded, Count: len(sources), Timestamp: time.Now()})

	enqueued := 0
	for _, source := range sources {
		s.events.PublishEvent(ctx, Event{
			Type: EventSourceEnqueuing, SourceID: source.ID, SourceName: source.Name, Timestamp: time.Now(),
		})

		msg := types.ScanTriggerMessage{
			Type:           "scan",
			SourceID:       source.ID,
			SourceType:     source.Type,
			Config:         source.Config,
			TriggeredAt:    started,
			Force:          opts.Force,
			DateRangeStart: opts.DateRangeStart,
			DateRangeEnd:   opts.DateRangeEnd,
		}

		if err := s.queue.Publish(strconv.FormatInt(source.ID, 10), msg); err != nil {
			log.Printf("Failed to enqueue scan for source %d (%s): %v", source.ID, source.Name, err)
			continue
		}

		enqueued++
		s.events.PublishEvent(ctx, Event{
			Type: EventSourceEnqueued, SourceID: source.ID, SourceName: source.Name, Timestamp: time.Now(),
		})
	}

	now := time.Now()
	s.mu.Lock()
	s.lastRunAt = &now
	s.mu.Unlock()

	s.events.PublishEvent(ctx, Event{Type: EventScanCompleted, Count: enqueued, Timestamp: now})
	log.Printf("Scan cycle enqueued %d/%d sources in %s", enqueued, len(sources), now.Sub(started).Round(time.Millisecond))

	return &TriggerSummary{
		SourcesScanned: enqueued,
		DurationMs:     now.Sub(started).Milliseconds(),
	}, nil
}

func (s *Scheduler) loadSources(ctx context.Context, opts TriggerOptions) ([]types.Source, error) {
	if opts.SourceID > 0 {
		source, err := s.sources.GetSource(ctx, opts.SourceID)
		if err != nil {
			return nil, err
		}
		if source == nil {
			return nil, fmt.Errorf("source %d not found", opts.SourceID)
		}
		return []types.Source{*source}, nil
	}
	return s.sources.ListEnabledSources(ctx)
}

func (s *Scheduler) setActive(active bool) {
	s.mu.Lock()
	s.active = active
	s.mu.Unlock()
}

func (s *Scheduler) setNextFire(t time.Time) {
	s.mu.Lock()
	s.nextFireAt = &t
	s.mu.Unlock()
}
