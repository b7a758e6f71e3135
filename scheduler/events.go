package scheduler

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event is one progress notification from a scan cycle. Events are an
// observability feed for live observers, not part of the correctness
// contract: publishing is fire-and-forget and never blocks a cycle.
type Event struct {
	Type       string    `json:"type"`
	SourceID   int64     `json:"source_id,omitempty"`
	SourceName string    `json:"source_name,omitempty"`
	Count      int       `json:"count,omitempty"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Event types emitted over one cycle.
const (
	EventScanStarted     = "scan_started"
	EventSourcesLoaded   = "sources_loaded"
	EventSourceEnqueuing = "source_enqueuing"
	EventSourceEnqueued  = "source_enqueued"
	EventScanCompleted   = "scan_completed"
	EventScanFailed      = "scan_failed"
)

// EventPublisher broadcasts progress events to observers.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event Event)
}

// RedisEventPublisher broadcasts events on a Redis pub/sub channel.
type RedisEventPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisEventPublisher wires the publisher onto an existing client.
func NewRedisEventPublisher(client *redis.Client, channel string) *RedisEventPublisher {
	return &RedisEventPublisher{client: client, channel: channel}
}

// PublishEvent sends the event; failures are logged and swallowed.
func (p *RedisEventPublisher) PublishEvent(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal progress event: %v", err)
		return
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		log.Printf("Failed to publish progress event %s: %v", event.Type, err)
	}
}

// NopEventPublisher discards events; used when no observer transport
// is configured.
type NopEventPublisher struct{}

func (NopEventPublisher) PublishEvent(context.Context, Event) {}
