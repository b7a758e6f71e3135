package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"curator/types"
)

type fakeSourceLister struct {
	sources []types.Source
	listErr error
}

func (f *fakeSourceLister) ListEnabledSources(_ context.Context) ([]types.Source, error) {
	return f.sources, f.listErr
}

func (f *fakeSourceLister) GetSource(_ context.Context, id int64) (*types.Source, error) {
	for _, source := range f.sources {
		if source.ID == id {
			copied := source
			return &copied, nil
		}
	}
	return nil, nil
}

type publishedMessage struct {
	key     string
	payload types.ScanTriggerMessage
}

type fakeQueue struct {
	published []publishedMessage
	failKeys  map[string]bool
}

func (f *fakeQueue) Publish(key string, payload interface{}) error {
	if f.failKeys[key] {
		return errors.New("broker unavailable")
	}
	msg, ok := payload.(types.ScanTriggerMessage)
	if !ok {
		return errors.New("unexpected payload type")
	}
	f.published = append(f.published, publishedMessage{key: key, payload: msg})
	return nil
}

type recordingEvents struct {
	events []Event
}

func (r *recordingEvents) PublishEvent(_ context.Context, event Event) {
	r.events = append(r.events, event)
}

func (r *recordingEvents) types() []string {
	names := make([]string, len(r.events))
	for i, e := range r.events {
		names[i] = e.Type
	}
	return names
}

func testSources() []types.Source {
	return []types.Source{
		{ID: 1, Name: "feed-a", Type: "rss", Config: json.RawMessage(`{"feed_url":"https://a.test/rss"}`), Enabled: true},
		{ID: 2, Name: "site-b", Type: "html", Config: json.RawMessage(`{"page_url":"https://b.test"}`), Enabled: true},
	}
}

func TestTriggerNowEnqueuesAllEnabledSources(t *testing.T) {
	queue := &fakeQueue{}
	events := &recordingEvents{}
	sched := New(&fakeSourceLister{sources: testSources()}, queue, events, time.Hour)

	summary, err := sched.TriggerNow(context.Background(), TriggerOptions{})
	if err != nil {
		t.Fatalf("TriggerNow: %v", err)
	}
	if summary.SourcesScanned != 2 {
		t.Errorf("SourcesScanned = %d, want 2", summary.SourcesScanned)
	}
	if len(queue.published) != 2 {
		t.Fatalf("published %d messages, want 2", len(queue.published))
	}

	first := queue.published[0]
	if first.key != "1" {
		t.Errorf("message key = %q, want source id %q", first.key, "1")
	}
	if first.payload.Type != "scan" || first.payload.SourceType != "rss" {
		t.Errorf("payload = %+v, want scan trigger for rss source", first.payload)
	}
	if len(first.payload.Config) == 0 {
		t.Error("source config not carried into trigger")
	}
}

func TestTriggerNowScopesToSingleSource(t *testing.T) {
	queue := &fakeQueue{}
	sched := New(&fakeSourceLister{sources: testSources()}, queue, nil, time.Hour)

	summary, err := sched.TriggerNow(context.Background(), TriggerOptions{SourceID: 2})
	if err != nil {
		t.Fatalf("TriggerNow: %v", err)
	}
	if summary.SourcesScanned != 1 || len(queue.published) != 1 {
		t.Fatalf("summary = %+v, published = %d, want exactly source 2", summary, len(queue.published))
	}
	if queue.published[0].key != "2" {
		t.Errorf("key = %q, want %q", queue.published[0].key, "2")
	}
}

func TestTriggerNowUnknownSource(t *testing.T) {
	sched := New(&fakeSourceLister{sources: testSources()}, &fakeQueue{}, nil, time.Hour)

	if _, err := sched.TriggerNow(context.Background(), TriggerOptions{SourceID: 99}); err == nil {
		t.Fatal("TriggerNow succeeded for unknown source")
	}
}

func TestTriggerNowCarriesForceAndDateRange(t *testing.T) {
	queue := &fakeQueue{}
	sched := New(&fakeSourceLister{sources: testSources()}, queue, nil, time.Hour)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	_, err := sched.TriggerNow(context.Background(), TriggerOptions{
		Force:          true,
		DateRangeStart: &start,
		DateRangeEnd:   &end,
	})
	if err != nil {
		t.Fatalf("TriggerNow: %v", err)
	}

	for _, published := range queue.published {
		msg := published.payload
		if !msg.Force {
			t.Errorf("message for source %d lost the force flag", msg.SourceID)
		}
		if msg.DateRangeStart == nil || !msg.DateRangeStart.Equal(start) {
			t.Errorf("message for source %d lost the date range start", msg.SourceID)
		}
		if msg.DateRangeEnd == nil || !msg.DateRangeEnd.Equal(end) {
			t.Errorf("message for source %d lost the date range end", msg.SourceID)
		}
	}
}

func TestCycleContinuesPastEnqueueFailure(t *testing.T) {
	queue := &fakeQueue{failKeys: map[string]bool{"1": true}}
	events := &recordingEvents{}
	sched := New(&fakeSourceLister{sources: testSources()}, queue, events, time.Hour)

	summary, err := sched.TriggerNow(context.Background(), TriggerOptions{})
	if err != nil {
		t.Fatalf("TriggerNow: %v", err)
	}
	if summary.SourcesScanned != 1 {
		t.Errorf("SourcesScanned = %d, want 1 (source 1's enqueue failed)", summary.SourcesScanned)
	}
	if len(queue.published) != 1 || queue.published[0].key != "2" {
		t.Errorf("published = %+v, want only source 2", queue.published)
	}

	// The cycle still completes and says so.
	names := events.types()
	if names[len(names)-1] != EventScanCompleted {
		t.Errorf("last event = %q, want %q", names[len(names)-1], EventScanCompleted)
	}
}

func TestCycleEnumerationFailure(t *testing.T) {
	events := &recordingEvents{}
	lister := &fakeSourceLister{listErr: errors.New("database locked")}
	sched := New(lister, &fakeQueue{}, events, time.Hour)

	if _, err := sched.TriggerNow(context.Background(), TriggerOptions{}); err == nil {
		t.Fatal("TriggerNow succeeded despite enumeration failure")
	}

	names := events.types()
	if len(names) == 0 || names[len(names)-1] != EventScanFailed {
		t.Errorf("events = %v, want trailing %q", names, EventScanFailed)
	}

	// A failed cycle must not wedge the scheduler: the next trigger
	// after the lister recovers works.
	lister.listErr = nil
	lister.sources = testSources()
	summary, err := sched.TriggerNow(context.Background(), TriggerOptions{})
	if err != nil {
		t.Fatalf("TriggerNow after recovery: %v", err)
	}
	if summary.SourcesScanned != 2 {
		t.Errorf("SourcesScanned after recovery = %d, want 2", summary.SourcesScanned)
	}
}

func TestCycleEmitsProgressEvents(t *testing.T) {
	events := &recordingEvents{}
	sched := New(&fakeSourceLister{sources: testSources()[:1]}, &fakeQueue{}, events, time.Hour)

	if _, err := sched.TriggerNow(context.Background(), TriggerOptions{}); err != nil {
		t.Fatalf("TriggerNow: %v", err)
	}

	want := []string{EventScanStarted, EventSourcesLoaded, EventSourceEnqueuing, EventSourceEnqueued, EventScanCompleted}
	got := events.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestGetStatusTracksTimerState(t *testing.T) {
	sched := New(&fakeSourceLister{sources: testSources()}, &fakeQueue{}, nil, 10*time.Millisecond)

	status := sched.GetStatus()
	if status.Active || status.LastRunAt != nil {
		t.Errorf("fresh scheduler status = %+v, want inactive with no runs", status)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sched.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		status = sched.GetStatus()
		if status.Active && status.LastRunAt != nil && status.NextFireAt != nil {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("scheduler never ran a cycle, status = %+v", status)
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done
	if status := sched.GetStatus(); status.Active {
		t.Error("scheduler still active after Run returned")
	}
}
