package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"curator/types"
)

func newTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "curator_test.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestEnsureSourceIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &types.Source{
		Name:    "hacker-news",
		Type:    "rss",
		Config:  json.RawMessage(`{"feed_url":"https://news.ycombinator.com/rss"}`),
		Enabled: true,
	}
	if err := s.EnsureSource(ctx, first); err != nil {
		t.Fatalf("EnsureSource: %v", err)
	}
	if first.ID == 0 {
		t.Fatal("EnsureSource left ID unset")
	}

	// Second call with the same name returns the stored row instead of
	// creating a duplicate.
	second := &types.Source{Name: "hacker-news", Type: "html", Enabled: false}
	if err := s.EnsureSource(ctx, second); err != nil {
		t.Fatalf("EnsureSource again: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second EnsureSource id = %d, want %d", second.ID, first.ID)
	}
	if second.Type != "rss" {
		t.Errorf("second EnsureSource type = %q, want stored %q", second.Type, "rss")
	}
}

func TestGetSourceMissing(t *testing.T) {
	s := newTestStore(t)

	source, err := s.GetSource(context.Background(), 999)
	if err != nil {
		t.Fatalf("GetSource: %v", err)
	}
	if source != nil {
		t.Errorf("GetSource on missing id = %+v, want nil", source)
	}
}

func TestListEnabledSources(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := &types.Source{Name: "a", Type: "rss", Enabled: true}
	b := &types.Source{Name: "b", Type: "rss", Enabled: true}
	for _, src := range []*types.Source{a, b} {
		if err := s.EnsureSource(ctx, src); err != nil {
			t.Fatalf("EnsureSource %s: %v", src.Name, err)
		}
	}
	if err := s.SetSourceEnabled(ctx, b.ID, false); err != nil {
		t.Fatalf("SetSourceEnabled: %v", err)
	}

	sources, err := s.ListEnabledSources(ctx)
	if err != nil {
		t.Fatalf("ListEnabledSources: %v", err)
	}
	if len(sources) != 1 || sources[0].ID != a.ID {
		t.Errorf("ListEnabledSources = %+v, want only source %d", sources, a.ID)
	}
}

func TestUpdateLastScan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	src := &types.Source{Name: "a", Type: "rss", Enabled: true}
	if err := s.EnsureSource(ctx, src); err != nil {
		t.Fatalf("EnsureSource: %v", err)
	}
	if src.LastScanAt != nil {
		t.Fatalf("fresh source LastScanAt = %v, want nil", src.LastScanAt)
	}

	if err := s.UpdateLastScan(ctx, src.ID); err != nil {
		t.Fatalf("UpdateLastScan: %v", err)
	}
	stored, err := s.GetSource(ctx, src.ID)
	if err != nil {
		t.Fatalf("GetSource: %v", err)
	}
	if stored.LastScanAt == nil {
		t.Fatal("LastScanAt still nil after UpdateLastScan")
	}
	if age := time.Since(*stored.LastScanAt); age < 0 || age > time.Minute {
		t.Errorf("LastScanAt = %v, want roughly now", *stored.LastScanAt)
	}
}

func TestUpsertItemRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item := &types.Item{
		ID:                types.ItemID(1, "https://example.com/post"),
		SourceID:          1,
		Title:             "A post",
		URL:               "https://example.com/post",
		Summary:           "summary",
		Tags:              []string{"go", "testing"},
		Reason:            "worth reading",
		Score:             0.8,
		FollowUpQuestions: []string{"what next?"},
		EmbeddingRef:      "abc123",
		Metadata:          map[string]string{"author": "jane"},
	}
	if err := s.UpsertItem(ctx, item); err != nil {
		t.Fatalf("UpsertItem: %v", err)
	}

	got, err := s.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	ignoreTimes := cmpopts.IgnoreFields(types.Item{}, "CreatedAt", "UpdatedAt")
	if diff := cmp.Diff(item, got, ignoreTimes); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Errorf("timestamps not set: created=%v updated=%v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestUpsertItemSecondWriteWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := types.ItemID(1, "https://example.com/post")

	first := &types.Item{
		ID: id, SourceID: 1, Title: "v1", URL: "https://example.com/post",
		Summary: "first pass", Tags: []string{"old"}, Reason: "r1", Score: 0.2,
	}
	if err := s.UpsertItem(ctx, first); err != nil {
		t.Fatalf("UpsertItem first: %v", err)
	}

	second := &types.Item{
		ID: id, SourceID: 1, Title: "v2", URL: "https://example.com/post",
		Summary: "second pass", Tags: []string{"new"}, Reason: "r2", Score: 0.9,
	}
	if err := s.UpsertItem(ctx, second); err != nil {
		t.Fatalf("UpsertItem second: %v", err)
	}

	items, err := s.ListItems(ctx, 1, 10)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("ListItems returned %d items, want 1 after re-upsert", len(items))
	}

	got := items[0]
	if got.Title != "v2" || got.Summary != "second pass" || got.Score != 0.9 {
		t.Errorf("stored item = %+v, want second write's fields", got)
	}
	if !got.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created_at = %v, want preserved %v", got.CreatedAt, first.CreatedAt)
	}
}

func TestListItemsFiltersAndLimits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, url := range []string{"https://a.test/1", "https://a.test/2", "https://b.test/1"} {
		sourceID := int64(1)
		if i == 2 {
			sourceID = 2
		}
		item := &types.Item{
			ID: types.ItemID(sourceID, url), SourceID: sourceID,
			Title: url, URL: url, Tags: []string{},
		}
		if err := s.UpsertItem(ctx, item); err != nil {
			t.Fatalf("UpsertItem %s: %v", url, err)
		}
	}

	items, err := s.ListItems(ctx, 1, 10)
	if err != nil {
		t.Fatalf("ListItems source 1: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("ListItems source 1 returned %d items, want 2", len(items))
	}

	items, err = s.ListItems(ctx, 0, 2)
	if err != nil {
		t.Fatalf("ListItems all: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("ListItems with limit 2 returned %d items", len(items))
	}
}
