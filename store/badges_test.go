package store

import (
	"context"
	"testing"

	"curator/types"
)

func TestEnsureBadgesCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.EnsureBadges(ctx, []string{"AI"})
	if err != nil {
		t.Fatalf("EnsureBadges: %v", err)
	}
	second, err := s.EnsureBadges(ctx, []string{"ai"})
	if err != nil {
		t.Fatalf("EnsureBadges lowercase: %v", err)
	}

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("EnsureBadges counts = %d, %d, want 1 each", len(first), len(second))
	}
	if second[0].ID != first[0].ID {
		t.Errorf("badge ids differ for AI/ai: %d vs %d", first[0].ID, second[0].ID)
	}
	// The original spelling sticks.
	if second[0].Name != "AI" {
		t.Errorf("badge name = %q, want first spelling %q", second[0].Name, "AI")
	}
}

func TestEnsureBadgesDedupesAndSkipsBlanks(t *testing.T) {
	s := newTestStore(t)

	badges, err := s.EnsureBadges(context.Background(), []string{"go", "Go", "  ", "", "kafka"})
	if err != nil {
		t.Fatalf("EnsureBadges: %v", err)
	}
	if len(badges) != 2 {
		t.Fatalf("EnsureBadges returned %d badges, want 2: %+v", len(badges), badges)
	}
	if badges[0].Name != "go" || badges[1].Name != "kafka" {
		t.Errorf("badges = %+v, want go, kafka", badges)
	}
	for _, badge := range badges {
		if badge.Color == "" {
			t.Errorf("badge %q has no color", badge.Name)
		}
	}
}

func TestReplaceItemBadges(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	item := &types.Item{
		ID: types.ItemID(1, "https://example.com/post"), SourceID: 1,
		Title: "p", URL: "https://example.com/post", Tags: []string{},
	}
	if err := s.UpsertItem(ctx, item); err != nil {
		t.Fatalf("UpsertItem: %v", err)
	}

	badges, err := s.EnsureBadges(ctx, []string{"alpha", "beta", "gamma"})
	if err != nil {
		t.Fatalf("EnsureBadges: %v", err)
	}

	if err := s.ReplaceItemBadges(ctx, item.ID, []int64{badges[0].ID, badges[1].ID}); err != nil {
		t.Fatalf("ReplaceItemBadges: %v", err)
	}
	// Re-curation replaces the whole set, not just adds.
	if err := s.ReplaceItemBadges(ctx, item.ID, []int64{badges[1].ID, badges[2].ID}); err != nil {
		t.Fatalf("ReplaceItemBadges again: %v", err)
	}

	linked, err := s.ListItemBadges(ctx, item.ID)
	if err != nil {
		t.Fatalf("ListItemBadges: %v", err)
	}
	if len(linked) != 2 {
		t.Fatalf("ListItemBadges returned %d badges, want 2", len(linked))
	}
	if linked[0].Name != "beta" || linked[1].Name != "gamma" {
		t.Errorf("linked badges = %+v, want beta, gamma", linked)
	}
}

func TestBadgeColorDeterministic(t *testing.T) {
	if badgeColor("Kafka") != badgeColor("kafka") {
		t.Error("badgeColor should be case-insensitive")
	}
	color := badgeColor("anything")
	found := false
	for _, c := range badgePalette {
		if c == color {
			found = true
		}
	}
	if !found {
		t.Errorf("badgeColor %q not in palette", color)
	}
}
