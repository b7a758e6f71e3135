// Package store persists sources, curated items, and badges in SQLite.
package store

import (
	"context"

	"curator/types"
)

// SourceStore manages the configured source registry.
type SourceStore interface {
	// EnsureSource creates the source by name if absent and returns
	// the stored row either way.
	EnsureSource(ctx context.Context, source *types.Source) error
	GetSource(ctx context.Context, id int64) (*types.Source, error)
	ListEnabledSources(ctx context.Context) ([]types.Source, error)
	SetSourceEnabled(ctx context.Context, id int64, enabled bool) error
	UpdateLastScan(ctx context.Context, id int64) error
}

// ItemStore persists curated items keyed by their deterministic id.
type ItemStore interface {
	// UpsertItem inserts or fully refreshes the item. created_at is
	// preserved on update; updated_at always advances.
	UpsertItem(ctx context.Context, item *types.Item) error
	GetItem(ctx context.Context, id string) (*types.Item, error)
	ListItems(ctx context.Context, sourceID int64, limit int) ([]types.Item, error)
}

// BadgeStore normalizes free-text tags into canonical badges.
type BadgeStore interface {
	// EnsureBadges resolves each tag to a badge, creating missing
	// ones. Matching is case-insensitive exact; a concurrent
	// duplicate-name insert resolves to the existing badge.
	EnsureBadges(ctx context.Context, tags []string) ([]types.Badge, error)
	// ReplaceItemBadges swaps the full badge set linked to an item.
	ReplaceItemBadges(ctx context.Context, itemID string, badgeIDs []int64) error
	ListItemBadges(ctx context.Context, itemID string) ([]types.Badge, error)
}
