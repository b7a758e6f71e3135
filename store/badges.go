package store

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"curator/types"
)

// badgePalette supplies deterministic colors for lazily created badges.
var badgePalette = []string{
	"#2563eb", "#16a34a", "#d97706", "#dc2626", "#7c3aed",
	"#0891b2", "#be185d", "#65a30d",
}

// EnsureBadges resolves tags to badges, creating any that are missing.
// Matching is case-insensitive exact (the badges.name column is
// COLLATE NOCASE); duplicate tags within one call collapse to one
// badge. A concurrent insert of the same name loses the race at the
// unique index and resolves to the winner's row.
func (s *SQLite) EnsureBadges(ctx context.Context, tags []string) ([]types.Badge, error) {
	badges := make([]types.Badge, 0, len(tags))
	seen := map[string]bool{}

	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true

		badge, err := s.ensureBadge(ctx, tag)
		if err != nil {
			return nil, err
		}
		badges = append(badges, *badge)
	}
	return badges, nil
}

func (s *SQLite) ensureBadge(ctx context.Context, tag string) (*types.Badge, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO badges (name, color) VALUES (?, ?)
		 ON CONFLICT(name) DO NOTHING`,
		tag, badgeColor(tag),
	)
	if err != nil {
		return nil, fmt.Errorf("insert badge %q: %w", tag, err)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, color FROM badges WHERE name = ?`, tag)
	var badge types.Badge
	if err := row.Scan(&badge.ID, &badge.Name, &badge.Description, &badge.Color); err != nil {
		return nil, fmt.Errorf("reload badge %q: %w", tag, err)
	}
	return &badge, nil
}

// ReplaceItemBadges deletes the item's links and reinserts badgeIDs in
// one transaction, so the linked set always equals the latest
// curation's tags.
func (s *SQLite) ReplaceItemBadges(ctx context.Context, itemID string, badgeIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin badge link tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM item_badges WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("clear badges for item %s: %w", itemID, err)
	}

	for _, badgeID := range badgeIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO item_badges (item_id, badge_id) VALUES (?, ?)
			 ON CONFLICT(item_id, badge_id) DO NOTHING`,
			itemID, badgeID); err != nil {
			return fmt.Errorf("link badge %d to item %s: %w", badgeID, itemID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit badge links for item %s: %w", itemID, err)
	}
	return nil
}

// ListItemBadges returns the badges linked to an item.
func (s *SQLite) ListItemBadges(ctx context.Context, itemID string) ([]types.Badge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT b.id, b.name, b.description, b.color
		 FROM badges b
		 JOIN item_badges ib ON ib.badge_id = b.id
		 WHERE ib.item_id = ?
		 ORDER BY b.name`, itemID)
	if err != nil {
		return nil, fmt.Errorf("query badges for item %s: %w", itemID, err)
	}
	defer func() { _ = rows.Close() }()

	var badges []types.Badge
	for rows.Next() {
		var badge types.Badge
		if err := rows.Scan(&badge.ID, &badge.Name, &badge.Description, &badge.Color); err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		badges = append(badges, badge)
	}
	return badges, rows.Err()
}

func badgeColor(name string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(name)))
	return badgePalette[h.Sum32()%uint32(len(badgePalette))]
}
