package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"curator/migrations"
	"curator/types"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements SourceStore, ItemStore and BadgeStore backed by
// one SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// EnsureSource inserts the source if no row with its name exists, then
// loads the stored row into source.
func (s *SQLite) EnsureSource(ctx context.Context, source *types.Source) error {
	config := source.Config
	if len(config) == 0 {
		config = json.RawMessage("{}")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sources (name, type, config, enabled)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO NOTHING`,
		source.Name, source.Type, string(config), boolToInt(source.Enabled),
	)
	if err != nil {
		return fmt.Errorf("insert source: %w", err)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, type, config, enabled, last_scan_at
		 FROM sources WHERE name = ?`, source.Name,
	)
	stored, err := scanSource(row)
	if err != nil {
		return fmt.Errorf("reload source %q: %w", source.Name, err)
	}
	*source = *stored
	return nil
}

// GetSource returns a single source by id, or nil when absent.
func (s *SQLite) GetSource(ctx context.Context, id int64) (*types.Source, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, type, config, enabled, last_scan_at
		 FROM sources WHERE id = ?`, id,
	)
	source, err := scanSource(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get source %d: %w", id, err)
	}
	return source, nil
}

// ListEnabledSources returns every enabled source.
func (s *SQLite) ListEnabledSources(ctx context.Context) ([]types.Source, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, type, config, enabled, last_scan_at
		 FROM sources WHERE enabled = 1 ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("query enabled sources: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sources []types.Source
	for rows.Next() {
		source, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, *source)
	}
	return sources, rows.Err()
}

// SetSourceEnabled flips the enabled flag.
func (s *SQLite) SetSourceEnabled(ctx context.Context, id int64, enabled bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sources SET enabled = ? WHERE id = ?`, boolToInt(enabled), id)
	if err != nil {
		return fmt.Errorf("set source %d enabled: %w", id, err)
	}
	return nil
}

// UpdateLastScan stamps the source's last scan time with now.
func (s *SQLite) UpdateLastScan(ctx context.Context, id int64) error {
	now := time.Now().UTC().Format(timeLayout)
	_, err := s.db.ExecContext(ctx,
		`UPDATE sources SET last_scan_at = ? WHERE id = ?`, now, id)
	if err != nil {
		return fmt.Errorf("update last scan for source %d: %w", id, err)
	}
	return nil
}

// UpsertItem inserts or replaces the item's curated fields, keeping
// created_at from the first insert.
func (s *SQLite) UpsertItem(ctx context.Context, item *types.Item) error {
	now := time.Now().UTC()
	tags, err := json.Marshal(emptyIfNil(item.Tags))
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	questions, err := json.Marshal(emptyIfNil(item.FollowUpQuestions))
	if err != nil {
		return fmt.Errorf("marshal follow-up questions: %w", err)
	}
	metadata, err := json.Marshal(item.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	nowStr := now.Format(timeLayout)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO items (id, source_id, title, url, summary, tags, reason, score,
		                    follow_up_questions, embedding_ref, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   url = excluded.url,
		   summary = excluded.summary,
		   tags = excluded.tags,
		   reason = excluded.reason,
		   score = excluded.score,
		   follow_up_questions = excluded.follow_up_questions,
		   embedding_ref = excluded.embedding_ref,
		   metadata = excluded.metadata,
		   updated_at = excluded.updated_at`,
		item.ID, item.SourceID, item.Title, item.URL, item.Summary, string(tags),
		item.Reason, item.Score, string(questions), item.EmbeddingRef, string(metadata),
		nowStr, nowStr,
	)
	if err != nil {
		return fmt.Errorf("upsert item %s: %w", item.ID, err)
	}

	// Reflect stored timestamps back onto the caller's struct.
	row := s.db.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM items WHERE id = ?`, item.ID)
	var createdAt, updatedAt string
	if err := row.Scan(&createdAt, &updatedAt); err != nil {
		return fmt.Errorf("reload item %s: %w", item.ID, err)
	}
	item.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	item.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return nil
}

// GetItem returns a single item by id, or nil when absent.
func (s *SQLite) GetItem(ctx context.Context, id string) (*types.Item, error) {
	row := s.db.QueryRowContext(ctx, itemSelect+` WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}
	return item, nil
}

// ListItems returns recent items, optionally filtered by source.
func (s *SQLite) ListItems(ctx context.Context, sourceID int64, limit int) ([]types.Item, error) {
	if limit <= 0 {
		limit = 50
	}

	var (
		rows *sql.Rows
		err  error
	)
	if sourceID > 0 {
		rows, err = s.db.QueryContext(ctx,
			itemSelect+` WHERE source_id = ? ORDER BY updated_at DESC LIMIT ?`, sourceID, limit)
	} else {
		rows, err = s.db.QueryContext(ctx,
			itemSelect+` ORDER BY updated_at DESC LIMIT ?`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []types.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

const itemSelect = `SELECT id, source_id, title, url, summary, tags, reason, score,
       follow_up_questions, embedding_ref, metadata, created_at, updated_at FROM items`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*types.Item, error) {
	var (
		item                 types.Item
		tags, questions      string
		metadata             string
		createdAt, updatedAt string
	)
	err := row.Scan(&item.ID, &item.SourceID, &item.Title, &item.URL, &item.Summary,
		&tags, &item.Reason, &item.Score, &questions, &item.EmbeddingRef, &metadata,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tags), &item.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	if err := json.Unmarshal([]byte(questions), &item.FollowUpQuestions); err != nil {
		return nil, fmt.Errorf("unmarshal follow-up questions: %w", err)
	}
	if metadata != "" && metadata != "null" {
		if err := json.Unmarshal([]byte(metadata), &item.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	item.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	item.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return &item, nil
}

func scanSource(row rowScanner) (*types.Source, error) {
	var (
		source     types.Source
		config     string
		enabled    int
		lastScanAt sql.NullString
	)
	err := row.Scan(&source.ID, &source.Name, &source.Type, &config, &enabled, &lastScanAt)
	if err != nil {
		return nil, err
	}
	source.Config = json.RawMessage(config)
	source.Enabled = enabled != 0
	if lastScanAt.Valid {
		if t, err := time.Parse(timeLayout, lastScanAt.String); err == nil {
			source.LastScanAt = &t
		}
	}
	return &source, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
