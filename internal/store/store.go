// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists procurement listings in a SQLite database and
// answers the pipeline's duplicate and retention queries.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/bidradar/pkg/types"
)

const dateFormat = "2006-01-02"

// Store manages the listings SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at cfg.Path and ensures the schema
// exists. The parent directory is created if missing.
func Open(cfg types.StorageConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = "data/bids.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable and writable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS procurement_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT,
			organization TEXT,
			region TEXT,
			budget_amount INTEGER,
			published_date TEXT,
			deadline_date TEXT,
			source_url TEXT,
			source_type TEXT,
			relevance_score INTEGER DEFAULT 0,
			keywords_matched TEXT,
			processed INTEGER DEFAULT 0,
			notified INTEGER DEFAULT 0,
			created_at TEXT DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_published_date ON procurement_entries(published_date)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_relevance_score ON procurement_entries(relevance_score)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_source_type ON procurement_entries(source_type)`,
		`CREATE TABLE IF NOT EXISTS notification_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			entry_count INTEGER DEFAULT 0,
			success INTEGER DEFAULT 1,
			error_message TEXT,
			sent_at TEXT DEFAULT (datetime('now'))
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// ExistsByTitleAndOrg reports whether a listing with the same title and
// organization is already stored.
func (s *Store) ExistsByTitleAndOrg(ctx context.Context, title, organization string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM procurement_entries WHERE title = ? AND organization = ?`,
		title, organization,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("duplicate check: %w", err)
	}
	return count > 0, nil
}

// Insert stores one listing and returns its record ID. Matched keywords
// are serialized as a JSON array.
func (s *Store) Insert(ctx context.Context, l types.Listing) (int64, error) {
	keywords, err := json.Marshal(l.KeywordsMatched)
	if err != nil {
		return 0, fmt.Errorf("serializing keywords: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO procurement_entries (
			title, description, organization, region, budget_amount,
			published_date, deadline_date, source_url, source_type,
			relevance_score, keywords_matched, processed, notified
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0)`,
		l.Title, l.Description, l.Organization, l.Region, nullBudget(l.BudgetAmount),
		nullDate(l.PublishedDate), nullDate(l.DeadlineDate), l.SourceURL, l.SourceType,
		l.RelevanceScore, string(keywords),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting listing: %w", err)
	}
	return res.LastInsertId()
}

// PurgeOlderThan deletes entries created more than days ago and returns
// the number removed.
func (s *Store) PurgeOlderThan(ctx context.Context, days int) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM procurement_entries WHERE created_at < datetime('now', ?)`,
		fmt.Sprintf("-%d days", days),
	)
	if err != nil {
		return 0, fmt.Errorf("purging old entries: %w", err)
	}
	return res.RowsAffected()
}

// RecordNotification appends one row to the notification history.
func (s *Store) RecordNotification(ctx context.Context, kind string, count int, success bool, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notification_history (kind, entry_count, success, error_message) VALUES (?, ?, ?, ?)`,
		kind, count, success, errMsg,
	)
	if err != nil {
		return fmt.Errorf("recording notification: %w", err)
	}
	return nil
}

// StoredListing is one persisted row, with its record ID.
type StoredListing struct {
	ID int64 `json:"id"`
	types.Listing
	CreatedAt string `json:"created_at"`
}

// TopByScore returns up to limit stored listings with relevance at or
// above minScore, best first.
func (s *Store) TopByScore(ctx context.Context, minScore, limit int) ([]StoredListing, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, organization, region, budget_amount,
		        published_date, deadline_date, source_url, source_type,
		        relevance_score, keywords_matched, processed, notified, created_at
		 FROM procurement_entries
		 WHERE relevance_score >= ?
		 ORDER BY relevance_score DESC, created_at DESC
		 LIMIT ?`,
		minScore, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying listings: %w", err)
	}
	defer rows.Close()

	var out []StoredListing
	for rows.Next() {
		var (
			sl        StoredListing
			budget    sql.NullInt64
			published sql.NullString
			deadline  sql.NullString
			keywords  sql.NullString
		)
		if err := rows.Scan(
			&sl.ID, &sl.Title, &sl.Description, &sl.Organization, &sl.Region, &budget,
			&published, &deadline, &sl.SourceURL, &sl.SourceType,
			&sl.RelevanceScore, &keywords, &sl.Processed, &sl.Notified, &sl.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}
		if budget.Valid {
			v := budget.Int64
			sl.BudgetAmount = &v
		}
		sl.PublishedDate = parseStoredDate(published)
		sl.DeadlineDate = parseStoredDate(deadline)
		if keywords.Valid && keywords.String != "" {
			_ = json.Unmarshal([]byte(keywords.String), &sl.KeywordsMatched)
		}
		out = append(out, sl)
	}
	return out, rows.Err()
}

// Stats summarizes the stored data set.
type Stats struct {
	Total        int            `json:"total"`
	BySourceType map[string]int `json:"by_source_type,omitempty"`
	HighCount    int            `json:"high_count"`
	MediumCount  int            `json:"medium_count"`
}

// Stats returns row counts overall, per source type, and per tier
// threshold.
func (s *Store) Stats(ctx context.Context, cfg types.ClassifyConfig) (Stats, error) {
	stats := Stats{BySourceType: make(map[string]int)}

	if err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM procurement_entries`,
	).Scan(&stats.Total); err != nil {
		return Stats{}, fmt.Errorf("counting entries: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT source_type, count(*) FROM procurement_entries GROUP BY source_type`,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("counting by source: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var src string
		var n int
		if err := rows.Scan(&src, &n); err != nil {
			return Stats{}, fmt.Errorf("scanning source count: %w", err)
		}
		stats.BySourceType[src] = n
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	if err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM procurement_entries WHERE relevance_score >= ?`,
		cfg.HighThreshold,
	).Scan(&stats.HighCount); err != nil {
		return Stats{}, fmt.Errorf("counting high tier: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM procurement_entries WHERE relevance_score >= ? AND relevance_score < ?`,
		cfg.MediumThreshold, cfg.HighThreshold,
	).Scan(&stats.MediumCount); err != nil {
		return Stats{}, fmt.Errorf("counting medium tier: %w", err)
	}

	return stats, nil
}

func nullBudget(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(dateFormat)
}

func parseStoredDate(v sql.NullString) time.Time {
	if !v.Valid || v.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(dateFormat, v.String)
	if err != nil {
		return time.Time{}
	}
	return t
}
