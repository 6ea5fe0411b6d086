package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"ideascout/internal/model"
)

// SQLiteStore implements IdeaStore, ConfigStore, and RunStore on one database.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS ideas (
	id TEXT PRIMARY KEY,
	brand_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	source TEXT NOT NULL,
	source_url TEXT NOT NULL DEFAULT '',
	metadata TEXT NOT NULL DEFAULT '{}',
	discovered_at TIMESTAMP NOT NULL,
	virality REAL NOT NULL DEFAULT 0,
	relevance REAL NOT NULL DEFAULT 0,
	competition REAL NOT NULL DEFAULT 0,
	timeliness REAL NOT NULL DEFAULT 0,
	overall_score REAL NOT NULL DEFAULT 0,
	priority TEXT NOT NULL DEFAULT 'low',
	status TEXT NOT NULL DEFAULT 'new',
	keywords TEXT NOT NULL DEFAULT '[]',
	platforms TEXT NOT NULL DEFAULT '[]',
	category TEXT NOT NULL DEFAULT '',
	content_type TEXT NOT NULL DEFAULT '',
	brief TEXT NOT NULL DEFAULT '',
	research TEXT
);
CREATE INDEX IF NOT EXISTS idx_ideas_brand_discovered ON ideas(brand_id, discovered_at);

CREATE TABLE IF NOT EXISTS discovery_configs (
	brand_id TEXT PRIMARY KEY,
	config TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS discovery_runs (
	id TEXT PRIMARY KEY,
	brand_id TEXT NOT NULL,
	status TEXT NOT NULL,
	started_at TIMESTAMP NOT NULL,
	finished_at TIMESTAMP,
	payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_brand_started ON discovery_runs(brand_id, started_at);
`

// OpenSQLite opens (and migrates) the database at path. Use ":memory:" for
// tests.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) Create(ctx context.Context, idea *model.Idea) error {
	metadata, err := json.Marshal(orEmptyMap(idea.Metadata))
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	keywords, _ := json.Marshal(orEmptySlice(idea.Keywords))
	platforms, _ := json.Marshal(orEmptySlice(idea.Platforms))
	var research any
	if idea.Research != nil {
		b, err := json.Marshal(idea.Research)
		if err != nil {
			return fmt.Errorf("marshal research: %w", err)
		}
		research = string(b)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO ideas (id, brand_id, title, description, source, source_url, metadata,
			discovered_at, virality, relevance, competition, timeliness, overall_score,
			priority, status, keywords, platforms, category, content_type, brief, research)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		idea.ID, idea.BrandID, idea.Title, idea.Description, idea.Source, idea.SourceURL,
		string(metadata), idea.DiscoveredAt.UTC(), idea.Scores.Virality, idea.Scores.Relevance,
		idea.Scores.Competition, idea.Scores.Timeliness, idea.OverallScore,
		string(idea.Priority), string(idea.Status), string(keywords), string(platforms),
		idea.Category, idea.ContentType, idea.Brief, research)
	if err != nil {
		return fmt.Errorf("insert idea: %w", err)
	}
	return nil
}

const ideaColumns = `id, brand_id, title, description, source, source_url, metadata,
	discovered_at, virality, relevance, competition, timeliness, overall_score,
	priority, status, keywords, platforms, category, content_type, brief, research`

func (s *SQLiteStore) Recent(ctx context.Context, brandID string, limit int) ([]model.Idea, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+ideaColumns+` FROM ideas
		WHERE brand_id = ? ORDER BY discovered_at DESC LIMIT ?`, brandID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent ideas: %w", err)
	}
	defer rows.Close()
	return scanIdeas(rows)
}

func (s *SQLiteStore) CountSince(ctx context.Context, brandID string, cutoff time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM ideas WHERE brand_id = ? AND discovered_at >= ?`,
		brandID, cutoff.UTC()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count ideas: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) FindByBrand(ctx context.Context, brandID string, status model.Status, limit int) ([]model.Idea, error) {
	query := `SELECT ` + ideaColumns + ` FROM ideas WHERE brand_id = ?`
	args := []any{brandID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY overall_score DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ideas: %w", err)
	}
	defer rows.Close()
	return scanIdeas(rows)
}

func scanIdeas(rows *sql.Rows) ([]model.Idea, error) {
	var out []model.Idea
	for rows.Next() {
		var idea model.Idea
		var metadata, keywords, platforms, priority, status string
		var research sql.NullString
		if err := rows.Scan(&idea.ID, &idea.BrandID, &idea.Title, &idea.Description,
			&idea.Source, &idea.SourceURL, &metadata, &idea.DiscoveredAt,
			&idea.Scores.Virality, &idea.Scores.Relevance, &idea.Scores.Competition,
			&idea.Scores.Timeliness, &idea.OverallScore, &priority, &status,
			&keywords, &platforms, &idea.Category, &idea.ContentType, &idea.Brief,
			&research); err != nil {
			return nil, fmt.Errorf("scan idea: %w", err)
		}
		idea.Priority = model.Priority(priority)
		idea.Status = model.Status(status)
		_ = json.Unmarshal([]byte(metadata), &idea.Metadata)
		_ = json.Unmarshal([]byte(keywords), &idea.Keywords)
		_ = json.Unmarshal([]byte(platforms), &idea.Platforms)
		if research.Valid {
			_ = json.Unmarshal([]byte(research.String), &idea.Research)
		}
		out = append(out, idea)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetOrCreateWithDefaults(ctx context.Context, brandID string) (model.DiscoveryConfig, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT config FROM discovery_configs WHERE brand_id = ?`, brandID).Scan(&payload)
	switch {
	case err == sql.ErrNoRows:
		cfg := model.DefaultDiscoveryConfig(brandID)
		b, merr := json.Marshal(cfg)
		if merr != nil {
			return model.DiscoveryConfig{}, fmt.Errorf("marshal config: %w", merr)
		}
		if _, ierr := s.db.ExecContext(ctx, `
			INSERT INTO discovery_configs (brand_id, config, created_at, updated_at)
			VALUES (?, ?, ?, ?)`, brandID, string(b), cfg.CreatedAt, cfg.UpdatedAt); ierr != nil {
			return model.DiscoveryConfig{}, fmt.Errorf("insert config: %w", ierr)
		}
		return cfg, nil
	case err != nil:
		return model.DiscoveryConfig{}, fmt.Errorf("query config: %w", err)
	}
	var cfg model.DiscoveryConfig
	if err := json.Unmarshal([]byte(payload), &cfg); err != nil {
		return model.DiscoveryConfig{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func (s *SQLiteStore) Update(ctx context.Context, cfg model.DiscoveryConfig) error {
	cfg.UpdatedAt = time.Now().UTC()
	b, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE discovery_configs SET config = ?, updated_at = ? WHERE brand_id = ?`,
		string(b), cfg.UpdatedAt, cfg.BrandID)
	if err != nil {
		return fmt.Errorf("update config: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) CreateRun(ctx context.Context, run *model.DiscoveryRun) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO discovery_runs (id, brand_id, status, started_at, payload)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.BrandID, string(run.Status), run.StartedAt.UTC(), string(payload))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FinalizeRun(ctx context.Context, run *model.DiscoveryRun) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE discovery_runs SET status = ?, finished_at = ?, payload = ? WHERE id = ?`,
		string(run.Status), run.FinishedAt.UTC(), string(payload), run.ID)
	if err != nil {
		return fmt.Errorf("finalize run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) FindRunsByBrand(ctx context.Context, brandID string, limit int) ([]model.DiscoveryRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM discovery_runs WHERE brand_id = ?
		ORDER BY started_at DESC LIMIT ?`, brandID, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()
	var out []model.DiscoveryRun
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		var run model.DiscoveryRun
		if err := json.Unmarshal([]byte(payload), &run); err != nil {
			return nil, fmt.Errorf("decode run: %w", err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func orEmptyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func orEmptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
