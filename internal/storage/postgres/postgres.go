package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/povarna/pet-poison-map/internal/models"
	"github.com/povarna/pet-poison-map/internal/storage"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const migrationLockKey int64 = 71530042017

type DB struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

func (db *DB) Close() {
	db.Pool.Close()
}

// Migrate applies embedded migrations that are not yet recorded in
// schema_migrations. Concurrent callers serialize on an advisory lock.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, "SELECT pg_advisory_lock($1)", migrationLockKey); err != nil {
		return fmt.Errorf("acquire migration lock: %w", err)
	}
	defer func() {
		_, _ = db.Pool.Exec(context.Background(), "SELECT pg_advisory_unlock($1)", migrationLockKey)
	}()

	if _, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	files, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, name := range files {
		var exists bool
		if err := db.Pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version=$1)", name).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if exists {
			continue
		}

		sqlBytes, err := migrationFiles.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		tx, err := db.Pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin migration tx: %w", err)
		}
		if _, err := tx.Exec(ctx, string(sqlBytes)); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations(version) VALUES ($1)", name); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}

	return nil
}

type IncidentStore struct {
	db *DB
}

func NewIncidentStore(db *DB) *IncidentStore {
	return &IncidentStore{db: db}
}

func (s *IncidentStore) List(ctx context.Context) ([]models.Incident, error) {
	query := `SELECT incident_id, lng, lat, title, created_at, user_sub FROM incidents ORDER BY created_at ASC`

	rows, err := s.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list incidents: %w", err)
	}
	defer rows.Close()

	incidents := []models.Incident{}
	for rows.Next() {
		var incident models.Incident
		if err := rows.Scan(&incident.IncidentID, &incident.Lng, &incident.Lat, &incident.Title, &incident.CreatedAt, &incident.UserSub); err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		incidents = append(incidents, incident)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return incidents, nil
}

func (s *IncidentStore) Get(ctx context.Context, incidentID string) (models.Incident, error) {
	query := `SELECT incident_id, lng, lat, title, created_at, user_sub FROM incidents WHERE incident_id = $1`

	var incident models.Incident
	err := s.db.Pool.QueryRow(ctx, query, incidentID).
		Scan(&incident.IncidentID, &incident.Lng, &incident.Lat, &incident.Title, &incident.CreatedAt, &incident.UserSub)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Incident{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Incident{}, fmt.Errorf("get incident %s: %w", incidentID, err)
	}

	return incident, nil
}

func (s *IncidentStore) Put(ctx context.Context, incident models.Incident) error {
	query := `
		INSERT INTO incidents (incident_id, lng, lat, title, created_at, user_sub)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (incident_id) DO UPDATE
		SET lng = EXCLUDED.lng, lat = EXCLUDED.lat, title = EXCLUDED.title`

	_, err := s.db.Pool.Exec(ctx, query,
		incident.IncidentID, incident.Lng, incident.Lat, incident.Title, incident.CreatedAt, incident.UserSub)
	if err != nil {
		return fmt.Errorf("put incident %s: %w", incident.IncidentID, err)
	}
	return nil
}

type CommentStore struct {
	db *DB
}

func NewCommentStore(db *DB) *CommentStore {
	return &CommentStore{db: db}
}

func (s *CommentStore) ListByIncident(ctx context.Context, incidentID string) ([]models.Comment, error) {
	query := `
		SELECT comment_id, incident_id, sort_key, content, created_at, user_sub, nickname, avatar
		FROM comments
		WHERE incident_id = $1
		ORDER BY sort_key ASC`

	rows, err := s.db.Pool.Query(ctx, query, incidentID)
	if err != nil {
		return nil, fmt.Errorf("list comments for %s: %w", incidentID, err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.CommentID, &c.IncidentID, &c.SortKey, &c.Content, &c.CreatedAt, &c.UserSub, &c.Nickname, &c.Avatar); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return comments, nil
}

func (s *CommentStore) Put(ctx context.Context, comment models.Comment) error {
	query := `
		INSERT INTO comments (incident_id, sort_key, comment_id, content, created_at, user_sub, nickname, avatar)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := s.db.Pool.Exec(ctx, query,
		comment.IncidentID, comment.SortKey, comment.CommentID, comment.Content,
		comment.CreatedAt, comment.UserSub, comment.Nickname, comment.Avatar)
	if err != nil {
		return fmt.Errorf("put comment %s: %w", comment.CommentID, err)
	}
	return nil
}
