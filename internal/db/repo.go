package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"triage-advisor/pkg"
)

// Repository stores the assessment audit log.  Rows only describe the
// outcome of a request; patient text is never written.
type Repository struct {
	DB *sql.DB
}

// NewRepository constructs a new Repository from an existing sql.DB.
// The caller is responsible for managing the DB connection lifecycle.
func NewRepository(db *sql.DB) *Repository { return &Repository{DB: db} }

// RecordAssessment inserts a. The ID must be a UUID.
func (r *Repository) RecordAssessment(ctx context.Context, a *pkg.Assessment) error {
	id, err := uuid.Parse(a.ID)
	if err != nil {
		return fmt.Errorf("assessment id: %w", err)
	}
	_, err = r.DB.ExecContext(ctx,
		`INSERT INTO assessments (id, model, urgency_level, error_kind, latency_ms, created_at)
         VALUES ($1, $2, $3, $4, $5, $6)`,
		id, a.Model, string(a.UrgencyLevel), a.ErrorKind, a.LatencyMS, a.CreatedAt,
	)
	return err
}

// ListRecent returns up to limit assessments, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]pkg.Assessment, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, model, urgency_level, error_kind, latency_ms, created_at
         FROM assessments
         ORDER BY created_at DESC
         LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []pkg.Assessment{}
	for rows.Next() {
		var a pkg.Assessment
		var level string
		if err := rows.Scan(&a.ID, &a.Model, &level, &a.ErrorKind, &a.LatencyMS, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.UrgencyLevel = pkg.UrgencyLevel(level)
		out = append(out, a)
	}
	return out, rows.Err()
}

// CountByUrgency aggregates successful assessments per urgency level.
func (r *Repository) CountByUrgency(ctx context.Context) ([]pkg.UrgencyCount, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT urgency_level, COUNT(*)
         FROM assessments
         WHERE error_kind = ''
         GROUP BY urgency_level
         ORDER BY COUNT(*) DESC, urgency_level`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []pkg.UrgencyCount{}
	for rows.Next() {
		var c pkg.UrgencyCount
		var level string
		if err := rows.Scan(&level, &c.Count); err != nil {
			return nil, err
		}
		c.UrgencyLevel = pkg.UrgencyLevel(level)
		out = append(out, c)
	}
	return out, rows.Err()
}
