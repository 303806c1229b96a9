package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"travelgo/internal/models"
)

// History persists answered queries so the frontend can list past plans.
type History struct {
	db *sql.DB
}

// NewHistory wraps an open database handle.
func NewHistory(db *sql.DB) *History {
	return &History{db: db}
}

// Save appends one query record.
func (h *History) Save(ctx context.Context, rec *models.QueryRecord) (int64, error) {
	if rec == nil {
		return 0, fmt.Errorf("record required")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	res, err := h.db.ExecContext(ctx,
		`INSERT INTO query_records (request_id, question, answer, status, provider, processing_time, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RequestID, rec.Question, rec.Answer, rec.Status, rec.Provider, rec.ProcessingTime, rec.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert query record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("query record id: %w", err)
	}
	rec.ID = id
	return id, nil
}

// ListRecent returns up to limit records, newest first.
func (h *History) ListRecent(ctx context.Context, limit int) ([]*models.QueryRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, request_id, question, answer, status, provider, processing_time, created_at
		 FROM query_records ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list query records: %w", err)
	}
	defer rows.Close()

	var records []*models.QueryRecord
	for rows.Next() {
		rec := &models.QueryRecord{}
		if err := rows.Scan(&rec.ID, &rec.RequestID, &rec.Question, &rec.Answer,
			&rec.Status, &rec.Provider, &rec.ProcessingTime, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan query record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
