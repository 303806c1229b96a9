package storage

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"travelgo/internal/models"
)

func TestHistorySave(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO query_records").
		WithArgs("req-1", "Plan a 3-day trip to Rome", "Day 1: Colosseum...", models.StatusSuccess, "groq", 4.2, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))

	history := NewHistory(db)
	rec := &models.QueryRecord{
		RequestID:      "req-1",
		Question:       "Plan a 3-day trip to Rome",
		Answer:         "Day 1: Colosseum...",
		Status:         models.StatusSuccess,
		Provider:       "groq",
		ProcessingTime: 4.2,
	}
	id, err := history.Save(context.Background(), rec)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id != 7 || rec.ID != 7 {
		t.Fatalf("expected id 7, got %d (rec %d)", id, rec.ID)
	}
	if rec.CreatedAt.IsZero() {
		t.Fatalf("expected CreatedAt to be stamped")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestHistoryListRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "request_id", "question", "answer", "status", "provider", "processing_time", "created_at"}).
		AddRow(2, "req-2", "Weekend in Kyoto", "Day 1: Fushimi Inari...", models.StatusSuccess, "groq", 3.1, now).
		AddRow(1, "req-1", "Plan a 3-day trip to Rome", "Day 1: Colosseum...", models.StatusSuccess, "openai", 4.2, now.Add(-time.Hour))
	mock.ExpectQuery("SELECT id, request_id, question, answer, status, provider, processing_time, created_at").
		WithArgs(10).
		WillReturnRows(rows)

	history := NewHistory(db)
	records, err := history.ListRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Question != "Weekend in Kyoto" {
		t.Fatalf("expected newest first, got %q", records[0].Question)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
