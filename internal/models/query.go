package models

import "time"

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Question string `json:"question"`
}

// QueryResponse is the JSON shape returned for every query, success or
// error. Exactly one of Answer/Error is set depending on Status.
type QueryResponse struct {
	Answer         string  `json:"answer,omitempty"`
	Error          string  `json:"error,omitempty"`
	Timestamp      string  `json:"timestamp"`
	Status         string  `json:"status"`
	Query          string  `json:"query"`
	ProcessingTime float64 `json:"processing_time"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// QueryRecord is a persisted history entry for one answered query.
type QueryRecord struct {
	ID             int64     `json:"id"`
	RequestID      string    `json:"request_id"`
	Question       string    `json:"question"`
	Answer         string    `json:"answer"`
	Status         string    `json:"status"`
	Provider       string    `json:"provider"`
	ProcessingTime float64   `json:"processing_time"`
	CreatedAt      time.Time `json:"created_at"`
}
