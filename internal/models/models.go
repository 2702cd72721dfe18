package models

import (
	"time"

	"remotecalc/internal/types"
)

// Job is a stored operation request and its outcome.
type Job struct {
	ID          string          `json:"id"`
	Operator    types.Operator  `json:"operator"`
	Operand1    float64         `json:"operand1"`
	Operand2    float64         `json:"operand2"`
	Status      types.JobStatus `json:"status"`
	Result      *float64        `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// JobList is the body of the debug listing endpoint.
type JobList struct {
	Total      int   `json:"total"`
	Operations []Job `json:"operations"`
}
