package models

import "time"

// Attempt outcomes as stored and reported.
const (
	OutcomeSuccess = "SUCCESS"
	OutcomeFailure = "FAILURE"
	OutcomeInvalid = "INVALID"
)

// MAttemptRecord is the persisted summary of one sequencer run.
type MAttemptRecord struct {
	RequestID  string    `json:"request_id"`
	TargetURL  string    `json:"target_url"`
	Mode       string    `json:"mode"`
	Outcome    string    `json:"outcome"`
	MethodID   string    `json:"method_id"`
	MethodName string    `json:"method_name"`
	Attempts   int       `json:"attempts"`
	Rounds     int       `json:"rounds"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
