package models

// -----------------------------------------------------------------------------
// Attempt progress events pushed to WebSocket clients
// -----------------------------------------------------------------------------

const (
	EventAttempt = "ATTEMPT"
	EventSuccess = "SUCCESS"
	EventFailure = "FAILURE"
)

type MAttemptEvent struct {
	Type       string `json:"type"`
	RequestID  string `json:"request_id"`
	TargetURL  string `json:"target_url"`
	Round      int    `json:"round"`
	MaxRounds  int    `json:"max_rounds"`
	MethodID   string `json:"method_id"`
	MethodName string `json:"method_name"`
	Error      string `json:"error,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

// -----------------------------------------------------------------------------
// SubscribeCommand for client messages
// -----------------------------------------------------------------------------

// MSubscribeCommand narrows a client's feed to the given request ids.
// An empty list means every request.
type MSubscribeCommand struct {
	Command    string   `json:"command"`
	RequestIDs []string `json:"requestIds"`
}
