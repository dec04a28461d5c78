package models

// MUnblockResponse is what callers of the proxy service get back.
// Content is only set on success. Reason names the error taxonomy entry.
type MUnblockResponse struct {
	RequestID  string `json:"requestId"`
	Success    bool   `json:"success"`
	TargetURL  string `json:"url"`
	MethodID   string `json:"method,omitempty"`
	MethodName string `json:"methodName,omitempty"`
	Content    string `json:"content,omitempty"`
	Attempts   int    `json:"attempts"`
	Round      int    `json:"round"`
	Reason     string `json:"reason,omitempty"`
	Error      string `json:"error,omitempty"`
}

// MServiceStatus summarizes the proxy service since start.
type MServiceStatus struct {
	StartedAt     int64  `json:"started_at"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Methods       int    `json:"methods"`
	Requests      int64  `json:"requests"`
	Successes     int64  `json:"successes"`
	Failures      int64  `json:"failures"`
	StorageErrors int    `json:"storage_errors"`
	Mode          string `json:"default_mode"`
}
