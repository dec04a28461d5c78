package models

// MMethodStats aggregates the attempts of one proxy method since start.
// Latency figures cover the most recent samples only.
type MMethodStats struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Attempts    int64   `json:"attempts"`
	Successes   int64   `json:"successes"`
	Failures    int64   `json:"failures"`
	Timeouts    int64   `json:"timeouts"`
	SuccessRate float64 `json:"success_rate"`
	MeanMs      float64 `json:"mean_ms"`
	StdMs       float64 `json:"std_ms"`
	P95Ms       float64 `json:"p95_ms"`
}
