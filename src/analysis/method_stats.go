package analysis

import (
	"sync"
	"time"

	"unblocker/src/analysis/core"
	"unblocker/src/helpers"
	"unblocker/src/models"
)

const defaultLatencyWindow = 200

// -----------------------------------------------------------------------------
// MethodStats
// -----------------------------------------------------------------------------

// MethodStats keeps per-method outcome counters and a window of recent
// attempt latencies. Reporting only, it never influences method order.
type MethodStats struct {
	mu      sync.Mutex
	window  int
	methods map[string]*methodCounters
	order   []string
}

type methodCounters struct {
	name      string
	attempts  int64
	successes int64
	failures  int64
	timeouts  int64
	latencies []float64 // milliseconds, ring of size window
	next      int
}

// -----------------------------------------------------------------------------

func NewMethodStats(window int) *MethodStats {
	if window <= 0 {
		window = defaultLatencyWindow
	}
	return &MethodStats{
		window:  window,
		methods: make(map[string]*methodCounters),
	}
}

// -----------------------------------------------------------------------------

// Observe records one finished attempt; err is nil on success.
func (s *MethodStats) Observe(id, name string, elapsed time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.methods[id]
	if !ok {
		c = &methodCounters{name: name}
		s.methods[id] = c
		s.order = append(s.order, id)
	}

	c.attempts++
	switch {
	case err == nil:
		c.successes++
	case helpers.Reason(err) == "MethodTimeout":
		c.timeouts++
		c.failures++
	default:
		c.failures++
	}

	ms := float64(elapsed) / float64(time.Millisecond)
	if len(c.latencies) < s.window {
		c.latencies = append(c.latencies, ms)
	} else {
		c.latencies[c.next] = ms
	}
	c.next = (c.next + 1) % s.window
}

// -----------------------------------------------------------------------------

// Summary returns one entry per observed method, in first-seen order.
func (s *MethodStats) Summary() []models.MMethodStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.MMethodStats, 0, len(s.order))
	for _, id := range s.order {
		c := s.methods[id]
		mean, std := core.CalculateMeanStd(c.latencies)

		rate := 0.0
		if c.attempts > 0 {
			rate = float64(c.successes) / float64(c.attempts)
		}

		out = append(out, models.MMethodStats{
			ID:          id,
			Name:        c.name,
			Attempts:    c.attempts,
			Successes:   c.successes,
			Failures:    c.failures,
			Timeouts:    c.timeouts,
			SuccessRate: rate,
			MeanMs:      mean,
			StdMs:       std,
			P95Ms:       core.Percentile(c.latencies, 95),
		})
	}
	return out
}
