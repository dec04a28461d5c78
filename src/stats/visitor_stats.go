package stats

import (
	"math/rand"
	"sync"
	"time"

	"unblocker/src/interfaces"
	"unblocker/src/logger"
	"unblocker/src/models"
)

// -----------------------------------------------------------------------------

// VisitorStats keeps the portal's online/peak/total counters.
// The online count drifts a little on every read.
type VisitorStats struct {
	mu     sync.Mutex
	stats  models.MVisitorStats
	rnd    *rand.Rand
	now    func() time.Time
	db     interfaces.IDatabase
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

// NewVisitorStats restores the last snapshot from db (may be nil) or seeds
// random counters.
func NewVisitorStats(db interfaces.IDatabase, rnd *rand.Rand, log *logger.Logger) *VisitorStats {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	v := &VisitorStats{
		rnd:    rnd,
		now:    time.Now,
		db:     db,
		Logger: log,
	}

	if db != nil {
		saved, err := db.LoadVisitorStats()
		if err != nil {
			log.Warning("Failed to load visitor stats: %v", err)
		}
		if saved != nil {
			v.stats = *saved
			log.Info("Restored visitor stats (peak %d, total %d)", saved.Peak, saved.Total)
			return v
		}
	}

	v.stats = models.MVisitorStats{
		Online:      rnd.Intn(50) + 10,
		Peak:        rnd.Intn(200) + 100,
		Total:       rnd.Intn(10000) + 5000,
		LastUpdated: v.now().UTC(),
	}
	return v
}

// -----------------------------------------------------------------------------

// Read returns the counters after moving online by -3..+2 (never below 1)
func (v *VisitorStats) Read() models.MVisitorStats {
	v.mu.Lock()
	defer v.mu.Unlock()

	online := v.stats.Online + v.rnd.Intn(6) - 3
	if online < 1 {
		online = 1
	}
	v.stats.Online = online
	v.stats.LastUpdated = v.now().UTC()
	return v.stats
}

// -----------------------------------------------------------------------------

// Snapshot returns the counters without drift
func (v *VisitorStats) Snapshot() models.MVisitorStats {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stats
}

// -----------------------------------------------------------------------------

// Update raises peak when the new value is higher and overwrites total.
// nil leaves a counter untouched. The result is persisted when a db is set.
func (v *VisitorStats) Update(peak, total *int) (models.MVisitorStats, error) {
	v.mu.Lock()
	if peak != nil && *peak > v.stats.Peak {
		v.stats.Peak = *peak
	}
	if total != nil {
		v.stats.Total = *total
	}
	snapshot := v.stats
	v.mu.Unlock()

	if v.db != nil {
		if err := v.db.SaveVisitorStats(snapshot); err != nil {
			return snapshot, err
		}
	}
	return snapshot, nil
}

// -----------------------------------------------------------------------------

// Flush persists the current counters
func (v *VisitorStats) Flush() error {
	if v.db == nil {
		return nil
	}
	return v.db.SaveVisitorStats(v.Snapshot())
}
