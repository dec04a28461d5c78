package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"unblocker/src/analysis"
	"unblocker/src/helpers"
	"unblocker/src/interfaces"
	"unblocker/src/logger"
	"unblocker/src/models"
	"unblocker/src/sequencer"
	"unblocker/src/utils"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// ProxyService
// -----------------------------------------------------------------------------

// ProxyService runs sequencer requests on behalf of the API front ends.
// Each request gets an id, its progress is broadcast and its summary is
// kept in memory and in storage.
type ProxyService struct {
	seq       *sequencer.Sequencer
	history   *utils.RingBuffer
	stats     *analysis.MethodStats
	db        interfaces.IDatabase
	exchanger interfaces.IDataExchanger
	errors    *helpers.ErrorHandler
	Logger    *logger.Logger

	newID func() string
	now   func() time.Time

	startedAt time.Time
	requests  atomic.Int64
	successes atomic.Int64
	failures  atomic.Int64
}

// -----------------------------------------------------------------------------

// NewProxyService wires the sequencer to its history and listeners.
// db and exchanger may be nil.
func NewProxyService(seq *sequencer.Sequencer, historySize int,
	db interfaces.IDatabase, exchanger interfaces.IDataExchanger, log *logger.Logger) *ProxyService {

	return &ProxyService{
		seq:       seq,
		history:   utils.NewRingBuffer(historySize),
		stats:     analysis.NewMethodStats(0),
		db:        db,
		exchanger: exchanger,
		errors:    helpers.NewErrorHandler(log),
		Logger:    log,
		newID:     uuid.NewString,
		now:       time.Now,
		startedAt: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Requests
// -----------------------------------------------------------------------------

func (p *ProxyService) Unblock(ctx context.Context, target string, mode string) (*models.MUnblockResponse, error) {
	if mode == "" {
		mode = sequencer.ModeAuto
	}

	requestID := p.newID()
	started := p.now()
	p.requests.Add(1)

	p.Logger.Info("[%s] Unblocking %s (mode %s)", requestID, target, mode)

	result, err := p.seq.AttemptWithObserver(ctx, target, mode, func(ev sequencer.Event) {
		if ev.Kind != sequencer.EventAttempt {
			p.stats.Observe(ev.Method.ID, ev.Method.Name, ev.Elapsed, ev.Err)
		}
		p.broadcast(requestID, target, ev)
	})

	resp := &models.MUnblockResponse{
		RequestID: requestID,
		TargetURL: target,
	}
	record := models.MAttemptRecord{
		RequestID:  requestID,
		TargetURL:  target,
		Mode:       mode,
		StartedAt:  started,
		FinishedAt: p.now(),
	}

	if result != nil {
		resp.Success = result.Success
		resp.MethodID = result.Method.ID
		resp.MethodName = result.Method.Name
		resp.Content = result.Content
		resp.Attempts = result.Attempts
		resp.Round = result.Round

		record.MethodID = result.Method.ID
		record.MethodName = result.Method.Name
		record.Attempts = result.Attempts
		record.Rounds = result.Round
	}

	switch {
	case err == nil:
		record.Outcome = models.OutcomeSuccess
		p.successes.Add(1)
	case result == nil && !isCancellation(err):
		record.Outcome = models.OutcomeInvalid
		p.failures.Add(1)
	default:
		record.Outcome = models.OutcomeFailure
		p.failures.Add(1)
	}

	if err != nil {
		resp.Reason = reasonOf(err)
		resp.Error = err.Error()
		record.Error = err.Error()
		p.Logger.Warning("[%s] %s: %v", requestID, resp.Reason, err)
	}

	p.history.Append(record)
	if p.db != nil {
		p.errors.Handle(p.db.SaveAttempt(record), "SaveAttempt")
	}

	return resp, err
}

// -----------------------------------------------------------------------------

func (p *ProxyService) broadcast(requestID, target string, ev sequencer.Event) {
	if p.exchanger == nil {
		return
	}

	event := models.MAttemptEvent{
		RequestID:  requestID,
		TargetURL:  target,
		Round:      ev.Round,
		MaxRounds:  ev.MaxRounds,
		MethodID:   ev.Method.ID,
		MethodName: ev.Method.Name,
		Timestamp:  p.now().UnixMilli(),
	}
	switch ev.Kind {
	case sequencer.EventAttempt:
		event.Type = models.EventAttempt
	case sequencer.EventSuccess:
		event.Type = models.EventSuccess
	case sequencer.EventMethodFailed:
		event.Type = models.EventFailure
		if ev.Err != nil {
			event.Error = ev.Err.Error()
		}
	}
	p.exchanger.Broadcast(event)
}

// -----------------------------------------------------------------------------
// Read side
// -----------------------------------------------------------------------------

func (p *ProxyService) Methods() []models.MProxyMethod {
	methods := p.seq.Methods()
	out := make([]models.MProxyMethod, 0, len(methods))
	for _, m := range methods {
		out = append(out, models.MProxyMethod{
			ID:       m.ID,
			Name:     m.Name,
			URL:      m.URL,
			Enabled:  true,
			Strategy: m.Kind.String(),
			DelayMs:  int(m.Delay / time.Millisecond),
		})
	}
	return out
}

// -----------------------------------------------------------------------------

// FallbackSettings reports the settings the sequencer runs with, in
// the milliseconds of the methods resource.
func (p *ProxyService) FallbackSettings() models.MFallbackSettings {
	st := p.seq.Settings()
	return models.MFallbackSettings{
		MaxRetries: st.MaxRetries,
		RetryDelay: int(st.RetryDelay / time.Millisecond),
		Timeout:    int(st.Timeout / time.Millisecond),
	}
}

// -----------------------------------------------------------------------------

// History serves from memory when it holds enough records, from storage
// otherwise.
func (p *ProxyService) History(limit int) ([]models.MAttemptRecord, error) {
	if limit <= 0 {
		limit = p.history.Capacity()
	}
	if p.db == nil || p.history.Size() >= limit {
		return p.history.GetLatest(limit), nil
	}

	records, err := p.db.RecentAttempts(limit)
	if err != nil {
		p.errors.Handle(err, "RecentAttempts")
		return p.history.GetLatest(limit), nil
	}
	return records, nil
}

// -----------------------------------------------------------------------------

// MethodStats returns per-method counters and latencies since start
func (p *ProxyService) MethodStats() []models.MMethodStats {
	return p.stats.Summary()
}

// -----------------------------------------------------------------------------

func (p *ProxyService) Status() models.MServiceStatus {
	return models.MServiceStatus{
		StartedAt:     p.startedAt.UnixMilli(),
		UptimeSeconds: int64(time.Since(p.startedAt) / time.Second),
		Methods:       len(p.seq.Methods()),
		Requests:      p.requests.Load(),
		Successes:     p.successes.Load(),
		Failures:      p.failures.Load(),
		StorageErrors: p.errors.Count(),
		Mode:          sequencer.ModeAuto,
	}
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// isCancellation reports a run aborted by the caller's context
func isCancellation(err error) bool {
	if helpers.Reason(err) != "Unknown" {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func reasonOf(err error) string {
	if isCancellation(err) {
		return "Cancelled"
	}
	return helpers.Reason(err)
}
