package sequencer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"unblocker/src/helpers"
	"unblocker/src/interfaces"
	"unblocker/src/logger"
	"unblocker/src/models"
	"unblocker/src/network"
)

// ModeAuto tries every enabled method, round after round.
const ModeAuto = "auto"

// -----------------------------------------------------------------------------
// Settings & results
// -----------------------------------------------------------------------------

// Settings bound an auto-mode run.
type Settings struct {
	MaxRetries int           // rounds, at least 1
	RetryDelay time.Duration // pacing between consecutive attempts
	Timeout    time.Duration // per attempt, 0 disables it
}

// SettingsFromConfig converts the millisecond fallback settings.
func SettingsFromConfig(fs models.MFallbackSettings) Settings {
	return Settings{
		MaxRetries: fs.MaxRetries,
		RetryDelay: time.Duration(fs.RetryDelay) * time.Millisecond,
		Timeout:    time.Duration(fs.Timeout) * time.Millisecond,
	}
}

// Result of a run that reached at least the attempting state.
// Method is the succeeding method, or the last one tried on failure.
type Result struct {
	Success  bool
	Method   Method
	Content  string
	Attempts int
	Round    int
	Reason   error
}

// -----------------------------------------------------------------------------
// Observer
// -----------------------------------------------------------------------------

type EventKind int

const (
	EventAttempt EventKind = iota + 1
	EventMethodFailed
	EventSuccess
)

// Event reports sequencer progress to the caller.
type Event struct {
	Kind      EventKind
	Round     int
	MaxRounds int
	Method    Method
	Err       error
	Elapsed   time.Duration // attempt duration, zero for EventAttempt
}

// Observer receives events synchronously, in order.
type Observer func(Event)

// -----------------------------------------------------------------------------
// Sequencer
// -----------------------------------------------------------------------------

// Sequencer tries proxy methods one at a time. It holds no per-run state
// and is safe for concurrent use by independent callers.
type Sequencer struct {
	methods  []Method
	byID     map[string]Method
	settings Settings
	net      interfaces.INetworkManager
	ws       *wsRelay
	Logger   *logger.Logger
}

// -----------------------------------------------------------------------------

// New builds a sequencer over the enabled methods of file, in configured order.
func New(file *models.MProxyMethodsFile, net interfaces.INetworkManager, log *logger.Logger) (*Sequencer, error) {
	settings := SettingsFromConfig(file.FallbackSettings)
	if settings.MaxRetries < 1 {
		return nil, helpers.NewConfigurationError(fmt.Sprintf("maxRetries must be at least 1, got %d", settings.MaxRetries), nil)
	}
	if settings.RetryDelay < 0 || settings.Timeout < 0 {
		return nil, helpers.NewConfigurationError("retryDelay and timeout cannot be negative", nil)
	}

	s := &Sequencer{
		byID:     make(map[string]Method),
		settings: settings,
		net:      net,
		ws:       newWSRelay(),
		Logger:   log,
	}

	for _, cfg := range file.ProxyMethods {
		if !cfg.Enabled {
			continue
		}
		m, err := ResolveMethod(cfg)
		if err != nil {
			return nil, err
		}
		if _, dup := s.byID[m.ID]; dup {
			return nil, helpers.NewConfigurationError(fmt.Sprintf("duplicate proxy method id '%s'", m.ID), nil)
		}
		s.methods = append(s.methods, m)
		s.byID[m.ID] = m
	}

	return s, nil
}

// -----------------------------------------------------------------------------

// Methods returns the enabled methods in configured order
func (s *Sequencer) Methods() []Method {
	out := make([]Method, len(s.methods))
	copy(out, s.methods)
	return out
}

// Settings returns the validated fallback settings
func (s *Sequencer) Settings() Settings {
	return s.settings
}

// -----------------------------------------------------------------------------

// Attempt fetches target through mode, which is ModeAuto or a method id.
func (s *Sequencer) Attempt(ctx context.Context, target string, mode string) (*Result, error) {
	return s.AttemptWithObserver(ctx, target, mode, nil)
}

// AttemptWithObserver is Attempt with progress reporting.
//
// A nil Result with an error means nothing was attempted (InvalidURLError,
// MethodNotAvailableError). A failed run returns its Result together with
// an *AllMethodsFailedError.
func (s *Sequencer) AttemptWithObserver(ctx context.Context, target string, mode string, obs Observer) (*Result, error) {
	if obs == nil {
		obs = func(Event) {}
	}

	u, err := helpers.ValidateTargetURL(target)
	if err != nil {
		return nil, err
	}

	if mode == "" || mode == ModeAuto {
		return s.runAuto(ctx, u, obs)
	}

	m, ok := s.byID[mode]
	if !ok {
		return nil, helpers.NewMethodNotAvailableError(mode)
	}
	return s.runSingle(ctx, u, m, obs)
}

// -----------------------------------------------------------------------------

func (s *Sequencer) runSingle(ctx context.Context, target *url.URL, m Method, obs Observer) (*Result, error) {
	obs(Event{Kind: EventAttempt, Round: 1, MaxRounds: 1, Method: m})

	start := time.Now()
	content, err := s.runAttempt(ctx, m, target)
	elapsed := time.Since(start)
	if err == nil {
		obs(Event{Kind: EventSuccess, Round: 1, MaxRounds: 1, Method: m, Elapsed: elapsed})
		return &Result{Success: true, Method: m, Content: content, Attempts: 1, Round: 1}, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	s.Logger.Warning("Method %s failed: %v", m.Name, err)
	obs(Event{Kind: EventMethodFailed, Round: 1, MaxRounds: 1, Method: m, Err: err, Elapsed: elapsed})

	failed := helpers.NewAllMethodsFailedError([]string{m.ID}, 1, err)
	return &Result{Method: m, Attempts: 1, Round: 1, Reason: failed}, failed
}

// -----------------------------------------------------------------------------

func (s *Sequencer) runAuto(ctx context.Context, target *url.URL, obs Observer) (*Result, error) {
	rounds := s.settings.MaxRetries
	total := rounds * len(s.methods)
	attempts := 0

	var (
		last    Method
		lastErr error
	)

	for round := 1; round <= rounds; round++ {
		for _, m := range s.methods {
			if attempts > 0 {
				if err := s.pace(ctx); err != nil {
					return nil, err
				}
			}

			attempts++
			last = m
			obs(Event{Kind: EventAttempt, Round: round, MaxRounds: rounds, Method: m})
			s.Logger.Debug("Round %d/%d attempt %d/%d: %s", round, rounds, attempts, total, m.Name)

			start := time.Now()
			content, err := s.runAttempt(ctx, m, target)
			elapsed := time.Since(start)
			if err == nil {
				obs(Event{Kind: EventSuccess, Round: round, MaxRounds: rounds, Method: m, Elapsed: elapsed})
				s.Logger.Info("Fetched %s via %s (round %d, attempt %d)", target, m.Name, round, attempts)
				return &Result{Success: true, Method: m, Content: content, Attempts: attempts, Round: round}, nil
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			lastErr = err
			s.Logger.Warning("Method %s failed on round %d: %v", m.Name, round, err)
			obs(Event{Kind: EventMethodFailed, Round: round, MaxRounds: rounds, Method: m, Err: err, Elapsed: elapsed})
		}
	}

	ids := make([]string, len(s.methods))
	for i, m := range s.methods {
		ids[i] = m.ID
	}
	failed := helpers.NewAllMethodsFailedError(ids, attempts, lastErr)
	return &Result{Method: last, Attempts: attempts, Round: rounds, Reason: failed}, failed
}

// -----------------------------------------------------------------------------

// pace waits the constant inter-attempt interval
func (s *Sequencer) pace(ctx context.Context) error {
	if s.settings.RetryDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.settings.RetryDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// -----------------------------------------------------------------------------

type fetchOutcome struct {
	content string
	err     error
}

// runAttempt races one strategy invocation against the attempt timeout.
func (s *Sequencer) runAttempt(ctx context.Context, m Method, target *url.URL) (string, error) {
	attemptCtx, cancel := ctx, context.CancelFunc(func() {})
	if s.settings.Timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, s.settings.Timeout)
	}
	defer cancel()

	done := make(chan fetchOutcome, 1)
	go func() {
		content, err := s.dispatch(attemptCtx, m, target)
		done <- fetchOutcome{content: content, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return "", s.classify(ctx, attemptCtx, m, out.err)
		}
		if out.content == "" {
			return "", helpers.NewTransportError(m.ID, 0, errors.New("empty response"))
		}
		return out.content, nil
	case <-attemptCtx.Done():
		return "", s.classify(ctx, attemptCtx, m, attemptCtx.Err())
	}
}

// -----------------------------------------------------------------------------

func (s *Sequencer) classify(parent, attemptCtx context.Context, m Method, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return helpers.NewMethodTimeoutError(m.ID, s.settings.Timeout)
	}

	var statusErr *network.StatusError
	if errors.As(err, &statusErr) {
		return helpers.NewTransportError(m.ID, statusErr.StatusCode, err)
	}
	return helpers.NewTransportError(m.ID, 0, err)
}

// -----------------------------------------------------------------------------

// dispatch maps a method to its fetch strategy.
func (s *Sequencer) dispatch(ctx context.Context, m Method, target *url.URL) (string, error) {
	raw := target.String()

	switch m.Kind {
	case KindPrefix:
		return s.get(ctx, m.URL+raw)
	case KindEncoded:
		return s.get(ctx, m.URL+url.QueryEscape(raw))
	case KindTemplate:
		r := strings.NewReplacer("{url}", raw, "{encoded}", url.QueryEscape(raw))
		return s.get(ctx, r.Replace(m.URL))
	case KindDirect:
		return s.get(ctx, raw)
	case KindWebSocket:
		return s.ws.fetch(ctx, m.URL, raw)
	case KindJSONP:
		return simulate(ctx, m.Delay, jsonpContent())
	case KindBase64:
		return simulate(ctx, m.Delay, base64Content(raw))
	case KindDataURI:
		return simulate(ctx, m.Delay, dataURIContent(raw))
	}
	return "", fmt.Errorf("unhandled strategy %v for method %s", m.Kind, m.ID)
}

// -----------------------------------------------------------------------------

func (s *Sequencer) get(ctx context.Context, proxyURL string) (string, error) {
	body, err := s.net.Get(ctx, proxyURL)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
