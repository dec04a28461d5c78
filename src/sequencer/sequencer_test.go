package sequencer

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"unblocker/src/helpers"
	"unblocker/src/logger"
	"unblocker/src/models"
	"unblocker/src/network"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

type fakeResponse struct {
	body  string
	err   error
	block bool // wait for the context to end
}

// fakeNet answers by URL prefix and records every call in order.
type fakeNet struct {
	mu        sync.Mutex
	calls     []string
	responses map[string]fakeResponse
}

func newFakeNet() *fakeNet {
	return &fakeNet{responses: make(map[string]fakeResponse)}
}

func (f *fakeNet) on(prefix string, r fakeResponse) *fakeNet {
	f.responses[prefix] = r
	return f
}

func (f *fakeNet) Get(ctx context.Context, u string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, u)
	var (
		resp  fakeResponse
		found bool
	)
	for prefix, r := range f.responses {
		if strings.HasPrefix(u, prefix) {
			resp, found = r, true
			break
		}
	}
	f.mu.Unlock()

	if !found {
		return nil, errors.New("no route to " + u)
	}
	if resp.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if resp.err != nil {
		return nil, resp.err
	}
	return []byte(resp.body), nil
}

func (f *fakeNet) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func prefixMethod(id string) models.MProxyMethod {
	return models.MProxyMethod{
		ID:       id,
		Name:     strings.ToUpper(id),
		URL:      "https://" + id + ".test/",
		Enabled:  true,
		Strategy: "prefix",
	}
}

func newTestSequencer(t *testing.T, net *fakeNet, maxRetries int, methods ...models.MProxyMethod) *Sequencer {
	t.Helper()
	file := &models.MProxyMethodsFile{
		ProxyMethods:     methods,
		FallbackSettings: models.MFallbackSettings{MaxRetries: maxRetries, RetryDelay: 0, Timeout: 1000},
	}
	s, err := New(file, net, logger.NewLoggerTo(&bytes.Buffer{}, "DEBUG", "Sequencer"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

var errRefused = errors.New("connection refused")

// -----------------------------------------------------------------------------
// Validation
// -----------------------------------------------------------------------------

func TestAttemptRejectsNonHTTPWithoutInvokingMethods(t *testing.T) {
	net := newFakeNet().on("https://a.test/", fakeResponse{body: "ok"})
	s := newTestSequencer(t, net, 3, prefixMethod("a"))

	for _, raw := range []string{"", "ftp://example.com", "example.com", "mailto:x@example.com", "javascript:void(0)", "https://"} {
		for _, mode := range []string{ModeAuto, "a"} {
			res, err := s.Attempt(context.Background(), raw, mode)
			var invalid *helpers.InvalidURLError
			if !errors.As(err, &invalid) {
				t.Errorf("Attempt(%q, %q) err = %v, want InvalidURLError", raw, mode, err)
			}
			if res != nil {
				t.Errorf("Attempt(%q, %q) returned a result", raw, mode)
			}
		}
	}
	if calls := net.Calls(); len(calls) != 0 {
		t.Fatalf("methods were invoked: %v", calls)
	}
}

// -----------------------------------------------------------------------------
// Auto mode
// -----------------------------------------------------------------------------

func TestAutoSingleSucceedingMethod(t *testing.T) {
	net := newFakeNet().on("https://a.test/", fakeResponse{body: "<html>hi</html>"})
	s := newTestSequencer(t, net, 3, prefixMethod("a"))

	res, err := s.Attempt(context.Background(), "https://example.com", ModeAuto)
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if !res.Success || res.Method.ID != "a" || res.Round != 1 || res.Attempts != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Content != "<html>hi</html>" {
		t.Errorf("Content = %q", res.Content)
	}
	if calls := net.Calls(); len(calls) != 1 || calls[0] != "https://a.test/https://example.com" {
		t.Errorf("calls = %v", calls)
	}
}

func TestAutoAllFailingExhaustsRounds(t *testing.T) {
	net := newFakeNet().
		on("https://a.test/", fakeResponse{err: errRefused}).
		on("https://b.test/", fakeResponse{err: &network.StatusError{StatusCode: 503, Status: "503 Service Unavailable"}}).
		on("https://c.test/", fakeResponse{body: ""})
	s := newTestSequencer(t, net, 4, prefixMethod("a"), prefixMethod("b"), prefixMethod("c"))

	res, err := s.Attempt(context.Background(), "https://example.com", ModeAuto)

	var failed *helpers.AllMethodsFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("err = %v, want AllMethodsFailedError", err)
	}
	if failed.Attempts != 12 || res.Attempts != 12 {
		t.Errorf("attempts = %d/%d, want 12", failed.Attempts, res.Attempts)
	}
	if got := len(net.Calls()); got != 12 {
		t.Errorf("network calls = %d, want 12", got)
	}
	if res.Success || res.Method.ID != "c" || res.Round != 4 {
		t.Errorf("unexpected result %+v", res)
	}
	if strings.Join(failed.Methods, ",") != "a,b,c" {
		t.Errorf("Methods = %v", failed.Methods)
	}
}

func TestAutoStopsAtFirstSuccessInRound(t *testing.T) {
	net := newFakeNet().
		on("https://a.test/", fakeResponse{err: errRefused}).
		on("https://b.test/", fakeResponse{body: "from b"}).
		on("https://c.test/", fakeResponse{body: "from c"})
	s := newTestSequencer(t, net, 3, prefixMethod("a"), prefixMethod("b"), prefixMethod("c"))

	res, err := s.Attempt(context.Background(), "https://example.com", ModeAuto)
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if res.Method.ID != "b" || res.Content != "from b" {
		t.Fatalf("unexpected result %+v", res)
	}
	for _, call := range net.Calls() {
		if strings.HasPrefix(call, "https://c.test/") {
			t.Fatalf("method c was invoked after b succeeded")
		}
	}
}

func TestAutoExampleFailThenSucceed(t *testing.T) {
	net := newFakeNet().
		on("https://a.test/", fakeResponse{err: errRefused}).
		on("https://b.test/", fakeResponse{body: "content"})
	s := newTestSequencer(t, net, 3, prefixMethod("a"), prefixMethod("b"))

	var events []Event
	res, err := s.AttemptWithObserver(context.Background(), "https://example.com", ModeAuto, func(e Event) {
		events = append(events, e)
	})
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if !res.Success || res.Method.ID != "b" || res.Attempts != 2 || res.Round != 1 {
		t.Fatalf("unexpected result %+v", res)
	}

	want := []struct {
		kind   EventKind
		method string
	}{
		{EventAttempt, "a"},
		{EventMethodFailed, "a"},
		{EventAttempt, "b"},
		{EventSuccess, "b"},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d: %+v", len(events), len(want), events)
	}
	for i, w := range want {
		if events[i].Kind != w.kind || events[i].Method.ID != w.method || events[i].Round != 1 || events[i].MaxRounds != 3 {
			t.Errorf("event %d = %+v, want kind %d method %s", i, events[i], w.kind, w.method)
		}
	}
	var transport *helpers.TransportError
	if !errors.As(events[1].Err, &transport) || !errors.Is(events[1].Err, errRefused) {
		t.Errorf("failure event err = %v, want TransportError wrapping refusal", events[1].Err)
	}
}

func TestAutoSkipsDisabledMethods(t *testing.T) {
	disabled := prefixMethod("a")
	disabled.Enabled = false
	net := newFakeNet().
		on("https://a.test/", fakeResponse{body: "from a"}).
		on("https://b.test/", fakeResponse{body: "from b"})
	s := newTestSequencer(t, net, 1, disabled, prefixMethod("b"))

	res, err := s.Attempt(context.Background(), "https://example.com", ModeAuto)
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if res.Method.ID != "b" {
		t.Fatalf("Method = %s, want b", res.Method.ID)
	}
	if len(s.Methods()) != 1 {
		t.Fatalf("Methods() = %+v", s.Methods())
	}
}

func TestAutoTimeoutMovesToNextMethod(t *testing.T) {
	net := newFakeNet().
		on("https://slow.test/", fakeResponse{block: true}).
		on("https://fast.test/", fakeResponse{body: "fast"})
	file := &models.MProxyMethodsFile{
		ProxyMethods:     []models.MProxyMethod{prefixMethod("slow"), prefixMethod("fast")},
		FallbackSettings: models.MFallbackSettings{MaxRetries: 1, Timeout: 20},
	}
	s, err := New(file, net, logger.NewLoggerTo(&bytes.Buffer{}, "INFO", "Sequencer"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var timeoutErr error
	res, err := s.AttemptWithObserver(context.Background(), "https://example.com", ModeAuto, func(e Event) {
		if e.Kind == EventMethodFailed {
			timeoutErr = e.Err
		}
	})
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if res.Method.ID != "fast" {
		t.Fatalf("Method = %s, want fast", res.Method.ID)
	}
	var mt *helpers.MethodTimeoutError
	if !errors.As(timeoutErr, &mt) || mt.MethodID != "slow" {
		t.Fatalf("failure = %v, want MethodTimeoutError for slow", timeoutErr)
	}
}

func TestAutoPacesBetweenAttempts(t *testing.T) {
	net := newFakeNet().on("https://a.test/", fakeResponse{err: errRefused})
	file := &models.MProxyMethodsFile{
		ProxyMethods:     []models.MProxyMethod{prefixMethod("a")},
		FallbackSettings: models.MFallbackSettings{MaxRetries: 3, RetryDelay: 20},
	}
	s, err := New(file, net, logger.NewLoggerTo(&bytes.Buffer{}, "INFO", "Sequencer"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	start := time.Now()
	s.Attempt(context.Background(), "https://example.com", ModeAuto)
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("three attempts took %v, want at least two pacing intervals", elapsed)
	}
}

func TestAutoContextCancellationAborts(t *testing.T) {
	net := newFakeNet().on("https://a.test/", fakeResponse{block: true})
	file := &models.MProxyMethodsFile{
		ProxyMethods:     []models.MProxyMethod{prefixMethod("a")},
		FallbackSettings: models.MFallbackSettings{MaxRetries: 5},
	}
	s, err := New(file, net, logger.NewLoggerTo(&bytes.Buffer{}, "INFO", "Sequencer"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	res, err := s.Attempt(ctx, "https://example.com", ModeAuto)
	if !errors.Is(err, context.DeadlineExceeded) || res != nil {
		t.Fatalf("got (%+v, %v), want context deadline", res, err)
	}
	if got := len(net.Calls()); got != 1 {
		t.Fatalf("network calls = %d, want 1", got)
	}
}

func TestAutoWithNoEnabledMethodsFails(t *testing.T) {
	disabled := prefixMethod("a")
	disabled.Enabled = false
	s := newTestSequencer(t, newFakeNet(), 3, disabled)

	res, err := s.Attempt(context.Background(), "https://example.com", ModeAuto)
	var failed *helpers.AllMethodsFailedError
	if !errors.As(err, &failed) || res.Attempts != 0 {
		t.Fatalf("got (%+v, %v), want AllMethodsFailed with 0 attempts", res, err)
	}
}

// -----------------------------------------------------------------------------
// Specific mode
// -----------------------------------------------------------------------------

func TestSpecificModeInvokesOnlyThatMethodOnce(t *testing.T) {
	net := newFakeNet().
		on("https://a.test/", fakeResponse{body: "from a"}).
		on("https://b.test/", fakeResponse{err: errRefused})
	s := newTestSequencer(t, net, 5, prefixMethod("a"), prefixMethod("b"))

	res, err := s.Attempt(context.Background(), "https://example.com", "b")

	var failed *helpers.AllMethodsFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("err = %v, want AllMethodsFailedError", err)
	}
	if len(failed.Methods) != 1 || failed.Methods[0] != "b" || failed.Attempts != 1 {
		t.Errorf("unexpected failure %+v", failed)
	}
	if res.Attempts != 1 || res.Method.ID != "b" {
		t.Errorf("unexpected result %+v", res)
	}
	calls := net.Calls()
	if len(calls) != 1 || !strings.HasPrefix(calls[0], "https://b.test/") {
		t.Fatalf("calls = %v, want exactly one call to b", calls)
	}
}

func TestSpecificModeSuccess(t *testing.T) {
	net := newFakeNet().
		on("https://a.test/", fakeResponse{err: errRefused}).
		on("https://b.test/", fakeResponse{body: "from b"})
	s := newTestSequencer(t, net, 3, prefixMethod("a"), prefixMethod("b"))

	res, err := s.Attempt(context.Background(), "https://example.com", "b")
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if res.Content != "from b" || res.Attempts != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestSpecificModeUnknownMethod(t *testing.T) {
	disabled := prefixMethod("b")
	disabled.Enabled = false
	net := newFakeNet()
	s := newTestSequencer(t, net, 3, prefixMethod("a"), disabled)

	for _, mode := range []string{"nope", "b"} {
		res, err := s.Attempt(context.Background(), "https://example.com", mode)
		var unavailable *helpers.MethodNotAvailableError
		if !errors.As(err, &unavailable) || res != nil {
			t.Errorf("mode %q: got (%+v, %v), want MethodNotAvailableError", mode, res, err)
		}
	}
	if len(net.Calls()) != 0 {
		t.Fatalf("methods were invoked: %v", net.Calls())
	}
}

// -----------------------------------------------------------------------------
// Strategies
// -----------------------------------------------------------------------------

func TestDispatchBuildsProxyURLs(t *testing.T) {
	net := newFakeNet().on("https://", fakeResponse{body: "ok"}).on("http://", fakeResponse{body: "ok"})
	methods := []models.MProxyMethod{
		{ID: "cors-anywhere", URL: "https://cors.test/", Enabled: true},
		{ID: "allorigins", URL: "https://ao.test/raw?url=", Enabled: true},
		{ID: "tmpl", URL: "https://t.test/get?u={encoded}&raw={url}", Enabled: true, Strategy: "template"},
		{ID: "iframe-direct", Enabled: true},
	}
	s := newTestSequencer(t, net, 1, methods...)

	target := "http://example.com/a?b=c"
	for _, m := range methods {
		if _, err := s.Attempt(context.Background(), target, m.ID); err != nil {
			t.Fatalf("%s: %v", m.ID, err)
		}
	}

	want := []string{
		"https://cors.test/http://example.com/a?b=c",
		"https://ao.test/raw?url=http%3A%2F%2Fexample.com%2Fa%3Fb%3Dc",
		"https://t.test/get?u=http%3A%2F%2Fexample.com%2Fa%3Fb%3Dc&raw=http://example.com/a?b=c",
		"http://example.com/a?b=c",
	}
	calls := net.Calls()
	if len(calls) != len(want) {
		t.Fatalf("calls = %v", calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestSimulatedStrategies(t *testing.T) {
	methods := []models.MProxyMethod{
		{ID: "jsonp", Enabled: true, DelayMs: 1},
		{ID: "base64-encode", Enabled: true, DelayMs: 1},
		{ID: "data-uri", Enabled: true, DelayMs: 1},
	}
	net := newFakeNet()
	s := newTestSequencer(t, net, 1, methods...)

	checks := map[string]string{
		"jsonp":         "Content loaded via JSONP",
		"base64-encode": "aHR0cHM6Ly9leGFtcGxlLmNvbQ==",
		"data-uri":      `<iframe src="data:text/html,`,
	}
	for id, want := range checks {
		res, err := s.Attempt(context.Background(), "https://example.com", id)
		if err != nil {
			t.Fatalf("%s: %v", id, err)
		}
		if !strings.Contains(res.Content, want) {
			t.Errorf("%s content %q does not contain %q", id, res.Content, want)
		}
	}
	if len(net.Calls()) != 0 {
		t.Fatalf("simulated strategies used the network: %v", net.Calls())
	}
}

func TestSimulatedStrategyTimesOut(t *testing.T) {
	file := &models.MProxyMethodsFile{
		ProxyMethods:     []models.MProxyMethod{{ID: "jsonp", Enabled: true, DelayMs: 500}},
		FallbackSettings: models.MFallbackSettings{MaxRetries: 1, Timeout: 10},
	}
	s, err := New(file, newFakeNet(), logger.NewLoggerTo(&bytes.Buffer{}, "INFO", "Sequencer"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = s.Attempt(context.Background(), "https://example.com", "jsonp")
	var mt *helpers.MethodTimeoutError
	if !errors.As(err, &mt) {
		t.Fatalf("err = %v, want wrapped MethodTimeoutError", err)
	}
}

func TestWebSocketStrategy(t *testing.T) {
	upgrader := websocket.Upgrader{}
	requests := make(chan wsFetchRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var req wsFetchRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		requests <- req
		// An echo-style reply without content is ignored
		conn.WriteJSON(req)
		conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		conn.WriteJSON(wsFetchReply{Content: "<html>relayed</html>"})
		conn.ReadMessage()
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	s := newTestSequencer(t, newFakeNet(), 1, models.MProxyMethod{ID: "websocket-proxy", URL: wsURL, Enabled: true})

	res, err := s.Attempt(context.Background(), "https://example.com/page", ModeAuto)
	if err != nil {
		t.Fatalf("Attempt: %v", err)
	}
	if res.Content != "<html>relayed</html>" {
		t.Errorf("Content = %q", res.Content)
	}
	if got := <-requests; got.URL != "https://example.com/page" || got.Action != "fetch" {
		t.Errorf("relay got %+v", got)
	}
}

func TestWebSocketEchoTimesOut(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			conn.WriteMessage(mt, msg)
		}
	}))
	defer srv.Close()

	file := &models.MProxyMethodsFile{
		ProxyMethods: []models.MProxyMethod{
			{ID: "websocket-proxy", URL: "ws" + strings.TrimPrefix(srv.URL, "http"), Enabled: true},
		},
		FallbackSettings: models.MFallbackSettings{MaxRetries: 1, Timeout: 50},
	}
	s, err := New(file, newFakeNet(), logger.NewLoggerTo(&bytes.Buffer{}, "INFO", "Sequencer"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = s.Attempt(context.Background(), "https://example.com", ModeAuto)
	var mt *helpers.MethodTimeoutError
	if !errors.As(err, &mt) {
		t.Fatalf("err = %v, want wrapped MethodTimeoutError", err)
	}
}

func TestStatusErrorBecomesTransportError(t *testing.T) {
	net := newFakeNet().on("https://a.test/", fakeResponse{err: &network.StatusError{StatusCode: 403, Status: "403 Forbidden"}})
	s := newTestSequencer(t, net, 1, prefixMethod("a"))

	_, err := s.Attempt(context.Background(), "https://example.com", "a")
	var transport *helpers.TransportError
	if !errors.As(err, &transport) || transport.StatusCode != 403 || transport.MethodID != "a" {
		t.Fatalf("err = %v, want TransportError 403 for a", err)
	}
}

func TestOversizedResponseIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	cfg := &models.MConfig{Network: models.MNetworkConfig{MaxBodyBytes: 16}}
	log := logger.NewLoggerTo(&bytes.Buffer{}, "DEBUG", "Sequencer")
	file := &models.MProxyMethodsFile{
		ProxyMethods:     []models.MProxyMethod{{ID: "iframe-direct", Name: "Direct", Enabled: true}},
		FallbackSettings: models.MFallbackSettings{MaxRetries: 1, Timeout: 2000},
	}
	s, err := New(file, network.NewAsyncNetworkManager(cfg, log), log)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := s.Attempt(context.Background(), srv.URL, "iframe-direct")
	var transport *helpers.TransportError
	if !errors.As(err, &transport) || !errors.Is(err, network.ErrBodyTooLarge) {
		t.Fatalf("err = %v, want TransportError wrapping ErrBodyTooLarge", err)
	}
	if res.Success || res.Content != "" {
		t.Errorf("truncated page reported as content: %+v", res)
	}
}

// -----------------------------------------------------------------------------
// Construction
// -----------------------------------------------------------------------------

func TestNewRejectsBadConfiguration(t *testing.T) {
	cases := map[string]*models.MProxyMethodsFile{
		"unknown id": {
			ProxyMethods:     []models.MProxyMethod{{ID: "mystery", URL: "https://m.test/", Enabled: true}},
			FallbackSettings: models.MFallbackSettings{MaxRetries: 1},
		},
		"bad strategy": {
			ProxyMethods:     []models.MProxyMethod{{ID: "a", URL: "https://a.test/", Enabled: true, Strategy: "carrier-pigeon"}},
			FallbackSettings: models.MFallbackSettings{MaxRetries: 1},
		},
		"missing url": {
			ProxyMethods:     []models.MProxyMethod{{ID: "allorigins", Enabled: true}},
			FallbackSettings: models.MFallbackSettings{MaxRetries: 1},
		},
		"zero retries": {
			ProxyMethods:     []models.MProxyMethod{prefixMethod("a")},
			FallbackSettings: models.MFallbackSettings{MaxRetries: 0},
		},
	}
	for name, file := range cases {
		_, err := New(file, newFakeNet(), logger.NewLoggerTo(&bytes.Buffer{}, "INFO", "Sequencer"))
		var cfgErr *helpers.ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Errorf("%s: err = %v, want ConfigurationError", name, err)
		}
	}
}

func TestResolveMethodDefaults(t *testing.T) {
	m, err := ResolveMethod(models.MProxyMethod{ID: "base64-encode"})
	if err != nil {
		t.Fatalf("ResolveMethod: %v", err)
	}
	if m.Kind != KindBase64 || m.Delay != 1500*time.Millisecond || m.Name != "base64-encode" {
		t.Fatalf("unexpected method %+v", m)
	}

	k, err := ParseStrategyKind("websocket")
	if err != nil || k != KindWebSocket || k.String() != "websocket" {
		t.Fatalf("ParseStrategyKind(websocket) = %v, %v", k, err)
	}
}
