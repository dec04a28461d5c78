package network

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"

	"unblocker/src/helpers"
	"unblocker/src/logger"
	"unblocker/src/models"
)

const acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"

// ErrBodyTooLarge is returned when a response exceeds max_body_bytes.
// Truncated pages are never handed back as content.
var ErrBodyTooLarge = errors.New("response too large")

// -----------------------------------------------------------------------------

// StatusError reports a non-2xx response
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %s", e.Status)
}

// -----------------------------------------------------------------------------

type AsyncNetworkManager struct {
	Config     *models.MConfig
	UserAgents *helpers.UserAgentPool
	Client     *http.Client
	Logger     *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncNetworkManager(cfg *models.MConfig, log *logger.Logger) *AsyncNetworkManager {
	nm := &AsyncNetworkManager{
		Config:     cfg,
		UserAgents: helpers.NewUserAgentPool(cfg.Network.UserAgent, nil),
		Logger:     log,
	}
	nm.Client = nm.createClient()
	return nm
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) createClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if nm.Config.Network.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	// Deadlines come from the caller's context
	return &http.Client{
		Transport: transport,
	}
}

// -----------------------------------------------------------------------------

// Get performs one GET with browser-like headers.
func (nm *AsyncNetworkManager) Get(ctx context.Context, urlStr string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", nm.UserAgents.Get())

	resp, err := nm.Client.Do(req)
	if err != nil {
		nm.Logger.Debug("GET %s failed: %v", urlStr, err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		nm.Logger.Debug("GET %s returned %d", urlStr, resp.StatusCode)
		// Drain a little so the connection can be reused
		io.CopyN(io.Discard, resp.Body, 4096)
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	limit := nm.Config.Network.MaxBodyBytes
	if limit <= 0 {
		return io.ReadAll(resp.Body)
	}

	// One byte past the limit tells an exact fit from an overflow
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		nm.Logger.Warning("GET %s exceeded %d bytes, discarding", urlStr, limit)
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, limit)
	}
	return data, nil
}
