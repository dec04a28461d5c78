package helpers

import (
	"math/rand"
	"net/url"
	"strings"
	"sync"
)

// -----------------------------------------------------------------------------

// ValidateTargetURL accepts absolute http(s) URLs with a host.
func ValidateTargetURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, NewInvalidURLError(raw, nil)
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, NewInvalidURLError(raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, NewInvalidURLError(raw, nil)
	}
	if u.Host == "" {
		return nil, NewInvalidURLError(raw, nil)
	}
	return u, nil
}

// -----------------------------------------------------------------------------

// UserAgentPool hands out browser User-Agent strings.
type UserAgentPool struct {
	userAgents []string
	mu         sync.Mutex
	rnd        *rand.Rand
}

// -----------------------------------------------------------------------------

// NewUserAgentPool returns a pool that always yields fixed when it is set,
// and rotates randomly through common browser agents otherwise.
func NewUserAgentPool(fixed string, rnd *rand.Rand) *UserAgentPool {
	agents := []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:89.0) Gecko/20100101 Firefox/89.0",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36",
		"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:88.0) Gecko/20100101 Firefox/88.0",
	}
	if fixed != "" {
		agents = []string{fixed}
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(rand.Int63()))
	}
	return &UserAgentPool{userAgents: agents, rnd: rnd}
}

// -----------------------------------------------------------------------------

func (p *UserAgentPool) Get() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.userAgents) == 0 {
		return "Mozilla/5.0 (Go-http-client/1.1)"
	}
	return p.userAgents[p.rnd.Intn(len(p.userAgents))]
}
