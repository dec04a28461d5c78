package sequencer

import (
	"fmt"
	"time"

	"unblocker/src/helpers"
	"unblocker/src/models"
)

// -----------------------------------------------------------------------------
// Strategy kinds
// -----------------------------------------------------------------------------

// StrategyKind selects how a method turns a target URL into content.
type StrategyKind int

const (
	KindPrefix    StrategyKind = iota + 1 // GET template + raw target
	KindEncoded                           // GET template + query-escaped target
	KindTemplate                          // GET template with {url} / {encoded} substituted
	KindDirect                            // GET the target itself
	KindWebSocket                         // ask a WebSocket relay for the content
	KindJSONP                             // simulated
	KindBase64                            // simulated
	KindDataURI                           // simulated
)

var kindNames = map[StrategyKind]string{
	KindPrefix:    "prefix",
	KindEncoded:   "encoded",
	KindTemplate:  "template",
	KindDirect:    "direct",
	KindWebSocket: "websocket",
	KindJSONP:     "jsonp",
	KindBase64:    "base64",
	KindDataURI:   "datauri",
}

func (k StrategyKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("StrategyKind(%d)", int(k))
}

// Simulated reports whether the kind produces demo content without network I/O.
func (k StrategyKind) Simulated() bool {
	return k == KindJSONP || k == KindBase64 || k == KindDataURI
}

// ParseStrategyKind maps a config name to a kind
func ParseStrategyKind(name string) (StrategyKind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown strategy %q", name)
}

// Kinds of the well-known method ids.
var defaultKinds = map[string]StrategyKind{
	"cors-anywhere":   KindPrefix,
	"thingproxy":      KindPrefix,
	"urlreq":          KindPrefix,
	"corsproxy":       KindPrefix,
	"allorigins":      KindEncoded,
	"proxyium":        KindEncoded,
	"bypasscors":      KindEncoded,
	"iframe-direct":   KindDirect,
	"websocket-proxy": KindWebSocket,
	"jsonp":           KindJSONP,
	"base64-encode":   KindBase64,
	"data-uri":        KindDataURI,
}

// Delays of the simulated kinds when a method sets none.
var defaultSimulatedDelay = map[StrategyKind]time.Duration{
	KindJSONP:   1000 * time.Millisecond,
	KindBase64:  1500 * time.Millisecond,
	KindDataURI: 1200 * time.Millisecond,
}

// -----------------------------------------------------------------------------
// Method
// -----------------------------------------------------------------------------

// Method is a configured proxy method with its strategy resolved.
type Method struct {
	ID    string
	Name  string
	URL   string
	Kind  StrategyKind
	Delay time.Duration
}

// ResolveMethod derives the strategy kind of a configured method.
// An explicit strategy wins over the kind implied by the id.
func ResolveMethod(m models.MProxyMethod) (Method, error) {
	var kind StrategyKind
	if m.Strategy != "" {
		k, err := ParseStrategyKind(m.Strategy)
		if err != nil {
			return Method{}, helpers.NewConfigurationError(fmt.Sprintf("proxy method '%s'", m.ID), err)
		}
		kind = k
	} else {
		k, ok := defaultKinds[m.ID]
		if !ok {
			return Method{}, helpers.NewConfigurationError(fmt.Sprintf("unknown proxy method '%s' needs an explicit strategy", m.ID), nil)
		}
		kind = k
	}

	needsURL := kind == KindPrefix || kind == KindEncoded || kind == KindTemplate || kind == KindWebSocket
	if needsURL && m.URL == "" {
		return Method{}, helpers.NewConfigurationError(fmt.Sprintf("proxy method '%s' (%s) needs a url", m.ID, kind), nil)
	}

	name := m.Name
	if name == "" {
		name = m.ID
	}

	delay := time.Duration(m.DelayMs) * time.Millisecond
	if delay == 0 && kind.Simulated() {
		delay = defaultSimulatedDelay[kind]
	}

	return Method{ID: m.ID, Name: name, URL: m.URL, Kind: kind, Delay: delay}, nil
}
