package models

// MProxyMethod is one configured third-party endpoint or fetch strategy.
type MProxyMethod struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	URL      string `yaml:"url" json:"url"`
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Strategy string `yaml:"strategy,omitempty" json:"strategy,omitempty"` // Overrides the kind derived from ID
	DelayMs  int    `yaml:"delay_ms,omitempty" json:"delay_ms,omitempty"` // Simulated strategies only
}

// MFallbackSettings are expressed in milliseconds, as in proxy-methods.json.
type MFallbackSettings struct {
	MaxRetries int `yaml:"maxRetries" json:"maxRetries"`
	RetryDelay int `yaml:"retryDelay" json:"retryDelay"`
	Timeout    int `yaml:"timeout" json:"timeout"`
}

// MProxyMethodsFile mirrors the layout of the proxy-methods resource.
type MProxyMethodsFile struct {
	ProxyMethods     []MProxyMethod    `yaml:"proxyMethods" json:"proxyMethods"`
	FallbackSettings MFallbackSettings `yaml:"fallbackSettings" json:"fallbackSettings"`
}
