package config

import (
	"fmt"
	"os"

	"unblocker/src/helpers"
	"unblocker/src/logger"
	"unblocker/src/models"
	"unblocker/src/sequencer"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------

// DefaultFallbackSettings match the portal's built-in values (milliseconds).
var DefaultFallbackSettings = models.MFallbackSettings{
	MaxRetries: 3,
	RetryDelay: 1000,
	Timeout:    10000,
}

// -----------------------------------------------------------------------------

// DefaultProxyMethods is the built-in list used when the resource is unavailable.
func DefaultProxyMethods() *models.MProxyMethodsFile {
	return &models.MProxyMethodsFile{
		ProxyMethods: []models.MProxyMethod{
			{ID: "cors-anywhere", Name: "CORS Anywhere", URL: "https://cors-anywhere.herokuapp.com/", Enabled: true},
			{ID: "allorigins", Name: "All Origins", URL: "https://api.allorigins.win/raw?url=", Enabled: true},
			{ID: "thingproxy", Name: "ThingProxy", URL: "https://thingproxy.freeboard.io/fetch/", Enabled: true},
		},
		FallbackSettings: DefaultFallbackSettings,
	}
}

// -----------------------------------------------------------------------------

// LoadProxyMethods reads the proxy-methods resource. JSON is valid YAML,
// so proxy-methods.json and a YAML rendition both load here.
func LoadProxyMethods(path string) (*models.MProxyMethodsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, helpers.NewConfigurationError(fmt.Sprintf("failed to read proxy methods '%s'", path), err)
	}

	var file models.MProxyMethodsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, helpers.NewConfigurationError("failed to parse proxy methods", err)
	}

	if err := ValidateProxyMethods(&file); err != nil {
		return nil, err
	}
	return &file, nil
}

// -----------------------------------------------------------------------------

// ValidateProxyMethods checks ids, fallback settings and that every enabled
// method resolves to a strategy the sequencer can run
func ValidateProxyMethods(file *models.MProxyMethodsFile) error {
	if len(file.ProxyMethods) == 0 {
		return helpers.NewConfigurationError("no proxy methods configured", nil)
	}

	enabled := 0
	seen := make(map[string]struct{}, len(file.ProxyMethods))
	for i, m := range file.ProxyMethods {
		if m.ID == "" {
			return helpers.NewConfigurationError(fmt.Sprintf("proxy method %d must have an id", i), nil)
		}
		if m.ID == "auto" {
			return helpers.NewConfigurationError("proxy method id 'auto' is reserved", nil)
		}
		if _, dup := seen[m.ID]; dup {
			return helpers.NewConfigurationError(fmt.Sprintf("duplicate proxy method id '%s'", m.ID), nil)
		}
		seen[m.ID] = struct{}{}
		if m.DelayMs < 0 {
			return helpers.NewConfigurationError(fmt.Sprintf("proxy method '%s' has negative delay", m.ID), nil)
		}
		if !m.Enabled {
			continue
		}
		if _, err := sequencer.ResolveMethod(m); err != nil {
			return err
		}
		enabled++
	}
	if enabled == 0 {
		return helpers.NewConfigurationError("no enabled proxy methods", nil)
	}

	fs := file.FallbackSettings
	if fs.MaxRetries < 1 {
		return helpers.NewConfigurationError(fmt.Sprintf("maxRetries must be at least 1, got %d", fs.MaxRetries), nil)
	}
	if fs.RetryDelay < 0 {
		return helpers.NewConfigurationError("retryDelay cannot be negative", nil)
	}
	if fs.Timeout < 0 {
		return helpers.NewConfigurationError("timeout cannot be negative", nil)
	}
	return nil
}

// -----------------------------------------------------------------------------

// ProxyMethodsOrDefault loads path and falls back to the built-in list on any failure
func ProxyMethodsOrDefault(path string, log *logger.Logger) *models.MProxyMethodsFile {
	if path == "" {
		log.Info("No proxy methods file configured, using built-in defaults")
		return DefaultProxyMethods()
	}

	file, err := LoadProxyMethods(path)
	if err != nil {
		log.Error("Failed to load proxy methods: %v", err)
		return DefaultProxyMethods()
	}

	log.Info("Loaded %d proxy methods from %s", len(file.ProxyMethods), path)
	return file
}
