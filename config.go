package avakit

import (
	"net/http"
	"net/url"
	"time"
)

// Credential represents an authentication method for the avatar backend.
// Implementations apply the appropriate header to outgoing requests. The
// health probe never carries a credential.
type Credential interface{ apply(h http.Header) }

// APIKey authenticates with a static API key in the X-API-Key header.
type APIKey string

func (k APIKey) apply(h http.Header) {
	if k != "" {
		h.Set("X-API-Key", string(k))
	}
}

// Bearer authenticates with an OAuth2/JWT Bearer token.
type Bearer string

func (b Bearer) apply(h http.Header) {
	if b != "" {
		h.Set("Authorization", "Bearer "+string(b))
	}
}

// TransportFactory produces a fresh, unconnected Transport for each new
// session controller. Controllers never share transports.
type TransportFactory func() Transport

// Config holds all options for creating a Client.
type Config struct {
	// BaseURL is the root of the avatar backend, e.g. https://api.example.com.
	// Versioned operations are mounted under /v1; the health probe under /health.
	// Required.
	BaseURL string

	// Credential authenticates every call except the health probe.
	// Required.
	Credential Credential

	// Transport produces the real-time transport for each session.
	// Use livekit.Factory() for production, wsbridge.Factory(...) for
	// data-only deployments.
	// Required.
	Transport TransportFactory

	// HTTPClient overrides the HTTP client used for backend calls.
	// Optional; defaults to a client with RequestTimeout applied.
	HTTPClient *http.Client

	// RequestTimeout bounds each backend call when HTTPClient is nil.
	// Optional; defaults to 15 seconds.
	RequestTimeout time.Duration

	// Metrics enables Prometheus instrumentation when non-nil.
	// Optional.
	Metrics *Metrics

	// Logger is called for significant events with structured fields.
	// Optional; ignored when StructuredLogger is set.
	Logger func(event string, fields map[string]any)

	// StructuredLogger provides leveled logging and takes precedence over
	// Logger. Use NewLogger or NewLoggerFromEnv.
	// Optional.
	StructuredLogger *Logger
}

const defaultRequestTimeout = 15 * time.Second

// ValidateConfig checks that every required field is present and well-formed.
func ValidateConfig(cfg Config) error {
	if cfg.BaseURL == "" {
		return NewConfigError("BaseURL", "", "cannot be empty")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return NewConfigError("BaseURL", cfg.BaseURL, "must be an absolute URL")
	}
	if cfg.Credential == nil {
		return NewConfigError("Credential", "", "cannot be nil")
	}
	if cfg.Transport == nil {
		return NewConfigError("Transport", "", "cannot be nil")
	}
	if cfg.RequestTimeout < 0 {
		return NewConfigError("RequestTimeout", cfg.RequestTimeout.String(), "cannot be negative")
	}
	return nil
}

func (cfg Config) httpClient() *http.Client {
	if cfg.HTTPClient != nil {
		return cfg.HTTPClient
	}
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}
	return &http.Client{Timeout: timeout}
}
