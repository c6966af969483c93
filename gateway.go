package avakit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Gateway is the HTTP client for the avatar backend's REST surface: avatar
// discovery, session provisioning, and the health probe. It is stateless and
// safe for concurrent use.
type Gateway struct {
	base    *url.URL
	cred    Credential
	http    *http.Client
	log     logSink
	metrics *Metrics
}

// NewGateway creates a gateway from a validated Config.
func NewGateway(cfg Config) (*Gateway, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, NewConfigError("BaseURL", cfg.BaseURL, "must be an absolute URL")
	}
	return &Gateway{
		base:    base,
		cred:    cfg.Credential,
		http:    cfg.httpClient(),
		log:     newLogSink(cfg),
		metrics: cfg.Metrics,
	}, nil
}

// do performs one backend call: marshals in (when non-nil) as the JSON body,
// applies the credential unless the call is unauthenticated, maps failures
// onto the error taxonomy, and decodes the response into out (when non-nil).
// path must already be escaped; IDs go through url.PathEscape at call sites.
func (g *Gateway) do(ctx context.Context, operation, method, path string, in, out any, authed bool) error {
	endpoint := strings.TrimRight(g.base.String(), "/") + path

	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", operation, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		g.cred.apply(req.Header)
	}

	start := time.Now()
	resp, err := g.http.Do(req)
	g.metrics.observeGateway(operation, time.Since(start))
	if err != nil {
		return NewNetworkError(operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		apiErr := apiErrorFromBody(operation, resp.StatusCode, raw)
		g.log.warn("gateway_request_failed", map[string]any{
			"operation": operation,
			"status":    resp.StatusCode,
		})
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%s: decode response: %w", operation, err)
		}
	}
	return nil
}

// ListAvatars returns all avatars the backend offers.
func (g *Gateway) ListAvatars(ctx context.Context) ([]Avatar, error) {
	var avatars []Avatar
	if err := g.do(ctx, "list_avatars", http.MethodGet, "/v1/avatars", nil, &avatars, true); err != nil {
		return nil, err
	}
	return avatars, nil
}

// GetAvatar fetches one avatar by ID.
func (g *Gateway) GetAvatar(ctx context.Context, id string) (Avatar, error) {
	var avatar Avatar
	err := g.do(ctx, "get_avatar", http.MethodGet, "/v1/avatars/"+url.PathEscape(id), nil, &avatar, true)
	return avatar, err
}

// CreateAvatar registers a new avatar. The request is validated locally
// before any network traffic.
func (g *Gateway) CreateAvatar(ctx context.Context, req CreateAvatarRequest) (Avatar, error) {
	var avatar Avatar
	if err := req.validate(); err != nil {
		return avatar, err
	}
	err := g.do(ctx, "create_avatar", http.MethodPost, "/v1/avatars", req, &avatar, true)
	return avatar, err
}

// CreateSession provisions a new avatar session. The returned descriptor
// carries the transport URL and join token; it does not open a connection.
func (g *Gateway) CreateSession(ctx context.Context, req CreateSessionRequest) (Session, error) {
	var session Session
	if err := req.validate(); err != nil {
		return session, err
	}
	err := g.do(ctx, "create_session", http.MethodPost, "/v1/sessions/create", req, &session, true)
	if err == nil {
		g.metrics.sessionCreated()
	}
	return session, err
}

// GetSession fetches one session descriptor by ID.
func (g *Gateway) GetSession(ctx context.Context, id string) (Session, error) {
	var session Session
	err := g.do(ctx, "get_session", http.MethodGet, "/v1/sessions/"+url.PathEscape(id), nil, &session, true)
	return session, err
}

// GetSessionStatus returns the backend's view of a session's state.
func (g *Gateway) GetSessionStatus(ctx context.Context, id string) (SessionStatusInfo, error) {
	var info SessionStatusInfo
	err := g.do(ctx, "get_session_status", http.MethodGet, "/v1/sessions/"+url.PathEscape(id)+"/status", nil, &info, true)
	return info, err
}

// EndSession asks the backend to terminate a session.
func (g *Gateway) EndSession(ctx context.Context, id string) error {
	return g.do(ctx, "end_session", http.MethodPost, "/v1/sessions/"+url.PathEscape(id)+"/end", nil, nil, true)
}

// Health probes the backend's unauthenticated health endpoint at the base
// root. Any failure, network or HTTP, is reported as a HealthCheckError.
func (g *Gateway) Health(ctx context.Context) (HealthReport, error) {
	var report HealthReport
	if err := g.do(ctx, "health", http.MethodGet, "/health", nil, &report, false); err != nil {
		return HealthReport{}, &HealthCheckError{Cause: err}
	}
	return report, nil
}
