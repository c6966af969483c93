package avakit

import (
	"context"
	"errors"
	"sync"
)

// Client is the entry point of the SDK. It wraps the backend gateway and
// keeps a registry of live session controllers so callers address sessions by
// ID. All methods are safe for concurrent use.
type Client struct {
	cfg          Config
	gateway      *Gateway
	newTransport TransportFactory
	log          logSink
	metrics      *Metrics

	mu       sync.Mutex
	sessions map[string]*SessionController
}

// New creates a Client from the given configuration.
func New(cfg Config) (*Client, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	gateway, err := NewGateway(cfg)
	if err != nil {
		return nil, err
	}
	return &Client{
		cfg:          cfg,
		gateway:      gateway,
		newTransport: cfg.Transport,
		log:          newLogSink(cfg),
		metrics:      cfg.Metrics,
		sessions:     make(map[string]*SessionController),
	}, nil
}

// Gateway exposes the underlying HTTP gateway, e.g. to wrap it with retry via
// NewResilientGateway.
func (c *Client) Gateway() *Gateway { return c.gateway }

// CreateSession provisions a session through the backend and registers a
// controller for it. The controller is not connected; call Connect on it.
func (c *Client) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionController, error) {
	session, err := c.gateway.CreateSession(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.register(session), nil
}

// register inserts a controller for session, or returns the existing one if a
// concurrent call registered it first.
func (c *Client) register(session Session) *SessionController {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.sessions[session.ID]; ok {
		return existing
	}
	ctrl := newSessionController(session, c.newTransport(), c.log, c.metrics)
	c.sessions[session.ID] = ctrl
	c.metrics.activeSessions(len(c.sessions))
	return ctrl
}

// GetSession returns the controller for id. Known sessions are answered from
// the registry without network traffic; unknown ones are fetched from the
// backend and registered. A failed fetch reports (nil, false); the failure is
// logged, not returned.
func (c *Client) GetSession(ctx context.Context, id string) (*SessionController, bool) {
	c.mu.Lock()
	ctrl, ok := c.sessions[id]
	c.mu.Unlock()
	if ok {
		return ctrl, true
	}

	session, err := c.gateway.GetSession(ctx, id)
	if err != nil {
		c.log.warn("session_lookup_failed", map[string]any{
			"session_id": id,
			"err":        err.Error(),
		})
		return nil, false
	}
	return c.register(session), true
}

// EndSession terminates a session locally and remotely: the controller is
// removed from the registry and disconnected first, then the backend is asked
// to end the session. The local removal happens regardless of the outcome of
// the remote call, whose error is returned.
func (c *Client) EndSession(ctx context.Context, id string) error {
	c.mu.Lock()
	ctrl, ok := c.sessions[id]
	delete(c.sessions, id)
	c.metrics.activeSessions(len(c.sessions))
	c.mu.Unlock()

	if ok {
		if err := ctrl.Disconnect(ctx); err != nil {
			c.log.error("session_teardown_failed", map[string]any{
				"session_id": id,
				"err":        err.Error(),
			})
		}
	}
	return c.gateway.EndSession(ctx, id)
}

// Cleanup disconnects every tracked session concurrently and empties the
// registry. It always completes the full teardown; individual failures are
// collected and returned joined.
func (c *Client) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	controllers := make([]*SessionController, 0, len(c.sessions))
	for _, ctrl := range c.sessions {
		controllers = append(controllers, ctrl)
	}
	c.sessions = make(map[string]*SessionController)
	c.metrics.activeSessions(0)
	c.mu.Unlock()

	errs := make([]error, len(controllers))
	var wg sync.WaitGroup
	for i, ctrl := range controllers {
		wg.Add(1)
		go func(i int, ctrl *SessionController) {
			defer wg.Done()
			errs[i] = ctrl.Disconnect(ctx)
		}(i, ctrl)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// ActiveSessions returns a snapshot of the tracked controllers keyed by
// session ID. Mutating the returned map does not affect the registry.
func (c *Client) ActiveSessions() map[string]*SessionController {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]*SessionController, len(c.sessions))
	for id, ctrl := range c.sessions {
		out[id] = ctrl
	}
	return out
}

// ListAvatars returns all avatars the backend offers.
func (c *Client) ListAvatars(ctx context.Context) ([]Avatar, error) {
	return c.gateway.ListAvatars(ctx)
}

// GetAvatar fetches one avatar by ID.
func (c *Client) GetAvatar(ctx context.Context, id string) (Avatar, error) {
	return c.gateway.GetAvatar(ctx, id)
}

// CreateAvatar registers a new avatar with the backend.
func (c *Client) CreateAvatar(ctx context.Context, req CreateAvatarRequest) (Avatar, error) {
	return c.gateway.CreateAvatar(ctx, req)
}

// GetSessionStatus returns the backend's view of a session's state.
func (c *Client) GetSessionStatus(ctx context.Context, id string) (SessionStatusInfo, error) {
	return c.gateway.GetSessionStatus(ctx, id)
}

// Health probes the backend's health endpoint.
func (c *Client) Health(ctx context.Context) (HealthReport, error) {
	return c.gateway.Health(ctx)
}
