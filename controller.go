package avakit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/looplab/fsm"
)

// SessionStatus is the lifecycle state of a SessionController as exposed to
// callers.
type SessionStatus string

const (
	StatusDisconnected SessionStatus = "disconnected"
	StatusConnecting   SessionStatus = "connecting"
	StatusConnected    SessionStatus = "connected"
	StatusError        SessionStatus = "error"
)

// Lifecycle FSM vocabulary. "ended" and "error" are internal resting states;
// both surface to callers as StatusDisconnected / StatusError through the
// transport state mapping in Status.
const (
	stateDisconnected = "disconnected"
	stateConnecting   = "connecting"
	stateConnected    = "connected"
	stateEnded        = "ended"
	stateError        = "error"

	eventConnect       = "connect"
	eventEstablished   = "established"
	eventConnectFailed = "connect_failed"
	eventEnd           = "end"
)

func newLifecycle() *fsm.FSM {
	return fsm.NewFSM(
		stateDisconnected,
		fsm.Events{
			// Reconnecting a session that ended or errored is legal; the
			// backend decides whether the descriptor is still usable.
			{Name: eventConnect, Src: []string{stateDisconnected, stateEnded, stateError}, Dst: stateConnecting},
			{Name: eventEstablished, Src: []string{stateConnecting}, Dst: stateConnected},
			{Name: eventConnectFailed, Src: []string{stateConnecting}, Dst: stateDisconnected},
			{Name: eventEnd, Src: []string{stateDisconnected, stateConnecting, stateConnected, stateError}, Dst: stateEnded},
		},
		fsm.Callbacks{},
	)
}

// SessionController manages one avatar conversation: the lifecycle state
// machine, the transport connection, outbound chat, and the event handler
// registry. Controllers are created by the Client and are safe for concurrent
// use.
type SessionController struct {
	session   Session
	transport Transport
	norm      *eventNormalizer
	disp      *dispatcher
	log       logSink

	mu      sync.Mutex
	machine *fsm.FSM
}

func newSessionController(session Session, transport Transport, log logSink, metrics *Metrics) *SessionController {
	disp := newDispatcher(log, metrics)
	c := &SessionController{
		session:   session,
		transport: transport,
		norm:      newEventNormalizer(session, disp, log),
		disp:      disp,
		log:       log,
		machine:   newLifecycle(),
	}
	// A remote disconnect moves the lifecycle to ended; the normalizer emits
	// the session.ended event itself, so no emission here.
	c.norm.onTransportClosed = func(reason string) {
		c.mu.Lock()
		defer c.mu.Unlock()
		_ = c.machine.Event(context.Background(), eventEnd)
	}
	return c
}

// Session returns the immutable session descriptor.
func (c *SessionController) Session() Session { return c.session }

// ID returns the session identifier.
func (c *SessionController) ID() string { return c.session.ID }

// Connect establishes the real-time connection for this session. Sinks may be
// nil; when provided, their non-nil entries are bound to the avatar's tracks
// as they arrive. Connect returns ErrAlreadyConnected if a connection is in
// flight or established, and a ConnectionSetupError if the session carries no
// transport credential or the dial fails. On success a session.started event
// is emitted.
func (c *SessionController) Connect(ctx context.Context, sinks *MediaSinks) error {
	if c.session.LiveKitToken == "" || c.session.LiveKitURL == "" {
		return NewConnectionSetupError(c.session.ID, "session has no transport credential", nil)
	}

	c.mu.Lock()
	if err := c.machine.Event(ctx, eventConnect); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("%w: session %q is %s", ErrAlreadyConnected, c.session.ID, c.machine.Current())
	}

	// When the descriptor carries no expiry, fall back to the join token's
	// own exp claim.
	expiry := c.session.ExpiresAt
	if expiry.IsZero() {
		if exp, err := CredentialExpiry(c.session.LiveKitToken); err == nil {
			expiry = exp
		}
	}
	if !expiry.IsZero() && time.Now().After(expiry) {
		c.log.warn("session_credential_expired", map[string]any{
			"session_id": c.session.ID,
			"expires_at": expiry,
		})
	}

	if sinks != nil {
		c.norm.bindSinks(*sinks)
	}

	err := c.transport.Connect(ctx, c.session.LiveKitURL, c.session.LiveKitToken, c.norm.hooks())
	if err != nil {
		_ = c.machine.Event(ctx, eventConnectFailed)
		c.mu.Unlock()
		return NewConnectionSetupError(c.session.ID, "transport connect failed", err)
	}
	_ = c.machine.Event(ctx, eventEstablished)
	c.mu.Unlock()

	c.log.info("session_connected", map[string]any{"session_id": c.session.ID})
	c.norm.emit(Event{Type: EventSessionStarted})
	return nil
}

// Disconnect tears down the transport connection and moves the session to its
// terminal state. It is idempotent: calling it on a session that never
// connected, or twice, still emits exactly one session.ended event per call
// and returns nil unless the transport teardown itself failed.
func (c *SessionController) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	var terr error
	if c.transport.State() != TransportDisconnected {
		terr = c.transport.Disconnect(ctx)
	}
	_ = c.machine.Event(ctx, eventEnd)
	c.mu.Unlock()

	c.norm.emit(Event{Type: EventSessionEnded, Ended: &EndedPayload{Reason: "client disconnect"}})
	if terr != nil {
		return fmt.Errorf("disconnect session %q: %w", c.session.ID, terr)
	}
	c.log.info("session_disconnected", map[string]any{"session_id": c.session.ID})
	return nil
}

// SendMessage sends a chat message to the avatar over the reliable data
// channel. It requires an established connection; a failed send leaves the
// connection state unchanged.
func (c *SessionController) SendMessage(ctx context.Context, text string) error {
	if c.Status() != StatusConnected {
		return fmt.Errorf("%w: cannot send on session %q", ErrNotConnected, c.session.ID)
	}
	payload, err := encodeChat(text)
	if err != nil {
		return NewMessagingError(c.session.ID, err)
	}
	if err := c.transport.PublishData(ctx, payload, true); err != nil {
		return NewMessagingError(c.session.ID, err)
	}
	return nil
}

// Status derives the caller-visible status from the live transport state, so
// it reflects remote disconnects the moment the provider reports them.
func (c *SessionController) Status() SessionStatus {
	switch c.transport.State() {
	case TransportDisconnected:
		return StatusDisconnected
	case TransportConnecting:
		return StatusConnecting
	case TransportConnected:
		return StatusConnected
	default:
		return StatusError
	}
}

// On registers a handler for an event type and returns its registration ID.
func (c *SessionController) On(t EventType, h Handler) HandlerID {
	return c.disp.on(t, h)
}

// Off removes a previously registered handler. Unknown IDs are ignored.
func (c *SessionController) Off(t EventType, id HandlerID) {
	c.disp.off(t, id)
}
