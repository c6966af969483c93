package avakit

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType identifies one of the closed set of domain events the SDK emits.
type EventType string

const (
	EventSessionStarted    EventType = "session.started"
	EventSessionEnded      EventType = "session.ended"
	EventAvatarVideo       EventType = "avatar.video"
	EventAvatarAudio       EventType = "avatar.audio"
	EventAvatarResponse    EventType = "avatar.response"
	EventAvatarStatus      EventType = "avatar.status"
	EventAvatarError       EventType = "avatar.error"
	EventConnectionQuality EventType = "connection.quality"
)

// EndedPayload accompanies session.ended events.
type EndedPayload struct {
	Reason string `json:"reason,omitempty"`
}

// ResponsePayload accompanies avatar.response events.
type ResponsePayload struct {
	Text string `json:"text"`
}

// StatusPayload accompanies avatar.status events.
type StatusPayload struct {
	Status string `json:"status"`
}

// ErrorPayload accompanies avatar.error events.
type ErrorPayload struct {
	Message string `json:"message"`
}

// QualityPayload accompanies connection.quality events.
type QualityPayload struct {
	Level QualityLevel `json:"level"`
}

// Event is a normalized domain event. It is a tagged union: Type selects
// which payload field is non-nil (Track for avatar.video/avatar.audio).
// Events are ephemeral; they are fanned out synchronously to registered
// handlers and never queued or persisted.
type Event struct {
	Type      EventType `json:"type"`
	Session   Session   `json:"session"`
	Timestamp time.Time `json:"timestamp"`

	Track    Track            `json:"-"`
	Ended    *EndedPayload    `json:"ended,omitempty"`
	Response *ResponsePayload `json:"response,omitempty"`
	Status   *StatusPayload   `json:"status,omitempty"`
	Error    *ErrorPayload    `json:"error,omitempty"`
	Quality  *QualityPayload  `json:"quality,omitempty"`
}

// Handler receives domain events. Handlers run synchronously on the
// notification goroutine and should not block; panics are recovered and
// logged without affecting other handlers.
type Handler func(Event)

// HandlerID identifies a registered handler for later removal.
type HandlerID string

type handlerEntry struct {
	id HandlerID
	fn Handler
}

// dispatcher fans events out to registered handlers per event type, in
// registration order. The lock is never held while user code runs, so
// handlers may call On/Off re-entrantly.
type dispatcher struct {
	mu       sync.Mutex
	handlers map[EventType][]handlerEntry
	log      logSink
	metrics  *Metrics
}

func newDispatcher(log logSink, metrics *Metrics) *dispatcher {
	return &dispatcher{
		handlers: make(map[EventType][]handlerEntry),
		log:      log,
		metrics:  metrics,
	}
}

func (d *dispatcher) on(t EventType, h Handler) HandlerID {
	id := HandlerID(uuid.NewString())
	d.mu.Lock()
	d.handlers[t] = append(d.handlers[t], handlerEntry{id: id, fn: h})
	d.mu.Unlock()
	return id
}

// off removes the handler registered under id. Removing an unknown id is a
// no-op.
func (d *dispatcher) off(t EventType, id HandlerID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entries := d.handlers[t]
	for i, e := range entries {
		if e.id == id {
			d.handlers[t] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

func (d *dispatcher) emit(e Event) {
	d.mu.Lock()
	entries := make([]handlerEntry, len(d.handlers[e.Type]))
	copy(entries, d.handlers[e.Type])
	d.mu.Unlock()

	d.metrics.eventEmitted(e.Type)
	for _, entry := range entries {
		d.invoke(entry, e)
	}
}

func (d *dispatcher) invoke(entry handlerEntry, e Event) {
	defer func() {
		if r := recover(); r != nil {
			d.log.error("event_handler_panic", map[string]any{
				"event_type": string(e.Type),
				"session_id": e.Session.ID,
				"panic":      r,
			})
		}
	}()
	entry.fn(e)
}
