package avakit

import (
	"encoding/json"
	"sync"
	"time"
)

// eventNormalizer translates raw transport notifications into domain events
// for exactly one session. It owns the dispatcher and the media sink binding;
// the controller hands its hooks() to Transport.Connect so translation is
// registered atomically with connection establishment.
type eventNormalizer struct {
	session Session
	disp    *dispatcher
	log     logSink

	mu    sync.Mutex
	sinks MediaSinks

	// onTransportClosed lets the controller observe remote disconnects
	// (lifecycle transition) without a second session.ended emission.
	onTransportClosed func(reason string)
}

func newEventNormalizer(session Session, disp *dispatcher, log logSink) *eventNormalizer {
	return &eventNormalizer{session: session, disp: disp, log: log}
}

func (n *eventNormalizer) bindSinks(s MediaSinks) {
	n.mu.Lock()
	n.sinks = s
	n.mu.Unlock()
}

func (n *eventNormalizer) currentSinks() MediaSinks {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sinks
}

func (n *eventNormalizer) hooks() TransportHooks {
	return TransportHooks{
		OnTrackSubscribed:   n.onTrackSubscribed,
		OnTrackUnsubscribed: n.onTrackUnsubscribed,
		OnDataReceived:      n.onDataReceived,
		OnDisconnected:      n.onDisconnected,
		OnQualityChanged:    n.onQualityChanged,
	}
}

// emit stamps the session snapshot and a UTC timestamp before fan-out.
func (n *eventNormalizer) emit(e Event) {
	e.Session = n.session
	e.Timestamp = time.Now().UTC()
	n.disp.emit(e)
}

func (n *eventNormalizer) onTrackSubscribed(t Track) {
	sinks := n.currentSinks()
	switch t.Kind() {
	case TrackKindVideo:
		n.bindSink(sinks.Video, t)
		n.emit(Event{Type: EventAvatarVideo, Track: t})
	case TrackKindAudio:
		n.bindSink(sinks.Audio, t)
		n.emit(Event{Type: EventAvatarAudio, Track: t})
	default:
		n.log.warn("track_kind_unknown", map[string]any{
			"session_id": n.session.ID,
			"track_id":   t.ID(),
			"kind":       string(t.Kind()),
		})
	}
}

func (n *eventNormalizer) bindSink(sink TrackSink, t Track) {
	if sink == nil {
		return
	}
	if err := sink.BindTrack(t); err != nil {
		n.log.error("sink_bind_failed", map[string]any{
			"session_id": n.session.ID,
			"track_id":   t.ID(),
			"err":        err.Error(),
		})
	}
}

func (n *eventNormalizer) onTrackUnsubscribed(t Track) {
	n.log.info("track_unsubscribed", map[string]any{
		"session_id": n.session.ID,
		"track_id":   t.ID(),
		"kind":       string(t.Kind()),
	})
}

// onDataReceived decodes a data-channel payload and dispatches it by its
// type discriminator. Malformed payloads and unknown discriminators are
// logged and dropped so forward-incompatible messages never crash a session.
func (n *eventNormalizer) onDataReceived(payload []byte) {
	var env wireEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		n.log.warn("data_payload_malformed", map[string]any{
			"session_id": n.session.ID,
			"err":        err.Error(),
		})
		return
	}
	switch env.Type {
	case wireStatus:
		n.emit(Event{Type: EventAvatarStatus, Status: &StatusPayload{Status: env.Status}})
	case wireResponse:
		n.emit(Event{Type: EventAvatarResponse, Response: &ResponsePayload{Text: env.Text}})
	case wireError:
		n.emit(Event{Type: EventAvatarError, Error: &ErrorPayload{Message: env.Text}})
	default:
		n.log.warn("data_type_unknown", map[string]any{
			"session_id": n.session.ID,
			"type":       env.Type,
		})
	}
}

func (n *eventNormalizer) onDisconnected(reason string) {
	if cb := n.onTransportClosed; cb != nil {
		cb(reason)
	}
	n.emit(Event{Type: EventSessionEnded, Ended: &EndedPayload{Reason: reason}})
}

func (n *eventNormalizer) onQualityChanged(q QualityLevel) {
	n.emit(Event{Type: EventConnectionQuality, Quality: &QualityPayload{Level: q}})
}
