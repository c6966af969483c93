package avakit

import "context"

// TransportState is the provider-reported connection state. Controllers map
// it into the SessionStatus vocabulary; anything outside these constants maps
// to StatusError.
type TransportState string

const (
	TransportDisconnected TransportState = "disconnected"
	TransportConnecting   TransportState = "connecting"
	TransportConnected    TransportState = "connected"
)

// TrackKind is the media kind of a remote track.
type TrackKind string

const (
	TrackKindVideo TrackKind = "video"
	TrackKindAudio TrackKind = "audio"
)

// QualityLevel is the normalized connection quality reported by the provider.
type QualityLevel string

const (
	QualityExcellent QualityLevel = "excellent"
	QualityGood      QualityLevel = "good"
	QualityPoor      QualityLevel = "poor"
	QualityLost      QualityLevel = "lost"
)

// Track is a remote media track published by the avatar. Adapters wrap their
// provider's track handle; consumers that need the raw handle type-assert the
// adapter's concrete type.
type Track interface {
	ID() string
	Kind() TrackKind
}

// TransportHooks are the provider-notification callbacks a controller
// registers with Connect. Hooks are handed over atomically with connection
// establishment so no early notification is lost, and adapters must drop them
// on teardown so repeated connect/disconnect cycles cannot leak callbacks.
// Adapters invoke hooks from a single goroutine, preserving notification
// order. OnDisconnected fires only for remote/unexpected disconnects, never
// for a local Disconnect call.
type TransportHooks struct {
	OnTrackSubscribed   func(Track)
	OnTrackUnsubscribed func(Track)
	OnDataReceived      func(payload []byte)
	OnDisconnected      func(reason string)
	OnQualityChanged    func(QualityLevel)
}

// Transport is the port to the external real-time communication provider.
// The SDK never implements signaling or media negotiation itself; adapters
// wrap a provider SDK. A Transport carries at most one connection at a time
// and is never shared between controllers.
type Transport interface {
	// Connect establishes the provider connection and registers hooks.
	Connect(ctx context.Context, url, token string, hooks TransportHooks) error

	// Disconnect tears the connection down. It is a no-op when not connected
	// and must release all registered hooks.
	Disconnect(ctx context.Context) error

	// PublishData sends a payload over the provider's data channel. With
	// reliable set, delivery is ordered and guaranteed.
	PublishData(ctx context.Context, payload []byte, reliable bool) error

	// State is a pure read of the current connection state.
	State() TransportState
}
