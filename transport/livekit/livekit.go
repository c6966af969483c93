// Package livekit adapts the LiveKit server SDK to the avakit Transport
// interface. This is the production transport: avatar media arrives as WebRTC
// tracks and chat flows over LiveKit data packets.
package livekit

import (
	"context"
	"fmt"
	"sync"

	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/pion/webrtc/v4"

	"github.com/avakit/avakit"
)

// NewTransport returns an unconnected LiveKit-backed transport.
func NewTransport() avakit.Transport {
	return &roomTransport{state: avakit.TransportDisconnected}
}

// Factory returns a TransportFactory for Config.Transport.
func Factory() avakit.TransportFactory {
	return func() avakit.Transport { return NewTransport() }
}

type roomTransport struct {
	mu    sync.Mutex
	room  *lksdk.Room
	state avakit.TransportState
	hooks avakit.TransportHooks
}

func (t *roomTransport) Connect(ctx context.Context, url, token string, hooks avakit.TransportHooks) error {
	t.mu.Lock()
	if t.state != avakit.TransportDisconnected {
		t.mu.Unlock()
		return fmt.Errorf("livekit: transport already connected")
	}
	t.state = avakit.TransportConnecting
	t.hooks = hooks
	t.mu.Unlock()

	cb := &lksdk.RoomCallback{
		OnDisconnected: func() {
			t.remoteDisconnected("transport disconnected")
		},
		ParticipantCallback: lksdk.ParticipantCallback{
			OnTrackSubscribed: func(track *webrtc.TrackRemote, pub *lksdk.RemoteTrackPublication, rp *lksdk.RemoteParticipant) {
				if h := t.currentHooks().OnTrackSubscribed; h != nil {
					h(&remoteTrack{track: track})
				}
			},
			OnTrackUnsubscribed: func(track *webrtc.TrackRemote, pub *lksdk.RemoteTrackPublication, rp *lksdk.RemoteParticipant) {
				if h := t.currentHooks().OnTrackUnsubscribed; h != nil {
					h(&remoteTrack{track: track})
				}
			},
			OnDataPacket: func(data lksdk.DataPacket, params lksdk.DataReceiveParams) {
				user, ok := data.(*lksdk.UserDataPacket)
				if !ok {
					return
				}
				if h := t.currentHooks().OnDataReceived; h != nil {
					h(user.Payload)
				}
			},
			OnConnectionQualityChanged: func(update *livekit.ConnectionQualityInfo, p lksdk.Participant) {
				if h := t.currentHooks().OnQualityChanged; h != nil {
					h(qualityLevel(update.Quality))
				}
			},
		},
	}

	room, err := lksdk.ConnectToRoomWithToken(url, token, cb, lksdk.WithAutoSubscribe(true))
	if err != nil {
		t.mu.Lock()
		t.state = avakit.TransportDisconnected
		t.hooks = avakit.TransportHooks{}
		t.mu.Unlock()
		return fmt.Errorf("livekit: connect room: %w", err)
	}

	t.mu.Lock()
	t.room = room
	t.state = avakit.TransportConnected
	t.mu.Unlock()
	return nil
}

func (t *roomTransport) Disconnect(ctx context.Context) error {
	t.mu.Lock()
	room := t.room
	t.room = nil
	t.state = avakit.TransportDisconnected
	// Hooks are dropped before the SDK teardown so the room's OnDisconnected
	// callback cannot fire into them for a local disconnect.
	t.hooks = avakit.TransportHooks{}
	t.mu.Unlock()

	if room != nil {
		room.Disconnect()
	}
	return nil
}

func (t *roomTransport) PublishData(ctx context.Context, payload []byte, reliable bool) error {
	t.mu.Lock()
	room := t.room
	t.mu.Unlock()
	if room == nil {
		return fmt.Errorf("livekit: transport not connected")
	}

	opts := []lksdk.DataPublishOption{}
	if reliable {
		opts = append(opts, lksdk.WithDataPublishReliable(true))
	}
	if err := room.LocalParticipant.PublishDataPacket(lksdk.UserData(payload), opts...); err != nil {
		return fmt.Errorf("livekit: publish data: %w", err)
	}
	return nil
}

func (t *roomTransport) State() avakit.TransportState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *roomTransport) currentHooks() avakit.TransportHooks {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hooks
}

// remoteDisconnected handles a room-initiated teardown. It is a no-op after a
// local Disconnect, which already cleared the hooks.
func (t *roomTransport) remoteDisconnected(reason string) {
	t.mu.Lock()
	hooks := t.hooks
	t.room = nil
	t.state = avakit.TransportDisconnected
	t.hooks = avakit.TransportHooks{}
	t.mu.Unlock()

	if hooks.OnDisconnected != nil {
		hooks.OnDisconnected(reason)
	}
}

// remoteTrack wraps a WebRTC remote track in the avakit Track interface.
type remoteTrack struct {
	track *webrtc.TrackRemote
}

func (r *remoteTrack) ID() string { return r.track.ID() }

func (r *remoteTrack) Kind() avakit.TrackKind {
	switch r.track.Kind() {
	case webrtc.RTPCodecTypeVideo:
		return avakit.TrackKindVideo
	case webrtc.RTPCodecTypeAudio:
		return avakit.TrackKindAudio
	default:
		return avakit.TrackKind(r.track.Kind().String())
	}
}

// Remote exposes the underlying WebRTC track for sinks that consume media.
func (r *remoteTrack) Remote() *webrtc.TrackRemote { return r.track }

func qualityLevel(q livekit.ConnectionQuality) avakit.QualityLevel {
	switch q {
	case livekit.ConnectionQuality_EXCELLENT:
		return avakit.QualityExcellent
	case livekit.ConnectionQuality_GOOD:
		return avakit.QualityGood
	case livekit.ConnectionQuality_POOR:
		return avakit.QualityPoor
	default:
		return avakit.QualityLost
	}
}
