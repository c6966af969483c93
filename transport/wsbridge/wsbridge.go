// Package wsbridge adapts a WebSocket bridge to the avakit Transport
// interface. It carries data-channel traffic and control notifications only;
// deployments that need real media use the livekit transport instead. Useful
// for text-only avatar sessions and for environments where WebRTC is
// unavailable.
package wsbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"github.com/avakit/avakit"
)

// Options configures the bridge transport.
type Options struct {
	// DialTimeout bounds the WebSocket handshake. Default: 10 seconds.
	DialTimeout time.Duration

	// HTTPClient overrides the client used for the handshake. Optional.
	HTTPClient *http.Client
}

const (
	defaultDialTimeout = 10 * time.Second
	writeTimeout       = 15 * time.Second
	pingInterval       = 20 * time.Second
)

// NewTransport returns an unconnected bridge transport.
func NewTransport(opts Options) avakit.Transport {
	if opts.DialTimeout == 0 {
		opts.DialTimeout = defaultDialTimeout
	}
	return &bridgeTransport{opts: opts, state: avakit.TransportDisconnected}
}

// Factory returns a TransportFactory for Config.Transport.
func Factory(opts Options) avakit.TransportFactory {
	return func() avakit.Transport { return NewTransport(opts) }
}

// Bridge frame format. Every message on the socket is a JSON object with a
// "kind" discriminator.
type frame struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Track   *trackInfo      `json:"track,omitempty"`
	Quality string          `json:"quality,omitempty"`
	Reason  string          `json:"reason,omitempty"`
}

type trackInfo struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Subscribed bool   `json:"subscribed"`
}

type outFrame struct {
	Kind     string          `json:"kind"`
	Payload  json.RawMessage `json:"payload"`
	Reliable bool            `json:"reliable"`
}

type bridgeTransport struct {
	opts Options

	mu         sync.Mutex
	conn       *websocket.Conn
	state      avakit.TransportState
	hooks      avakit.TransportHooks
	readCancel context.CancelFunc
}

func (t *bridgeTransport) Connect(ctx context.Context, url, token string, hooks avakit.TransportHooks) error {
	t.mu.Lock()
	if t.state != avakit.TransportDisconnected {
		t.mu.Unlock()
		return fmt.Errorf("wsbridge: transport already connected")
	}
	t.state = avakit.TransportConnecting
	t.hooks = hooks
	t.mu.Unlock()

	dialCtx, cancel := context.WithTimeout(ctx, t.opts.DialTimeout)
	defer cancel()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, _, err := websocket.Dial(dialCtx, url, &websocket.DialOptions{
		HTTPHeader: header,
		HTTPClient: t.opts.HTTPClient,
	})
	if err != nil {
		t.mu.Lock()
		t.state = avakit.TransportDisconnected
		t.hooks = avakit.TransportHooks{}
		t.mu.Unlock()
		return fmt.Errorf("wsbridge: dial: %w", err)
	}
	conn.SetReadLimit(1 << 20)

	readCtx, readCancel := context.WithCancel(context.Background())
	t.mu.Lock()
	t.conn = conn
	t.state = avakit.TransportConnected
	t.readCancel = readCancel
	t.mu.Unlock()

	go t.readLoop(readCtx, conn)
	go t.pingLoop(readCtx, conn)
	return nil
}

func (t *bridgeTransport) Disconnect(ctx context.Context) error {
	t.mu.Lock()
	conn := t.conn
	cancel := t.readCancel
	t.conn = nil
	t.readCancel = nil
	t.state = avakit.TransportDisconnected
	// Hooks go first so the read loop's exit cannot report a local teardown
	// as a remote disconnect.
	t.hooks = avakit.TransportHooks{}
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		if err := conn.Close(websocket.StatusNormalClosure, "client disconnect"); err != nil {
			return fmt.Errorf("wsbridge: close: %w", err)
		}
	}
	return nil
}

func (t *bridgeTransport) PublishData(ctx context.Context, payload []byte, reliable bool) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("wsbridge: transport not connected")
	}

	data, err := json.Marshal(outFrame{Kind: "data", Payload: payload, Reliable: reliable})
	if err != nil {
		return fmt.Errorf("wsbridge: encode frame: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := conn.Write(writeCtx, websocket.MessageText, data); err != nil {
		return fmt.Errorf("wsbridge: write: %w", err)
	}
	return nil
}

func (t *bridgeTransport) State() avakit.TransportState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *bridgeTransport) currentHooks() avakit.TransportHooks {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hooks
}

// readLoop delivers every inbound frame to the hooks from this single
// goroutine, preserving notification order.
func (t *bridgeTransport) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.remoteClosed(conn, err)
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			// Unparseable frames are dropped; the shared envelope keeps the
			// bridge forward-compatible.
			continue
		}

		hooks := t.currentHooks()
		switch f.Kind {
		case "data":
			if hooks.OnDataReceived != nil {
				hooks.OnDataReceived(f.Payload)
			}
		case "track":
			if f.Track == nil {
				continue
			}
			bt := &bridgeTrack{id: f.Track.ID, kind: avakit.TrackKind(f.Track.Kind)}
			if f.Track.Subscribed {
				if hooks.OnTrackSubscribed != nil {
					hooks.OnTrackSubscribed(bt)
				}
			} else if hooks.OnTrackUnsubscribed != nil {
				hooks.OnTrackUnsubscribed(bt)
			}
		case "quality":
			if hooks.OnQualityChanged != nil {
				hooks.OnQualityChanged(avakit.QualityLevel(f.Quality))
			}
		case "close":
			t.remoteClosed(conn, fmt.Errorf("bridge closed: %s", f.Reason))
			return
		}
	}
}

func (t *bridgeTransport) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// remoteClosed handles a socket that closed underneath us. The conn identity
// check makes it a no-op after a local Disconnect swapped the state already.
func (t *bridgeTransport) remoteClosed(conn *websocket.Conn, cause error) {
	t.mu.Lock()
	if t.conn != conn {
		t.mu.Unlock()
		return
	}
	hooks := t.hooks
	cancel := t.readCancel
	t.conn = nil
	t.readCancel = nil
	t.state = avakit.TransportDisconnected
	t.hooks = avakit.TransportHooks{}
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	conn.Close(websocket.StatusNormalClosure, "")
	if hooks.OnDisconnected != nil {
		hooks.OnDisconnected(cause.Error())
	}
}

// bridgeTrack is a track descriptor relayed by the bridge. It carries no
// media handle; bridge deployments are data-only.
type bridgeTrack struct {
	id   string
	kind avakit.TrackKind
}

func (b *bridgeTrack) ID() string             { return b.id }
func (b *bridgeTrack) Kind() avakit.TrackKind { return b.kind }
