package avakit

import (
	"context"
	"sync"
)

// fakeTrack implements Track for tests.
type fakeTrack struct {
	id   string
	kind TrackKind
}

func (f fakeTrack) ID() string      { return f.id }
func (f fakeTrack) Kind() TrackKind { return f.kind }

// fakeTransport is an in-memory Transport with scriptable failures and
// drivers for pushing provider notifications into the registered hooks.
type fakeTransport struct {
	mu    sync.Mutex
	state TransportState
	hooks TransportHooks

	connectErr    error
	publishErr    error
	disconnectErr error

	connectCalls    int
	disconnectCalls int
	published       [][]byte
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{state: TransportDisconnected}
}

func (f *fakeTransport) Connect(ctx context.Context, url, token string, hooks TransportHooks) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectCalls++
	if f.connectErr != nil {
		return f.connectErr
	}
	f.hooks = hooks
	f.state = TransportConnected
	return nil
}

func (f *fakeTransport) Disconnect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnectCalls++
	f.hooks = TransportHooks{}
	f.state = TransportDisconnected
	return f.disconnectErr
}

func (f *fakeTransport) PublishData(ctx context.Context, payload []byte, reliable bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, payload)
	return nil
}

func (f *fakeTransport) State() TransportState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeTransport) setState(s TransportState) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

func (f *fakeTransport) currentHooks() TransportHooks {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hooks
}

func (f *fakeTransport) pushData(payload []byte) {
	if h := f.currentHooks().OnDataReceived; h != nil {
		h(payload)
	}
}

func (f *fakeTransport) pushTrack(t Track) {
	if h := f.currentHooks().OnTrackSubscribed; h != nil {
		h(t)
	}
}

func (f *fakeTransport) pushQuality(q QualityLevel) {
	if h := f.currentHooks().OnQualityChanged; h != nil {
		h(q)
	}
}

// dropRemote simulates a provider-side disconnect: state flips first, then
// the hook fires, matching real adapter behavior.
func (f *fakeTransport) dropRemote(reason string) {
	f.mu.Lock()
	hooks := f.hooks
	f.hooks = TransportHooks{}
	f.state = TransportDisconnected
	f.mu.Unlock()
	if hooks.OnDisconnected != nil {
		hooks.OnDisconnected(reason)
	}
}
