package avakit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() Session {
	return Session{
		ID:           "s1",
		RoomID:       "r1",
		LiveKitToken: "tok",
		LiveKitURL:   "wss://rt.example.com",
	}
}

func testController(session Session) (*SessionController, *fakeTransport) {
	tr := newFakeTransport()
	return newSessionController(session, tr, logSink{}, nil), tr
}

func TestControllerConnect(t *testing.T) {
	ctrl, tr := testController(testSession())

	var started []Event
	ctrl.On(EventSessionStarted, func(e Event) { started = append(started, e) })

	require.NoError(t, ctrl.Connect(context.Background(), nil))
	assert.Equal(t, StatusConnected, ctrl.Status())
	assert.Equal(t, 1, tr.connectCalls)
	require.Len(t, started, 1)
	assert.Equal(t, "s1", started[0].Session.ID)
}

func TestControllerConnectWithoutCredential(t *testing.T) {
	session := testSession()
	session.LiveKitToken = ""
	ctrl, tr := testController(session)

	err := ctrl.Connect(context.Background(), nil)
	require.ErrorIs(t, err, ErrConnectionSetup)
	assert.Equal(t, StatusDisconnected, ctrl.Status())
	assert.Zero(t, tr.connectCalls, "no dial without a credential")
}

func TestControllerConnectWhileConnected(t *testing.T) {
	ctrl, tr := testController(testSession())

	require.NoError(t, ctrl.Connect(context.Background(), nil))
	err := ctrl.Connect(context.Background(), nil)
	require.ErrorIs(t, err, ErrAlreadyConnected)
	assert.Equal(t, 1, tr.connectCalls, "second connect must not dial")
	assert.Equal(t, StatusConnected, ctrl.Status())
}

func TestControllerConnectFailureAllowsRetry(t *testing.T) {
	ctrl, tr := testController(testSession())
	tr.connectErr = errors.New("provider down")

	err := ctrl.Connect(context.Background(), nil)
	require.ErrorIs(t, err, ErrConnectionSetup)
	assert.Equal(t, StatusDisconnected, ctrl.Status())

	// Failure returns to disconnected; retrying is legal.
	tr.connectErr = nil
	require.NoError(t, ctrl.Connect(context.Background(), nil))
	assert.Equal(t, StatusConnected, ctrl.Status())
	assert.Equal(t, 2, tr.connectCalls)
}

func TestControllerDisconnectNeverConnected(t *testing.T) {
	ctrl, tr := testController(testSession())

	var ended []Event
	ctrl.On(EventSessionEnded, func(e Event) { ended = append(ended, e) })

	require.NoError(t, ctrl.Disconnect(context.Background()))
	assert.Len(t, ended, 1, "disconnect always emits session.ended")
	assert.Zero(t, tr.disconnectCalls, "no transport teardown when never connected")
}

func TestControllerDisconnectTearsDown(t *testing.T) {
	ctrl, tr := testController(testSession())
	require.NoError(t, ctrl.Connect(context.Background(), nil))

	var ended []Event
	ctrl.On(EventSessionEnded, func(e Event) { ended = append(ended, e) })

	require.NoError(t, ctrl.Disconnect(context.Background()))
	assert.Equal(t, StatusDisconnected, ctrl.Status())
	assert.Equal(t, 1, tr.disconnectCalls)
	assert.Len(t, ended, 1)
	assert.Equal(t, "client disconnect", ended[0].Ended.Reason)
}

func TestControllerDisconnectPropagatesTransportError(t *testing.T) {
	ctrl, tr := testController(testSession())
	require.NoError(t, ctrl.Connect(context.Background(), nil))
	tr.disconnectErr = errors.New("teardown stuck")

	err := ctrl.Disconnect(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "teardown stuck")
}

func TestControllerSendMessage(t *testing.T) {
	ctrl, tr := testController(testSession())
	require.NoError(t, ctrl.Connect(context.Background(), nil))

	require.NoError(t, ctrl.SendMessage(context.Background(), "hello avatar"))
	require.Len(t, tr.published, 1)

	var env wireEnvelope
	require.NoError(t, json.Unmarshal(tr.published[0], &env))
	assert.Equal(t, wireChat, env.Type)
	assert.Equal(t, "hello avatar", env.Text)
}

func TestControllerSendMessageBeforeConnect(t *testing.T) {
	ctrl, tr := testController(testSession())

	err := ctrl.SendMessage(context.Background(), "too early")
	require.ErrorIs(t, err, ErrNotConnected)
	assert.Empty(t, tr.published, "nothing may reach the transport")
}

func TestControllerSendMessagePublishFailure(t *testing.T) {
	ctrl, tr := testController(testSession())
	require.NoError(t, ctrl.Connect(context.Background(), nil))
	tr.publishErr = errors.New("channel closed")

	err := ctrl.SendMessage(context.Background(), "hello")
	require.ErrorIs(t, err, ErrMessaging)
	assert.Equal(t, StatusConnected, ctrl.Status(), "failed send must not change connection state")
}

func TestControllerStatusMapping(t *testing.T) {
	ctrl, tr := testController(testSession())

	tr.setState(TransportDisconnected)
	assert.Equal(t, StatusDisconnected, ctrl.Status())
	tr.setState(TransportConnecting)
	assert.Equal(t, StatusConnecting, ctrl.Status())
	tr.setState(TransportConnected)
	assert.Equal(t, StatusConnected, ctrl.Status())
	tr.setState(TransportState("weird"))
	assert.Equal(t, StatusError, ctrl.Status(), "unknown transport states map to error")
}

func TestControllerRemoteDisconnect(t *testing.T) {
	ctrl, tr := testController(testSession())
	require.NoError(t, ctrl.Connect(context.Background(), nil))

	var ended []Event
	ctrl.On(EventSessionEnded, func(e Event) { ended = append(ended, e) })

	tr.dropRemote("server shutdown")

	assert.Equal(t, StatusDisconnected, ctrl.Status())
	require.Len(t, ended, 1, "remote disconnect emits exactly one session.ended")
	assert.Equal(t, "server shutdown", ended[0].Ended.Reason)
}

func TestControllerReconnectAfterRemoteDisconnect(t *testing.T) {
	ctrl, tr := testController(testSession())
	require.NoError(t, ctrl.Connect(context.Background(), nil))
	tr.dropRemote("server shutdown")

	require.NoError(t, ctrl.Connect(context.Background(), nil))
	assert.Equal(t, StatusConnected, ctrl.Status())
	assert.Equal(t, 2, tr.connectCalls)
}

func TestControllerSinksBoundOnConnect(t *testing.T) {
	ctrl, tr := testController(testSession())

	var bound []string
	sinks := &MediaSinks{
		Audio: TrackSinkFunc(func(track Track) error {
			bound = append(bound, track.ID())
			return nil
		}),
	}
	require.NoError(t, ctrl.Connect(context.Background(), sinks))

	tr.pushTrack(fakeTrack{id: "a1", kind: TrackKindAudio})
	assert.Equal(t, []string{"a1"}, bound)
}

func TestControllerExpiredSessionStillConnects(t *testing.T) {
	session := testSession()
	session.ExpiresAt = time.Now().Add(-time.Hour)
	ctrl, _ := testController(session)

	// Expiry is the backend's call; the SDK warns and proceeds.
	require.NoError(t, ctrl.Connect(context.Background(), nil))
	assert.Equal(t, StatusConnected, ctrl.Status())
}

func TestControllerEventFlowEndToEnd(t *testing.T) {
	ctrl, tr := testController(testSession())
	require.NoError(t, ctrl.Connect(context.Background(), nil))

	var responses []string
	ctrl.On(EventAvatarResponse, func(e Event) { responses = append(responses, e.Response.Text) })

	tr.pushData([]byte(`{"type":"response","text":"first"}`))
	tr.pushData([]byte(`{"type":"response","text":"second"}`))

	assert.Equal(t, []string{"first", "second"}, responses)
}
