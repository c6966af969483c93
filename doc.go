// Package avakit is a Go client SDK for real-time AI-avatar conversation
// sessions.
//
// The SDK talks to two systems: an avatar backend (avatar catalog, session
// provisioning, session teardown) over HTTP, and a real-time transport
// provider (media tracks plus a reliable ordered data channel) through the
// Transport port. It turns raw transport notifications into a small, closed
// set of typed domain events and keeps a registry of every live session
// behind a single Client facade.
//
// Key pieces:
//   - Client: the entry point; creates, looks up, ends, and bulk-cleans
//     sessions, and proxies the avatar catalog operations.
//   - SessionController: one per session; owns the lifecycle state machine
//     (disconnected -> connecting -> connected -> ended/error), the transport
//     connection, and the event handler registry.
//   - Transport: the provider port. transport/livekit is the production
//     adapter; transport/wsbridge speaks to a WebSocket bridge for data-only
//     deployments and tests.
//   - Event: a tagged union delivered synchronously to registered handlers,
//     in registration order, with panics isolated per handler.
//
// Basic usage:
//
//	client, err := avakit.New(avakit.Config{
//		BaseURL:    "https://api.example.com",
//		Credential: avakit.APIKey(os.Getenv("AVATAR_API_KEY")),
//		Transport:  livekit.Factory(),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	ctrl, err := client.CreateSession(ctx, avakit.CreateSessionRequest{
//		AvatarID: "a1", UserID: "u1",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	ctrl.On(avakit.EventAvatarResponse, func(e avakit.Event) {
//		fmt.Println(e.Response.Text)
//	})
//	if err := ctrl.Connect(ctx, nil); err != nil {
//		log.Fatal(err)
//	}
//	defer client.Cleanup(context.Background())
//
// Every public operation either returns a typed result or an error matching
// one of the exported kind sentinels (ErrAuthentication, ErrRateLimited,
// ErrNotConnected, ...) via errors.Is.
package avakit
