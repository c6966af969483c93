package avakit

import (
	"fmt"
	"time"
)

// MediaProvider describes which media kinds an avatar publishes.
type MediaProvider string

const (
	// ProviderVideoAudio avatars publish a video track and an audio track.
	ProviderVideoAudio MediaProvider = "video_audio"
	// ProviderAudioOnly avatars publish an audio track only.
	ProviderAudioOnly MediaProvider = "audio_only"
)

// Avatar is a selectable AI persona descriptor. Avatars are created and
// updated only by the backend; the SDK treats them as read-only.
type Avatar struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Category      string        `json:"category"`
	Provider      MediaProvider `json:"provider"`
	CostPerMinute float64       `json:"costPerMinute"`
	Active        bool          `json:"active"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// CreateAvatarRequest registers a new avatar with the backend.
type CreateAvatarRequest struct {
	Name          string        `json:"name"`
	Category      string        `json:"category"`
	Provider      MediaProvider `json:"provider"`
	CostPerMinute float64       `json:"costPerMinute"`
}

func (r CreateAvatarRequest) validate() error {
	if r.Name == "" {
		return fmt.Errorf("%w: avatar name is required", ErrValidation)
	}
	switch r.Provider {
	case ProviderVideoAudio, ProviderAudioOnly:
	default:
		return fmt.Errorf("%w: unknown media provider %q", ErrValidation, r.Provider)
	}
	return nil
}

// CreateSessionRequest provisions a new avatar session for a user.
type CreateSessionRequest struct {
	AvatarID string `json:"avatarId"`
	UserID   string `json:"userId"`
	Prompt   string `json:"prompt,omitempty"`
	Voice    string `json:"voice,omitempty"`
}

func (r CreateSessionRequest) validate() error {
	if r.AvatarID == "" {
		return fmt.Errorf("%w: avatarId is required", ErrValidation)
	}
	if r.UserID == "" {
		return fmt.Errorf("%w: userId is required", ErrValidation)
	}
	return nil
}

// Session is the backend-issued descriptor for one avatar conversation. It is
// immutable once obtained; it goes stale after ExpiresAt and the SDK never
// refreshes it.
type Session struct {
	ID           string    `json:"id"`
	RoomID       string    `json:"roomId"`
	LiveKitToken string    `json:"liveKitToken"`
	LiveKitURL   string    `json:"liveKitUrl"`
	Prompt       string    `json:"prompt,omitempty"`
	Voice        string    `json:"voice,omitempty"`
	Model        string    `json:"model,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Expired reports whether the session descriptor is past its expiry. Sessions
// without an expiry never report expired.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// SessionStatusInfo is the backend's view of a session's lifecycle state.
type SessionStatusInfo struct {
	SessionID string    `json:"sessionId"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HealthReport is the response of the unauthenticated health probe.
type HealthReport struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
