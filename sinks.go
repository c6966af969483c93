package avakit

import "encoding/binary"

// TrackSink receives a remote media track when the avatar publishes it.
// Binding happens once per track, on the transport notification goroutine;
// sinks that consume media should hand the track off to their own goroutine.
type TrackSink interface {
	BindTrack(t Track) error
}

// TrackSinkFunc adapts a function to the TrackSink interface.
type TrackSinkFunc func(Track) error

func (f TrackSinkFunc) BindTrack(t Track) error { return f(t) }

// MediaSinks are optional rendering targets bound to subscribed tracks as
// they arrive. A nil sink leaves that media kind unbound; events are emitted
// either way.
type MediaSinks struct {
	Video TrackSink
	Audio TrackSink
}

// DefaultSampleRate is the sample rate avatar audio tracks are decoded at.
const DefaultSampleRate = 48000

// WAVFromPCM16Mono wraps raw 16-bit little-endian mono PCM in a WAV
// container. Useful for audio sinks that persist avatar speech to disk.
func WAVFromPCM16Mono(pcm []byte, sampleRate int) []byte {
	blockAlign := uint16(2)
	byteRate := uint32(sampleRate) * uint32(blockAlign)
	dataLen := uint32(len(pcm))
	riffLen := 36 + dataLen
	out := make([]byte, 44+len(pcm))

	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], riffLen)
	copy(out[8:], []byte("WAVE"))

	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 1) // PCM
	binary.LittleEndian.PutUint16(out[22:], 1) // mono
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], byteRate)
	binary.LittleEndian.PutUint16(out[32:], blockAlign)
	binary.LittleEndian.PutUint16(out[34:], 16)

	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], dataLen)
	copy(out[44:], pcm)
	return out
}
