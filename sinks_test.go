package avakit

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestWAVFromPCM16Mono(t *testing.T) {
	pcm := make([]byte, 960) // 10ms at 48kHz
	wav := WAVFromPCM16Mono(pcm, DefaultSampleRate)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("wav length = %d, want %d", len(wav), 44+len(pcm))
	}
	if !bytes.Equal(wav[0:4], []byte("RIFF")) || !bytes.Equal(wav[8:12], []byte("WAVE")) {
		t.Error("missing RIFF/WAVE markers")
	}
	if got := binary.LittleEndian.Uint32(wav[24:28]); got != DefaultSampleRate {
		t.Errorf("sample rate = %d", got)
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != uint32(len(pcm)) {
		t.Errorf("data length = %d, want %d", got, len(pcm))
	}
	if got := binary.LittleEndian.Uint16(wav[22:24]); got != 1 {
		t.Errorf("channels = %d, want mono", got)
	}
}

func TestWAVFromPCM16MonoEmpty(t *testing.T) {
	wav := WAVFromPCM16Mono(nil, 16000)
	if len(wav) != 44 {
		t.Fatalf("empty wav length = %d, want header only", len(wav))
	}
	if got := binary.LittleEndian.Uint32(wav[40:44]); got != 0 {
		t.Errorf("data length = %d, want 0", got)
	}
}
