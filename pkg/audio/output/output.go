// ABOUTME: Audio output device abstraction
// ABOUTME: Callback-driven stereo float streams and backend selection
package output

import (
	"fmt"
	"strings"
)

// FillFunc fills out with interleaved stereo float frames (len(out)/2 frames).
// It runs on the audio thread and must not block or allocate.
type FillFunc func(out []float32)

// Config describes a stream request. Zero values ask for the device's native
// sample rate and the driver's default buffer size.
type Config struct {
	SampleRate   int
	BufferFrames int
}

// Stream is a running output stream
type Stream interface {
	// SampleRate returns the rate the device actually runs at
	SampleRate() int

	// Close stops the stream and releases the device
	Close() error
}

// Device opens callback-driven stereo output streams
type Device interface {
	// Open starts a stream that pulls audio from fill
	Open(cfg Config, fill FillFunc) (Stream, error)
}

// Backends lists the names accepted by NewDevice
var Backends = []string{"malgo", "oto", "portaudio"}

// NewDevice returns the output backend with the given name. An empty name
// selects malgo.
func NewDevice(name string) (Device, error) {
	switch strings.ToLower(name) {
	case "", "malgo":
		return NewMalgo(), nil
	case "oto":
		return NewOto(), nil
	case "portaudio":
		return NewPortAudio(), nil
	default:
		return nil, fmt.Errorf("unknown audio backend: %s (supported: %s)", name, strings.Join(Backends, ", "))
	}
}
