//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package output

import (
	"fmt"
)

// PortAudio device (stub)
type PortAudio struct{}

// NewPortAudio creates a new PortAudio device
func NewPortAudio() Device {
	return &PortAudio{}
}

// Open always fails without the portaudio build tag
func (p *PortAudio) Open(cfg Config, fill FillFunc) (Stream, error) {
	return nil, fmt.Errorf("PortAudio support not enabled (build with -tags portaudio)")
}
