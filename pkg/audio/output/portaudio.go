//go:build portaudio

// ABOUTME: PortAudio output implementation
// ABOUTME: Cross-platform float32 callback output using PortAudio
package output

import (
	"fmt"
	"log"

	"github.com/gordonklaus/portaudio"
)

// PortAudio opens playback streams through PortAudio
type PortAudio struct{}

// NewPortAudio creates a new PortAudio device
func NewPortAudio() Device {
	return &PortAudio{}
}

type portAudioStream struct {
	stream *portaudio.Stream
	rate   int
}

// Open initializes PortAudio and starts a default output stream
func (p *PortAudio) Open(cfg Config, fill FillFunc) (Stream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	rate := float64(cfg.SampleRate)
	if rate == 0 {
		dev, err := portaudio.DefaultOutputDevice()
		if err != nil {
			portaudio.Terminate()
			return nil, fmt.Errorf("no default output device: %w", err)
		}
		rate = dev.DefaultSampleRate
	}

	// 0 frames per buffer lets the host pick
	stream, err := portaudio.OpenDefaultStream(0, 2, rate, cfg.BufferFrames, func(out []float32) {
		fill(out)
	})
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to start stream: %w", err)
	}

	log.Printf("Audio output opened: %.0fHz, 2 channels, f32 (portaudio)", rate)

	return &portAudioStream{stream: stream, rate: int(rate)}, nil
}

func (s *portAudioStream) SampleRate() int {
	return s.rate
}

// Close releases resources
func (s *portAudioStream) Close() error {
	if s.stream != nil {
		if err := s.stream.Stop(); err != nil {
			return err
		}
		if err := s.stream.Close(); err != nil {
			return err
		}
		s.stream = nil
	}
	return portaudio.Terminate()
}
