// ABOUTME: Malgo-based audio output implementation
// ABOUTME: Uses miniaudio via malgo for float32 stereo callback playback
package output

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"

	"github.com/gen2brain/malgo"
)

// initialScratchFrames covers common period sizes without growing in the callback
const initialScratchFrames = 8192

// Malgo opens playback streams through miniaudio
type Malgo struct{}

// NewMalgo creates a new Malgo device
func NewMalgo() Device {
	return &Malgo{}
}

type malgoStream struct {
	malgoCtx *malgo.AllocatedContext
	device   *malgo.Device
	fill     FillFunc
	scratch  []float32
}

// Open initializes a float32 stereo playback device and starts it
func (m *Malgo) Open(cfg Config, fill FillFunc) (Stream, error) {
	malgoCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		log.Printf("malgo: %s", message)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}

	s := &malgoStream{
		malgoCtx: malgoCtx,
		fill:     fill,
		scratch:  make([]float32, initialScratchFrames*2),
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = 2
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(cfg.BufferFrames)
	deviceConfig.Alsa.NoMMap = 1

	deviceCallbacks := malgo.DeviceCallbacks{
		Data: s.dataCallback,
		Stop: func() {
			log.Printf("malgo: device stopped")
		},
	}

	device, err := malgo.InitDevice(malgoCtx.Context, deviceConfig, deviceCallbacks)
	if err != nil {
		s.freeContext()
		return nil, fmt.Errorf("failed to initialize playback device: %w", err)
	}

	if err := device.Start(); err != nil {
		device.Uninit()
		s.freeContext()
		return nil, fmt.Errorf("failed to start device: %w", err)
	}
	s.device = device

	log.Printf("Audio output opened: %dHz, 2 channels, f32 (malgo)", device.SampleRate())

	return s, nil
}

// dataCallback is called by malgo to fill the audio output buffer
func (s *malgoStream) dataCallback(pOutput, pInput []byte, frameCount uint32) {
	n := int(frameCount) * 2
	if n > len(s.scratch) {
		// Only reached if the driver exceeds the initial period estimate
		s.scratch = make([]float32, n)
	}
	samples := s.scratch[:n]

	s.fill(samples)

	for i, v := range samples {
		if (i+1)*4 > len(pOutput) {
			break
		}
		binary.LittleEndian.PutUint32(pOutput[i*4:], math.Float32bits(v))
	}
}

func (s *malgoStream) SampleRate() int {
	if s.device == nil {
		return 0
	}
	return int(s.device.SampleRate())
}

// Close stops and uninitializes the device and its context
func (s *malgoStream) Close() error {
	if s.device != nil {
		if err := s.device.Stop(); err != nil {
			log.Printf("Warning: device stop error: %v", err)
		}
		s.device.Uninit()
		s.device = nil
	}
	s.freeContext()
	return nil
}

func (s *malgoStream) freeContext() {
	if s.malgoCtx == nil {
		return
	}
	if err := s.malgoCtx.Uninit(); err != nil {
		log.Printf("Warning: malgo context uninit error: %v", err)
	}
	s.malgoCtx.Free()
	s.malgoCtx = nil
}
