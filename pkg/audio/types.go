// ABOUTME: Audio type definitions
// ABOUTME: Defines the planar stereo buffer and sample conversions
package audio

import (
	"errors"
	"fmt"
	"math"
)

// Channels is the only channel layout the engine stores and plays
const Channels = 2

// ErrNotStereo is returned when a source does not have exactly two channels
var ErrNotStereo = errors.New("audio is not stereo")

// Stereo holds planar float PCM, one slice per channel
type Stereo struct {
	Left  []float32
	Right []float32
}

// NewStereo allocates a silent buffer of the given length
func NewStereo(frames int) Stereo {
	return Stereo{
		Left:  make([]float32, frames),
		Right: make([]float32, frames),
	}
}

// Frames returns the number of sample frames (samples per channel)
func (s Stereo) Frames() int {
	return len(s.Left)
}

// Validate checks that both channels have the same length
func (s Stereo) Validate() error {
	if len(s.Left) != len(s.Right) {
		return fmt.Errorf("channel length mismatch: left=%d right=%d", len(s.Left), len(s.Right))
	}
	return nil
}

// Duration returns the buffer length in seconds at the given rate
func (s Stereo) Duration(sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return float64(s.Frames()) / float64(sampleRate)
}

// Mono averages both channels. Only used for analysis.
func (s Stereo) Mono() []float32 {
	n := min(len(s.Left), len(s.Right))
	mono := make([]float32, n)
	for i := 0; i < n; i++ {
		mono[i] = (s.Left[i] + s.Right[i]) / 2
	}
	return mono
}

// Deinterleave splits L/R interleaved samples into a planar buffer.
// A trailing odd sample is dropped.
func Deinterleave(interleaved []float32) Stereo {
	frames := len(interleaved) / Channels
	s := NewStereo(frames)
	for i := 0; i < frames; i++ {
		s.Left[i] = interleaved[i*2]
		s.Right[i] = interleaved[i*2+1]
	}
	return s
}

// SampleFromInt16 converts a 16-bit sample to float in [-1, 1)
func SampleFromInt16(sample int16) float32 {
	return float32(sample) / 32768
}

// SampleFromInt converts a signed integer sample of the given bit depth to float in [-1, 1)
func SampleFromInt(sample int32, bitDepth int) float32 {
	if bitDepth <= 0 || bitDepth > 32 {
		return 0
	}
	scale := float64(int64(1) << (bitDepth - 1))
	return float32(float64(sample) / scale)
}

// SampleToInt converts a float sample to a signed integer of the given bit
// depth, clipping to the representable range
func SampleToInt(sample float32, bitDepth int) int32 {
	if bitDepth <= 0 || bitDepth > 32 {
		return 0
	}
	scale := float64(int64(1) << (bitDepth - 1))
	v := math.Round(float64(sample) * scale)
	if v > scale-1 {
		v = scale - 1
	}
	if v < -scale {
		v = -scale
	}
	return int32(v)
}
