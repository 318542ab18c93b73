// ABOUTME: Spectral loudness analysis for the demo envelope
// ABOUTME: Windowed FFT per block, reduced to one rms value per timestamp
package analyze

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/ms7-demo/demo-go/pkg/audio"
	"github.com/ms7-demo/demo-go/pkg/timeline"
)

// DefaultWindowSize is the analysis block length in frames
const DefaultWindowSize = 1024

// Analyzer computes spectral rms for fixed-size blocks of mono samples.
// It owns its buffers and is not safe for concurrent use.
type Analyzer struct {
	size      int
	forward   func(dst []complex128, src []float64) error
	window    []float64
	windowSum float64
	scale     float64 // brings the forward transform to unnormalized DFT scale

	frame []float64
	spec  []complex128
}

// New creates an analyzer for blocks of windowSize frames
func New(windowSize int) (*Analyzer, error) {
	if windowSize < 2 || windowSize&(windowSize-1) != 0 {
		return nil, fmt.Errorf("window size must be a power of two, got %d", windowSize)
	}

	fftSize := windowSize * 2
	plan, err := algofft.NewPlanReal64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create fft plan: %w", err)
	}

	a := &Analyzer{
		size: windowSize,
		forward: func(dst []complex128, src []float64) error {
			return plan.Forward(dst, src)
		},
		window: make([]float64, windowSize),
		frame:  make([]float64, fftSize),
		spec:   make([]complex128, fftSize/2+1),
	}

	for i := range a.window {
		a.window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(windowSize-1))
		a.windowSum += a.window[i]
	}

	// Unit impulse: every bin of an unnormalized DFT has magnitude 1
	a.frame[0] = 1
	if err := a.forward(a.spec, a.frame); err != nil {
		return nil, fmt.Errorf("failed to calibrate fft: %w", err)
	}
	a.frame[0] = 0
	a.scale = 1
	if dc := cmplx.Abs(a.spec[0]); dc > 0 && !math.IsNaN(dc) {
		a.scale = 1 / dc
	}

	return a, nil
}

// WindowSize returns the block length in frames
func (a *Analyzer) WindowSize() int {
	return a.size
}

// RMS returns the spectral rms of one block. Blocks shorter than the window
// are zero-padded.
func (a *Analyzer) RMS(block []float32) float32 {
	n := min(len(block), a.size)
	for i := 0; i < n; i++ {
		a.frame[i] = float64(block[i]) * a.window[i]
	}
	for i := n; i < len(a.frame); i++ {
		a.frame[i] = 0
	}

	if err := a.forward(a.spec, a.frame); err != nil {
		return 0
	}

	if a.windowSum <= 0 || math.IsNaN(a.windowSum) {
		return 0
	}

	var sum float64
	for k := 0; k < a.size; k++ {
		mag := cmplx.Abs(a.spec[k]) * a.scale / a.windowSum
		sum += mag * mag
	}
	rms := math.Sqrt(sum / float64(a.size))
	if math.IsNaN(rms) || math.IsInf(rms, 0) {
		return 0
	}
	return float32(rms)
}

// Envelope averages buf to mono and returns one rms entry per window,
// including a trailing partial window, plus the maximum rms seen.
func Envelope(buf audio.Stereo, sampleRate, windowSize int) (timeline.Sequence[float32], float32, error) {
	if sampleRate <= 0 {
		return nil, 0, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	if err := buf.Validate(); err != nil {
		return nil, 0, err
	}

	a, err := New(windowSize)
	if err != nil {
		return nil, 0, err
	}

	mono := buf.Mono()
	windows := (len(mono) + windowSize - 1) / windowSize
	env := make(timeline.Sequence[float32], 0, windows)

	var peak float32
	for i := 0; i < windows; i++ {
		start := i * windowSize
		end := min(start+windowSize, len(mono))

		rms := a.RMS(mono[start:end])
		if rms > peak {
			peak = rms
		}

		t := float32(float64(start) / float64(sampleRate))
		env = append(env, timeline.Entry[float32]{Time: t, Value: rms})
	}

	return env, peak, nil
}
