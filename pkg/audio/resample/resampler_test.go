// ABOUTME: Tests for the FFT resampler
// ABOUTME: Checks chunk sizing, fixed output size and frequency preservation
package resample

import (
	"math"
	"testing"
)

// sineSource yields an endless stereo sine
type sineSource struct {
	freq  float64
	rate  float64
	amp   float64
	index int
}

func (s *sineSource) Next() (float32, float32) {
	v := float32(s.amp * math.Sin(2*math.Pi*s.freq*float64(s.index)/s.rate))
	s.index++
	return v, v
}

// constSource yields a constant value on both channels
type constSource struct {
	value float32
	pulls int
}

func (s *constSource) Next() (float32, float32) {
	s.pulls++
	return s.value, s.value
}

// zeroCrossingFrequency estimates the frequency of a clean tone from the
// interpolated positions of its rising zero crossings.
func zeroCrossingFrequency(samples []float64, rate float64) float64 {
	first, last := -1.0, -1.0
	count := 0
	for i := 1; i < len(samples); i++ {
		a, b := samples[i-1], samples[i]
		if a < 0 && b >= 0 {
			pos := float64(i-1) + a/(a-b)
			if first < 0 {
				first = pos
			}
			last = pos
			count++
		}
	}
	if count < 2 {
		return 0
	}
	return float64(count-1) / ((last - first) / rate)
}

func TestChunkSizes(t *testing.T) {
	tests := []struct {
		in, out int
	}{
		{44100, 48000},
		{48000, 44100},
		{22050, 48000},
		{44100, 44100},
		{96000, 44100},
	}

	for _, tt := range tests {
		fftIn, fftOut := ChunkSizes(tt.in, tt.out)
		if fftIn%2 != 0 || fftOut%2 != 0 {
			t.Errorf("%d->%d: expected even sizes, got %d/%d", tt.in, tt.out, fftIn, fftOut)
		}
		if fftIn < minChunk || fftOut < minChunk {
			t.Errorf("%d->%d: chunk sizes %d/%d below minimum", tt.in, tt.out, fftIn, fftOut)
		}
		if fftIn*tt.out != fftOut*tt.in {
			t.Errorf("%d->%d: ratio %d/%d does not match rates", tt.in, tt.out, fftIn, fftOut)
		}
	}

	if fftIn, fftOut := ChunkSizes(44100, 48000); fftIn != 294 || fftOut != 320 {
		t.Errorf("expected 294/320 for 44100->48000, got %d/%d", fftIn, fftOut)
	}
}

func TestNewFFTErrors(t *testing.T) {
	if _, err := NewFFT(0, 48000, 512); err == nil {
		t.Error("expected error for zero input rate")
	}
	if _, err := NewFFT(44100, -1, 512); err == nil {
		t.Error("expected error for negative output rate")
	}
	if _, err := NewFFT(44100, 48000, 0); err == nil {
		t.Error("expected error for zero frames")
	}
}

func TestProcessFixedOutputSize(t *testing.T) {
	r, err := NewFFT(44100, 48000, 512)
	if err != nil {
		t.Fatalf("failed to create resampler: %v", err)
	}

	src := &constSource{}
	out := make([]float32, 512*2)
	for call := 0; call < 50; call++ {
		if n := r.Process(src, out); n != 512 {
			t.Fatalf("call %d: expected 512 frames, got %d", call, n)
		}
	}

	// 50 calls of 512 output frames need about 50*512*44100/48000 input frames
	want := 50 * 512 * 44100 / 48000
	if src.pulls < want || src.pulls > want+r.ChunkIn() {
		t.Errorf("expected about %d source frames pulled, got %d", want, src.pulls)
	}
}

func TestProcessClampsToFrames(t *testing.T) {
	r, err := NewFFT(48000, 44100, 256)
	if err != nil {
		t.Fatalf("failed to create resampler: %v", err)
	}

	out := make([]float32, 1024*2)
	if n := r.Process(&constSource{}, out); n != 256 {
		t.Errorf("expected 256 frames, got %d", n)
	}
}

func TestProcessPreservesDC(t *testing.T) {
	r, err := NewFFT(44100, 48000, 512)
	if err != nil {
		t.Fatalf("failed to create resampler: %v", err)
	}

	src := &constSource{value: 0.5}
	out := make([]float32, 512*2)
	for call := 0; call < 10; call++ {
		r.Process(src, out)
	}

	for i, v := range out {
		if math.Abs(float64(v)-0.5) > 1e-3 {
			t.Fatalf("sample %d: expected 0.5, got %f", i, v)
		}
	}
}

func TestProcessPreservesFrequency(t *testing.T) {
	tests := []struct {
		name    string
		in, out int
		frames  int
	}{
		{"upsample 44100 to 48000", 44100, 48000, 512},
		{"downsample 48000 to 44100", 48000, 44100, 441},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewFFT(tt.in, tt.out, tt.frames)
			if err != nil {
				t.Fatalf("failed to create resampler: %v", err)
			}

			src := &sineSource{freq: 1000, rate: float64(tt.in), amp: 0.5}
			out := make([]float32, tt.frames*2)
			var left []float64

			for call := 0; call < 40; call++ {
				if n := r.Process(src, out); n != tt.frames {
					t.Fatalf("call %d: expected %d frames, got %d", call, tt.frames, n)
				}
				// Skip the filter warm-up
				if call < 2 {
					continue
				}
				for i := 0; i < tt.frames; i++ {
					left = append(left, float64(out[i*2]))
				}
			}

			freq := zeroCrossingFrequency(left, float64(tt.out))
			if math.Abs(freq-1000)/1000 > 0.01 {
				t.Errorf("expected ~1000 Hz, got %.2f Hz", freq)
			}

			var peak float64
			for _, v := range left {
				peak = math.Max(peak, math.Abs(v))
			}
			if math.Abs(peak-0.5) > 0.05 {
				t.Errorf("expected amplitude ~0.5, got %f", peak)
			}
		})
	}
}

func TestRealPlanMatchesDirectDFT(t *testing.T) {
	for _, n := range []int{128, 588, 768, 882, 960} {
		if _, err := newRealPlan(n); err != nil {
			t.Errorf("size %d: unexpected error: %v", n, err)
		}
	}
}

func TestRealPlanVerifyRejectsWrongTransform(t *testing.T) {
	good, err := newRealPlan(64)
	if err != nil {
		t.Fatalf("failed to create plan: %v", err)
	}

	// Correct DC bin, garbage elsewhere: passes calibration, fails verification
	bad := &realPlan{
		n: 64,
		forward: func(dst []complex128, src []float64) error {
			if err := good.forward(dst, src); err != nil {
				return err
			}
			for k := 1; k < len(dst); k++ {
				dst[k] *= 0.5
			}
			return nil
		},
		inverse: good.inverse,
	}
	if err := bad.calibrate(); err != nil {
		t.Fatalf("unexpected calibration error: %v", err)
	}
	if err := bad.verify(); err == nil {
		t.Error("expected verification to reject a wrong transform")
	}

	if err := good.verify(); err != nil {
		t.Errorf("expected working plan to verify, got %v", err)
	}
}

func TestNewFFTUsesVerifiedSizes(t *testing.T) {
	for _, rates := range [][2]int{{44100, 48000}, {48000, 44100}, {22050, 48000}} {
		r, err := NewFFT(rates[0], rates[1], 512)
		if err != nil {
			t.Fatalf("%d->%d: unexpected error: %v", rates[0], rates[1], err)
		}

		if r.ChunkIn()*rates[1] != r.ChunkOut()*rates[0] {
			t.Errorf("%d->%d: chunk ratio %d/%d does not match rates",
				rates[0], rates[1], r.ChunkIn(), r.ChunkOut())
		}
		if baseIn, _ := ChunkSizes(rates[0], rates[1]); r.ChunkIn() < baseIn {
			t.Errorf("%d->%d: chunk %d below minimum %d", rates[0], rates[1], r.ChunkIn(), baseIn)
		}
		for _, p := range []*realPlan{r.planIn, r.planOut} {
			if err := p.verify(); err != nil {
				t.Errorf("%d->%d: plan of size %d does not verify: %v", rates[0], rates[1], p.n, err)
			}
		}
	}
}
