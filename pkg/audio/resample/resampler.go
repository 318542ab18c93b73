// ABOUTME: Fixed-output FFT resampler for converting audio sample rates
// ABOUTME: Overlap-add frequency-domain conversion with a windowed-sinc anti-alias filter
package resample

import (
	"fmt"
	"log"
	"math"
)

// Source yields stereo frames on demand. Past the end it returns silence.
type Source interface {
	Next() (left, right float32)
}

// minChunk is the smallest input sub-chunk (and filter length) in frames
const minChunk = 64

// cutoffMargin keeps the filter's transition band below the output Nyquist
const cutoffMargin = 0.95

// maxCandidates bounds the chunk sizes tried when a plan fails verification
const maxCandidates = 16

// FFT converts a stereo source between two fixed sample rates and always
// produces exactly Frames() output frames per Process call.
//
// Input is consumed in sub-chunks of ChunkIn() frames. Each sub-chunk is
// filtered and transformed at twice its size, the spectrum is copied into a
// transform of twice ChunkOut() frames and brought back to the time domain.
// Successive results are overlap-added. All buffers are allocated up front so
// Process is safe to call from an audio callback.
type FFT struct {
	inRate  int
	outRate int
	frames  int
	fftIn   int
	fftOut  int

	planIn  *realPlan
	planOut *realPlan
	gain    float64

	filter  []complex128
	timeIn  []float64
	specIn  []complex128
	specOut []complex128
	timeOut []float64

	staged [2][]float64
	tail   [2][]float64
	fifo   [2][]float32
	fill   int
}

// NewFFT creates a resampler from inRate to outRate that yields frames output
// frames per call. Chunk sizes start at ChunkSizes and step through the
// multiples of the reduced rate ratio until both transform sizes pass
// verification.
func NewFFT(inRate, outRate, frames int) (*FFT, error) {
	if inRate <= 0 || outRate <= 0 {
		return nil, fmt.Errorf("invalid sample rates: %d -> %d", inRate, outRate)
	}
	if frames <= 0 {
		return nil, fmt.Errorf("invalid output frame count: %d", frames)
	}

	baseIn, _ := ChunkSizes(inRate, outRate)
	g := gcd(inRate, outRate)
	a, b := inRate/g, outRate/g

	var lastErr error
	for k := baseIn / a; k < baseIn/a+maxCandidates; k++ {
		fftIn, fftOut := a*k, b*k

		planIn, err := newRealPlan(2 * fftIn)
		if err != nil {
			lastErr = err
			log.Printf("Resampler: rejecting %d/%d frame chunks: %v", fftIn, fftOut, err)
			continue
		}
		planOut, err := newRealPlan(2 * fftOut)
		if err != nil {
			lastErr = err
			log.Printf("Resampler: rejecting %d/%d frame chunks: %v", fftIn, fftOut, err)
			continue
		}

		return newFFT(inRate, outRate, frames, planIn, planOut)
	}

	return nil, fmt.Errorf("failed to find working fft sizes for %d -> %d: %w", inRate, outRate, lastErr)
}

func newFFT(inRate, outRate, frames int, planIn, planOut *realPlan) (*FFT, error) {
	fftIn, fftOut := planIn.n/2, planOut.n/2

	r := &FFT{
		inRate:  inRate,
		outRate: outRate,
		frames:  frames,
		fftIn:   fftIn,
		fftOut:  fftOut,
		planIn:  planIn,
		planOut: planOut,
		gain:    planIn.fwdScale * planOut.invScale * float64(fftOut) / float64(fftIn),
		filter:  make([]complex128, fftIn+1),
		timeIn:  make([]float64, 2*fftIn),
		specIn:  make([]complex128, fftIn+1),
		specOut: make([]complex128, fftOut+1),
		timeOut: make([]float64, 2*fftOut),
	}
	for ch := 0; ch < 2; ch++ {
		r.staged[ch] = make([]float64, fftIn)
		r.tail[ch] = make([]float64, fftOut)
		r.fifo[ch] = make([]float32, frames+fftOut)
	}

	if err := r.designFilter(); err != nil {
		return nil, err
	}
	return r, nil
}

// ChunkSizes returns the smallest input and output sub-chunk lengths for a
// rate pair. Their ratio equals outRate/inRate exactly and both are even.
func ChunkSizes(inRate, outRate int) (int, int) {
	g := gcd(inRate, outRate)
	a, b := inRate/g, outRate/g

	m := 1
	for (a*m)%2 != 0 || (b*m)%2 != 0 || a*m < minChunk || b*m < minChunk {
		m++
	}
	return a * m, b * m
}

// Frames returns the number of output frames produced per call
func (r *FFT) Frames() int {
	return r.frames
}

// ChunkIn returns the number of source frames consumed per sub-chunk
func (r *FFT) ChunkIn() int {
	return r.fftIn
}

// ChunkOut returns the number of output frames produced per sub-chunk
func (r *FFT) ChunkOut() int {
	return r.fftOut
}

// Latency returns the filter delay in output frames
func (r *FFT) Latency() int {
	return int(math.Round(float64(r.fftIn-1) / 2 * float64(r.fftOut) / float64(r.fftIn)))
}

// Process fills out with interleaved stereo frames, pulling as many source
// frames as needed. It writes min(len(out)/2, Frames()) frames and returns
// that count.
func (r *FFT) Process(src Source, out []float32) int {
	n := min(len(out)/2, r.frames)

	for r.fill < n {
		r.chunk(src)
	}

	for i := 0; i < n; i++ {
		out[i*2] = r.fifo[0][i]
		out[i*2+1] = r.fifo[1][i]
	}

	for ch := range r.fifo {
		copy(r.fifo[ch], r.fifo[ch][n:r.fill])
	}
	r.fill -= n

	return n
}

// chunk pulls one input sub-chunk and appends fftOut frames to the fifo
func (r *FFT) chunk(src Source) {
	for i := 0; i < r.fftIn; i++ {
		l, rr := src.Next()
		r.staged[0][i] = float64(l)
		r.staged[1][i] = float64(rr)
	}

	for ch := 0; ch < 2; ch++ {
		r.convert(ch, r.fifo[ch][r.fill:r.fill+r.fftOut])
	}
	r.fill += r.fftOut
}

// convert resamples the staged sub-chunk of one channel into dst
func (r *FFT) convert(ch int, dst []float32) {
	copy(r.timeIn, r.staged[ch])
	clear(r.timeIn[r.fftIn:])

	if err := r.planIn.forward(r.specIn, r.timeIn); err != nil {
		r.silence(ch, dst)
		return
	}

	bins := min(r.fftIn, r.fftOut)
	for k := 0; k < bins; k++ {
		r.specOut[k] = r.specIn[k] * r.filter[k]
	}
	clear(r.specOut[bins:])

	if err := r.planOut.inverse(r.timeOut, r.specOut); err != nil {
		r.silence(ch, dst)
		return
	}

	tail := r.tail[ch]
	for i := 0; i < r.fftOut; i++ {
		dst[i] = float32(r.timeOut[i]*r.gain + tail[i])
	}
	for i := 0; i < r.fftOut; i++ {
		tail[i] = r.timeOut[r.fftOut+i] * r.gain
	}
}

// silence drops one channel's chunk after a transform error
func (r *FFT) silence(ch int, dst []float32) {
	clear(dst)
	clear(r.tail[ch])
}

// designFilter builds a Blackman-windowed sinc low-pass with unity DC gain
// and stores its spectrum, already scaled to an unnormalized DFT.
func (r *FFT) designFilter() error {
	n := r.fftIn
	ratio := math.Min(1, float64(r.outRate)/float64(r.inRate))
	cutoff := 0.5 * ratio * cutoffMargin // cycles per input sample

	center := float64(n-1) / 2
	var sum float64
	for i := 0; i < n; i++ {
		x := float64(i) - center
		v := 2 * cutoff
		if x != 0 {
			v = math.Sin(2*math.Pi*cutoff*x) / (math.Pi * x)
		}
		w := 0.42 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1)) +
			0.08*math.Cos(4*math.Pi*float64(i)/float64(n-1))
		r.timeIn[i] = v * w
		sum += r.timeIn[i]
	}
	if sum != 0 {
		for i := 0; i < n; i++ {
			r.timeIn[i] /= sum
		}
	}
	clear(r.timeIn[n:])

	if err := r.planIn.forward(r.filter, r.timeIn); err != nil {
		return fmt.Errorf("failed to transform filter: %w", err)
	}
	for k := range r.filter {
		r.filter[k] *= complex(r.planIn.fwdScale, 0)
	}
	clear(r.timeIn)
	return nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
