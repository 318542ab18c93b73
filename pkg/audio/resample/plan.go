// ABOUTME: Verified real FFT plans for the resampler
// ABOUTME: Calibrates plan scaling and checks each size against a direct DFT
package resample

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

// planTolerance scaled by the transform size is the largest error accepted
// per spectrum bin and per round-trip sample
const planTolerance = 1e-9

// realPlan is a real-input FFT of size n with measured scaling. After
// scaling, forward is an unnormalized DFT and inverse a 1/n inverse DFT.
type realPlan struct {
	n        int
	forward  func(dst []complex128, src []float64) error
	inverse  func(dst []float64, src []complex128) error
	fwdScale float64
	invScale float64
}

// newRealPlan creates, calibrates and verifies a plan of size n
func newRealPlan(n int) (*realPlan, error) {
	plan, err := algofft.NewPlanReal64(n)
	if err != nil {
		return nil, fmt.Errorf("failed to create fft plan of size %d: %w", n, err)
	}

	p := &realPlan{
		n: n,
		forward: func(dst []complex128, src []float64) error {
			return plan.Forward(dst, src)
		},
		inverse: func(dst []float64, src []complex128) error {
			return plan.Inverse(dst, src)
		},
	}
	if err := p.calibrate(); err != nil {
		return nil, err
	}
	if err := p.verify(); err != nil {
		return nil, err
	}
	return p, nil
}

// calibrate measures the plan's scaling with an impulse and a DC spectrum
func (p *realPlan) calibrate() error {
	timeBuf := make([]float64, p.n)
	spec := make([]complex128, p.n/2+1)

	p.fwdScale = 1
	timeBuf[0] = 1
	if err := p.forward(spec, timeBuf); err != nil {
		return fmt.Errorf("fft size %d: forward transform failed: %w", p.n, err)
	}
	if dc := cmplx.Abs(spec[0]); dc > 0 && !math.IsNaN(dc) {
		p.fwdScale = 1 / dc
	}

	p.invScale = 1 / float64(p.n)
	clear(spec)
	spec[0] = 1
	if err := p.inverse(timeBuf, spec); err != nil {
		return fmt.Errorf("fft size %d: inverse transform failed: %w", p.n, err)
	}
	if y := timeBuf[0]; y != 0 && !math.IsNaN(y) {
		p.invScale = 1 / (float64(p.n) * y)
	}
	return nil
}

// verify transforms a fixed test signal and compares the forward result with
// a direct DFT and the inverse result with the signal itself
func (p *realPlan) verify() error {
	n := p.n
	x := make([]float64, n)
	for i := range x {
		fi := float64(i)
		x[i] = math.Sin(0.37*fi) + 0.5*math.Cos(1.91*fi) + float64(i%7)/7 - 0.4
	}

	spec := make([]complex128, n/2+1)
	if err := p.forward(spec, x); err != nil {
		return fmt.Errorf("fft size %d: forward transform failed: %w", n, err)
	}

	tol := planTolerance * float64(n)
	for k := range spec {
		var want complex128
		for i, v := range x {
			s, c := math.Sincos(-2 * math.Pi * float64(k*i%n) / float64(n))
			want += complex(v*c, v*s)
		}
		got := spec[k] * complex(p.fwdScale, 0)
		if d := cmplx.Abs(got - want); d > tol || math.IsNaN(d) {
			return fmt.Errorf("fft size %d: bin %d off by %g", n, k, d)
		}
	}

	for k := range spec {
		spec[k] *= complex(p.fwdScale, 0)
	}
	y := make([]float64, n)
	if err := p.inverse(y, spec); err != nil {
		return fmt.Errorf("fft size %d: inverse transform failed: %w", n, err)
	}
	for i := range y {
		if d := math.Abs(y[i]*p.invScale - x[i]); d > tol || math.IsNaN(d) {
			return fmt.Errorf("fft size %d: round trip sample %d off by %g", n, i, d)
		}
	}
	return nil
}
