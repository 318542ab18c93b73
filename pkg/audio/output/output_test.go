// ABOUTME: Audio output tests
// ABOUTME: Exercises preflight and the engine against an in-memory device
package output

import (
	"errors"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ms7-demo/demo-go/pkg/audio"
)

// mockDevice pumps callbacks for the first stream it opens (the preflight
// stream) from its own goroutine. Later streams are driven by the test.
type mockDevice struct {
	rate     int
	sizes    []int // frames per pumped callback, last value repeats
	maxCalls int   // 0 pumps until closed
	openErr  error

	mu      sync.Mutex
	opens   []Config
	streams []*mockStream
	pumped  atomic.Int32
}

type mockStream struct {
	fill   FillFunc
	rate   int
	stop   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
	closed atomic.Bool
}

func (d *mockDevice) Open(cfg Config, fill FillFunc) (Stream, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	s := &mockStream{fill: fill, rate: d.rate, stop: make(chan struct{})}
	d.opens = append(d.opens, cfg)
	d.streams = append(d.streams, s)

	if len(d.streams) == 1 {
		s.wg.Add(1)
		go d.pump(s)
	}
	return s, nil
}

func (d *mockDevice) pump(s *mockStream) {
	defer s.wg.Done()
	for i := 0; d.maxCalls == 0 || i < d.maxCalls; i++ {
		select {
		case <-s.stop:
			return
		default:
		}
		size := d.sizes[min(i, len(d.sizes)-1)]
		s.fill(make([]float32, size*2))
		d.pumped.Add(1)
		runtime.Gosched()
	}
}

func (d *mockDevice) last() *mockStream {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.streams[len(d.streams)-1]
}

// call runs one callback of the given size synchronously
func (s *mockStream) call(frames int) []float32 {
	out := make([]float32, frames*2)
	for i := range out {
		out[i] = 99 // must be overwritten
	}
	s.fill(out)
	return out
}

func (s *mockStream) SampleRate() int { return s.rate }

func (s *mockStream) Close() error {
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
	s.closed.Store(true)
	return nil
}

func ramp(frames int) audio.Stereo {
	buf := audio.NewStereo(frames)
	for i := 0; i < frames; i++ {
		buf.Left[i] = float32(i) / float32(frames)
		buf.Right[i] = -float32(i) / float32(frames)
	}
	return buf
}

func preflightWithTimeout(t *testing.T, dev Device, cfg Config) Config {
	t.Helper()

	type result struct {
		cfg Config
		err error
	}
	done := make(chan result, 1)
	go func() {
		got, err := Preflight(dev, cfg)
		done <- result{got, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			t.Fatalf("preflight failed: %v", r.err)
		}
		return r.cfg
	case <-time.After(5 * time.Second):
		t.Fatal("preflight did not return")
	}
	return Config{}
}

func TestPreflightReportsBufferSize(t *testing.T) {
	dev := &mockDevice{rate: 48000, sizes: []int{512}, maxCalls: 4}

	got := preflightWithTimeout(t, dev, Config{})

	if got.BufferFrames != 512 {
		t.Errorf("expected 512 frames, got %d", got.BufferFrames)
	}
	if got.SampleRate != 48000 {
		t.Errorf("expected 48000 Hz, got %d", got.SampleRate)
	}
	if n := dev.pumped.Load(); n > 4 {
		t.Errorf("expected at most 4 callbacks, got %d", n)
	}
	if !dev.last().closed.Load() {
		t.Error("expected preflight stream to be closed")
	}
}

func TestPreflightSkipsEarlyCallbacks(t *testing.T) {
	dev := &mockDevice{rate: 44100, sizes: []int{64, 128, 1024, 256}}

	got := preflightWithTimeout(t, dev, Config{SampleRate: 44100, BufferFrames: 256})

	if got.BufferFrames != 256 {
		t.Errorf("expected size of the fourth callback (256), got %d", got.BufferFrames)
	}
	if len(dev.opens) != 1 || dev.opens[0].BufferFrames != 256 {
		t.Errorf("expected requested config to be passed through, got %+v", dev.opens)
	}
}

func TestPreflightOpenError(t *testing.T) {
	dev := &mockDevice{openErr: errors.New("no device")}
	if _, err := Preflight(dev, Config{}); err == nil {
		t.Error("expected error when device cannot open")
	}
}

func TestEngineSilentUntilPlay(t *testing.T) {
	dev := &mockDevice{rate: 44100, sizes: []int{128}}
	e, err := New(dev, 44100, ramp(1000), 0)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	defer e.Close()

	out := dev.last().call(128)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("sample %d: expected silence before Play, got %f", i, v)
		}
	}
	if e.Playing() {
		t.Error("expected engine not to be playing")
	}
}

func TestEnginePassthrough(t *testing.T) {
	buf := ramp(1000)
	dev := &mockDevice{rate: 44100, sizes: []int{128}}
	e, err := New(dev, 44100, buf, 0)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	defer e.Close()

	if e.Resampling() {
		t.Error("expected passthrough at equal rates")
	}

	e.Play()
	stream := dev.last()

	first := stream.call(128)
	second := stream.call(100) // passthrough accepts any size
	for i := 0; i < 128; i++ {
		if first[i*2] != buf.Left[i] || first[i*2+1] != buf.Right[i] {
			t.Fatalf("frame %d: expected (%f, %f), got (%f, %f)",
				i, buf.Left[i], buf.Right[i], first[i*2], first[i*2+1])
		}
	}
	if second[0] != buf.Left[128] {
		t.Errorf("expected second callback to continue at frame 128, got %f", second[0])
	}
}

func TestEngineStartOffset(t *testing.T) {
	buf := ramp(1000)
	dev := &mockDevice{rate: 1000, sizes: []int{16}}
	e, err := New(dev, 1000, buf, 0.25)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	defer e.Close()

	e.Play()
	out := dev.last().call(16)
	if out[0] != buf.Left[250] {
		t.Errorf("expected playback to start at frame 250 (%f), got %f", buf.Left[250], out[0])
	}
}

func TestEngineSilencePastEnd(t *testing.T) {
	dev := &mockDevice{rate: 1000, sizes: []int{16}}
	e, err := New(dev, 1000, ramp(10), 5)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	defer e.Close()

	e.Play()
	for i, v := range dev.last().call(16) {
		if v != 0 {
			t.Fatalf("sample %d: expected silence past the end, got %f", i, v)
		}
	}
}

// toneFrequency estimates the frequency of a clean tone from its
// interpolated rising zero crossings
func toneFrequency(samples []float64, rate float64) float64 {
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

func TestEngineResamples(t *testing.T) {
	const frames = 512
	buf := audio.NewStereo(44100)
	for i := range buf.Left {
		v := float32(0.5 * math.Sin(2*math.Pi*1000*float64(i)/44100))
		buf.Left[i], buf.Right[i] = v, v
	}

	dev := &mockDevice{rate: 48000, sizes: []int{frames}}
	e, err := New(dev, 44100, buf, 0)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	defer e.Close()

	if !e.Resampling() {
		t.Fatal("expected resampling between 44100 and 48000")
	}
	if cfg := e.Config(); cfg.SampleRate != 48000 || cfg.BufferFrames != frames {
		t.Errorf("expected 48000 Hz / %d frames, got %+v", frames, cfg)
	}

	e.Play()
	stream := dev.last()

	var left []float64
	for call := 0; call < 40; call++ {
		out := stream.call(frames)
		for i, v := range out {
			if v == 99 {
				t.Fatal("resampler left samples unwritten")
			}
			// Skip the filter warm-up
			if call >= 4 && i%2 == 0 {
				left = append(left, float64(v))
			}
		}
	}

	if freq := toneFrequency(left, 48000); math.Abs(freq-1000)/1000 > 0.01 {
		t.Errorf("expected ~1000 Hz after resampling, got %.2f Hz", freq)
	}
	var peak float64
	for _, v := range left {
		peak = math.Max(peak, math.Abs(v))
	}
	if math.Abs(peak-0.5) > 0.05 {
		t.Errorf("expected amplitude ~0.5, got %f", peak)
	}

	// A size change means the device was reconfigured: emit silence
	for i, v := range stream.call(frames / 2) {
		if v != 0 {
			t.Fatalf("sample %d: expected silence on size mismatch, got %f", i, v)
		}
	}
}

func TestEngineOpenError(t *testing.T) {
	dev := &mockDevice{openErr: errors.New("no device")}
	if _, err := New(dev, 44100, ramp(10), 0); err == nil {
		t.Error("expected error when no device is available")
	}
}

func TestEngineRejectsBadInput(t *testing.T) {
	dev := &mockDevice{rate: 44100, sizes: []int{64}}
	if _, err := New(dev, 0, ramp(10), 0); err == nil {
		t.Error("expected error for zero source rate")
	}
	bad := audio.Stereo{Left: make([]float32, 3), Right: make([]float32, 2)}
	if _, err := New(dev, 44100, bad, 0); err == nil {
		t.Error("expected error for mismatched channels")
	}
}

func TestEngineClose(t *testing.T) {
	dev := &mockDevice{rate: 44100, sizes: []int{64}}
	e, err := New(dev, 44100, ramp(10), 0)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	e.Play()
	if err := e.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	if !dev.last().closed.Load() {
		t.Error("expected stream to be closed")
	}
	if e.Playing() {
		t.Error("expected engine to stop playing after close")
	}
	if err := e.Close(); err != nil {
		t.Errorf("expected second close to be a no-op, got %v", err)
	}
}

func TestNewDevice(t *testing.T) {
	for _, name := range []string{"", "malgo", "MALGO", "oto", "portaudio"} {
		dev, err := NewDevice(name)
		if err != nil {
			t.Errorf("unexpected error for %q: %v", name, err)
		}
		if dev == nil {
			t.Errorf("expected device for %q", name)
		}
	}
	if _, err := NewDevice("alsa"); err == nil {
		t.Error("expected error for unknown backend")
	}
}
