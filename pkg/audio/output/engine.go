// ABOUTME: Real-time playback engine for a decoded stereo track
// ABOUTME: Streams from a start offset, resampling to the device rate when needed
package output

import (
	"fmt"
	"log"
	"math"
	"sync/atomic"

	"github.com/ms7-demo/demo-go/pkg/audio"
	"github.com/ms7-demo/demo-go/pkg/audio/resample"
)

// Engine plays one stereo track on an output device. It starts muted; Play
// un-mutes. The playing flag is the only state shared with the audio thread.
type Engine struct {
	playing atomic.Bool

	stream     Stream
	cfg        Config
	sourceRate int

	// Owned by the audio thread once the stream is open
	cursor    *cursor
	resampler *resample.FFT
}

// New opens dev at its native rate and default buffer size
func New(dev Device, sourceRate int, buf audio.Stereo, start float64) (*Engine, error) {
	return NewWithConfig(dev, Config{}, sourceRate, buf, start)
}

// NewWithConfig opens dev with the requested stream configuration. The
// concrete buffer size is discovered with Preflight before streaming starts.
func NewWithConfig(dev Device, req Config, sourceRate int, buf audio.Stereo, start float64) (*Engine, error) {
	if sourceRate <= 0 {
		return nil, fmt.Errorf("invalid source sample rate: %d", sourceRate)
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	cfg, err := Preflight(dev, req)
	if err != nil {
		return nil, err
	}
	if cfg.SampleRate <= 0 || cfg.BufferFrames <= 0 {
		return nil, fmt.Errorf("device reported invalid configuration: %dHz, %d frames", cfg.SampleRate, cfg.BufferFrames)
	}

	e := &Engine{
		cfg:        cfg,
		sourceRate: sourceRate,
		cursor:     newCursor(buf, startFrame(start, sourceRate, buf.Frames())),
	}

	if cfg.SampleRate != sourceRate {
		e.resampler, err = resample.NewFFT(sourceRate, cfg.SampleRate, cfg.BufferFrames)
		if err != nil {
			return nil, fmt.Errorf("failed to create resampler: %w", err)
		}
		log.Printf("Resampling %dHz -> %dHz (%d/%d frame chunks)",
			sourceRate, cfg.SampleRate, e.resampler.ChunkIn(), e.resampler.ChunkOut())
	}

	stream, err := dev.Open(cfg, e.fill)
	if err != nil {
		return nil, fmt.Errorf("failed to open output stream: %w", err)
	}
	if rate := stream.SampleRate(); rate != cfg.SampleRate {
		log.Printf("Warning: stream opened at %dHz, expected %dHz", rate, cfg.SampleRate)
	}
	e.stream = stream

	log.Printf("Audio engine ready at %.3fs (%d frames/buffer)", start, cfg.BufferFrames)

	return e, nil
}

// Play starts audible playback
func (e *Engine) Play() {
	e.playing.Store(true)
}

// Playing reports whether Play has been called
func (e *Engine) Playing() bool {
	return e.playing.Load()
}

// Config returns the discovered device configuration
func (e *Engine) Config() Config {
	return e.cfg
}

// Resampling reports whether the source is converted to the device rate
func (e *Engine) Resampling() bool {
	return e.resampler != nil
}

// Close stops the stream
func (e *Engine) Close() error {
	e.playing.Store(false)
	if e.stream == nil {
		return nil
	}
	err := e.stream.Close()
	e.stream = nil
	if err != nil {
		return fmt.Errorf("failed to close output stream: %w", err)
	}
	return nil
}

// fill runs on the audio thread
func (e *Engine) fill(out []float32) {
	if !e.playing.Load() {
		clear(out)
		return
	}

	frames := len(out) / 2
	if e.resampler == nil {
		for i := 0; i < frames; i++ {
			out[i*2], out[i*2+1] = e.cursor.Next()
		}
		clear(out[frames*2:])
		return
	}

	// A different size means the device was reconfigured behind our back
	if frames != e.cfg.BufferFrames {
		clear(out)
		return
	}
	e.resampler.Process(e.cursor, out)
}

func startFrame(start float64, rate, frames int) int {
	skip := int(math.Round(start * float64(rate)))
	return max(0, min(skip, frames))
}

// cursor walks a stereo buffer and yields silence past the end
type cursor struct {
	left  []float32
	right []float32
	pos   int
}

func newCursor(buf audio.Stereo, pos int) *cursor {
	return &cursor{left: buf.Left, right: buf.Right, pos: pos}
}

func (c *cursor) Next() (float32, float32) {
	if c.pos >= len(c.left) {
		return 0, 0
	}
	l, r := c.left[c.pos], c.right[c.pos]
	c.pos++
	return l, r
}
