// ABOUTME: Device buffer-size discovery
// ABOUTME: Runs a throwaway stream and captures the frame count the driver really asks for
package output

import (
	"fmt"
	"log"
	"sync"
)

// preflightSkip is the number of early callbacks ignored before measuring.
// The first callbacks after start may use a different size.
const preflightSkip = 3

// Preflight opens a silent throwaway stream with cfg and returns the sample
// rate and callback frame count the device actually uses. It blocks until the
// device has called back preflightSkip+1 times; there is no timeout.
func Preflight(dev Device, cfg Config) (Config, error) {
	var (
		mu     sync.Mutex
		cond   = sync.NewCond(&mu)
		calls  int
		frames int
		done   bool
	)

	stream, err := dev.Open(cfg, func(out []float32) {
		clear(out)

		mu.Lock()
		defer mu.Unlock()
		if done {
			return
		}
		calls++
		if calls > preflightSkip {
			frames = len(out) / 2
			done = true
			cond.Signal()
		}
	})
	if err != nil {
		return Config{}, fmt.Errorf("failed to open preflight stream: %w", err)
	}

	mu.Lock()
	for !done {
		cond.Wait()
	}
	mu.Unlock()

	result := Config{
		SampleRate:   stream.SampleRate(),
		BufferFrames: frames,
	}

	if err := stream.Close(); err != nil {
		return Config{}, fmt.Errorf("failed to close preflight stream: %w", err)
	}

	log.Printf("Preflight: device runs at %dHz with %d frames per callback", result.SampleRate, result.BufferFrames)

	return result, nil
}
