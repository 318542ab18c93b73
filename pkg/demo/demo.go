// ABOUTME: Demo artifact model
// ABOUTME: Metadata, stereo audio, event timeline and loudness envelope
package demo

import (
	"fmt"

	"github.com/ms7-demo/demo-go/pkg/audio"
	"github.com/ms7-demo/demo-go/pkg/timeline"
)

// Metadata is written once at compile time
type Metadata struct {
	SampleRate uint32
	PeakRMS    float32
}

// Demo is a compiled demo. It is immutable once built.
type Demo struct {
	Meta     Metadata
	Audio    audio.Stereo
	Events   timeline.Sequence[timeline.Event]
	Envelope timeline.Sequence[float32]
}

// Duration returns the audio length in seconds
func (d *Demo) Duration() float64 {
	return d.Audio.Duration(int(d.Meta.SampleRate))
}

// Validate checks the invariants every demo must satisfy
func (d *Demo) Validate() error {
	if d.Meta.SampleRate == 0 {
		return fmt.Errorf("sample rate is zero")
	}
	if err := d.Audio.Validate(); err != nil {
		return err
	}
	if !d.Events.Sorted() {
		return fmt.Errorf("events are not in time order")
	}
	if !d.Envelope.Sorted() {
		return fmt.Errorf("envelope is not in time order")
	}
	for i, e := range d.Events {
		if !e.Value.Kind.Valid() {
			return fmt.Errorf("event %d has invalid kind %d", i, uint8(e.Value.Kind))
		}
	}
	return nil
}
