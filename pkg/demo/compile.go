// ABOUTME: Demo compilation pipeline
// ABOUTME: Decodes audio, analyzes loudness and compiles the MIDI score
package demo

import (
	"fmt"
	"log"

	"github.com/ms7-demo/demo-go/pkg/audio/analyze"
	"github.com/ms7-demo/demo-go/pkg/audio/decode"
	"github.com/ms7-demo/demo-go/pkg/score"
)

// CompileOptions tunes the compiler. Zero values select the defaults.
type CompileOptions struct {
	WindowSize int
	Notes      *score.NoteMap
}

// Compile builds a demo from an audio file and a MIDI score
func Compile(audioPath, midiPath string, opts CompileOptions) (*Demo, error) {
	windowSize := opts.WindowSize
	if windowSize == 0 {
		windowSize = analyze.DefaultWindowSize
	}
	notes := score.DefaultNoteMap()
	if opts.Notes != nil {
		notes = *opts.Notes
	}

	log.Printf("Compiling demo from %s and %s", audioPath, midiPath)

	buf, rate, err := decode.File(audioPath)
	if err != nil {
		return nil, err
	}

	s, err := score.ReadFile(midiPath)
	if err != nil {
		return nil, err
	}

	events, err := score.Compile(s, notes)
	if err != nil {
		return nil, fmt.Errorf("failed to compile score: %w", err)
	}

	env, peak, err := analyze.Envelope(buf, rate, windowSize)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze audio: %w", err)
	}
	log.Printf("Analyzed %d windows of %d frames, peak rms %.4f", len(env), windowSize, peak)

	if end := float64(events.End()); end > buf.Duration(rate) {
		log.Printf("Warning: score runs %.2fs past the end of the audio", end-buf.Duration(rate))
	}

	return &Demo{
		Meta: Metadata{
			SampleRate: uint32(rate),
			PeakRMS:    peak,
		},
		Audio:    buf,
		Events:   events,
		Envelope: env,
	}, nil
}
