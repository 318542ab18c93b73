// ABOUTME: Stage contract and the named stage state machine
// ABOUTME: Exactly one stage is current; transitions go through the player
package player

import (
	"fmt"
	"io"
	"sort"

	"github.com/ms7-demo/demo-go/pkg/timeline"
)

// KeyState tells whether a key went down or up
type KeyState uint8

const (
	KeyPressed KeyState = iota
	KeyReleased
)

func (s KeyState) String() string {
	if s == KeyReleased {
		return "released"
	}
	return "pressed"
}

// Stage is one presentation state. All methods run on the update thread,
// never concurrently.
type Stage interface {
	// Init runs when the stage becomes current, before any other call
	Init(p *Player)

	// Update runs once per frame after due events were dispatched
	Update(p *Player, dt float32)

	// Event delivers one timeline event
	Event(p *Player, ev timeline.Event)

	// Key delivers a key press or release
	Key(p *Player, state KeyState, key string)

	// Render draws the stage
	Render(w io.Writer)
}

// Stages is a set of named stages with one current stage
type Stages struct {
	stages  map[string]Stage
	current string
	ready   bool // current stage has been initialized
}

// NewStages creates the state machine starting at initial
func NewStages(initial string, stages map[string]Stage) (*Stages, error) {
	if _, ok := stages[initial]; !ok {
		return nil, fmt.Errorf("unknown initial stage: %q", initial)
	}
	for name, st := range stages {
		if st == nil {
			return nil, fmt.Errorf("stage %q is nil", name)
		}
	}
	return &Stages{stages: stages, current: initial}, nil
}

// Current returns the name of the current stage
func (s *Stages) Current() string {
	return s.current
}

// Has reports whether a stage with the given name exists
func (s *Stages) Has(name string) bool {
	_, ok := s.stages[name]
	return ok
}

// Names returns the stage names in sorted order
func (s *Stages) Names() []string {
	names := make([]string, 0, len(s.stages))
	for name := range s.stages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Stages) stage() Stage {
	return s.stages[s.current]
}

func (s *Stages) switchTo(name string) {
	if !s.Has(name) {
		panic(fmt.Sprintf("unknown stage %q", name))
	}
	s.current = name
	s.ready = false
}
