// ABOUTME: Scope stage showing loudness and recent events
// ABOUTME: Renders an rms meter and the events of the last few seconds
package stages

import (
	"fmt"
	"io"
	"strings"

	"github.com/ms7-demo/demo-go/pkg/player"
	"github.com/ms7-demo/demo-go/pkg/timeline"
)

const (
	meterWidth   = 40
	recentWindow = 2 // seconds of history
	recentMax    = 8
)

// Scope draws a level meter scaled to the demo's peak rms and lists the
// events that fired recently
type Scope struct {
	programs Programs

	t      float32
	level  float32
	recent []timeline.Entry[timeline.Event]
	beats  int
}

// NewScope creates a scope stage
func NewScope(programs Programs) *Scope {
	return &Scope{programs: programs}
}

func (s *Scope) Init(p *player.Player) {
	s.t = p.T()
	s.level = 0
	s.recent = s.recent[:0]
}

func (s *Scope) Update(p *player.Player, dt float32) {
	s.t = p.T()
	s.level = normalize(p.RMS(), p.Meta().PeakRMS)

	recent := p.Events(s.t-recentWindow, s.t)
	if len(recent) > recentMax {
		recent = recent[len(recent)-recentMax:]
	}
	s.recent = append(s.recent[:0], recent...)
}

func (s *Scope) Event(p *player.Player, ev timeline.Event) {
	if s.programs.route(p, ev) {
		return
	}
	if ev.Kind == timeline.Beat {
		s.beats++
	}
}

func (s *Scope) Key(p *player.Player, state player.KeyState, key string) {
	if state == player.KeyPressed && key == "tab" {
		p.Go(FlashName)
	}
}

func (s *Scope) Render(w io.Writer) {
	filled := int(s.level*meterWidth + 0.5)
	fmt.Fprintf(w, "rms  [%s%s] %3.0f%%\n",
		strings.Repeat("█", filled), strings.Repeat("░", meterWidth-filled), s.level*100)
	fmt.Fprintf(w, "beat %d\n\n", s.beats)

	if len(s.recent) == 0 {
		fmt.Fprintln(w, "  (no recent events)")
		return
	}
	for i := len(s.recent) - 1; i >= 0; i-- {
		e := s.recent[i]
		fmt.Fprintf(w, "  %7.3fs  %s\n", e.Time, e.Value)
	}
}

// Level returns the last meter level in [0, 1]
func (s *Scope) Level() float32 {
	return s.level
}

// Recent returns the events shown by the last update, oldest first
func (s *Scope) Recent() []timeline.Entry[timeline.Event] {
	return s.recent
}

func normalize(rms, peak float32) float32 {
	if peak <= 0 {
		return 0
	}
	v := rms / peak
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
