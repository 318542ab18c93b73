// ABOUTME: Flash stage that inverts the screen on hits
// ABOUTME: Percussion and triggers flash, toggles latch the inversion
package stages

import (
	"fmt"
	"io"
	"strings"

	"github.com/ms7-demo/demo-go/pkg/player"
	"github.com/ms7-demo/demo-go/pkg/timeline"
)

const (
	flashWidth  = 40
	flashHeight = 6
	flashDecay  = 8 // intensity lost per second
)

// Flash fills the frame when a percussive or trigger event fires and fades
// back out. A toggle event latches the inverted state.
type Flash struct {
	programs Programs

	intensity float32
	inverted  bool
	hits      int
}

// NewFlash creates a flash stage
func NewFlash(programs Programs) *Flash {
	return &Flash{programs: programs}
}

func (f *Flash) Init(p *player.Player) {
	f.intensity = 0
}

func (f *Flash) Update(p *player.Player, dt float32) {
	f.intensity -= dt * flashDecay
	if f.intensity < 0 {
		f.intensity = 0
	}
}

func (f *Flash) Event(p *player.Player, ev timeline.Event) {
	if f.programs.route(p, ev) {
		return
	}
	switch {
	case ev.Percussive(), ev.Kind == timeline.Trigger:
		f.intensity = 1
		f.hits++
	case ev.Kind == timeline.Toggle:
		f.inverted = ev.State
	}
}

func (f *Flash) Key(p *player.Player, state player.KeyState, key string) {
	if state == player.KeyPressed && key == "tab" {
		p.Go(ScopeName)
	}
}

func (f *Flash) Render(w io.Writer) {
	lit := f.Lit()
	cell := " "
	if lit {
		cell = "█"
	}
	row := strings.Repeat(cell, flashWidth)
	for i := 0; i < flashHeight; i++ {
		fmt.Fprintln(w, row)
	}
	fmt.Fprintf(w, "\nhits %d\n", f.hits)
}

// Lit reports whether the frame is currently filled
func (f *Flash) Lit() bool {
	return (f.intensity > 0.5) != f.inverted
}
