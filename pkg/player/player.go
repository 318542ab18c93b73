// ABOUTME: Playback scheduler driving the stage state machine
// ABOUTME: Advances the master clock and dispatches due events in order
package player

import (
	"fmt"
	"io"
	"log"

	"github.com/ms7-demo/demo-go/pkg/demo"
	"github.com/ms7-demo/demo-go/pkg/timeline"
)

// Audio is the output the player starts on Play
type Audio interface {
	Play()
}

// maxTransitions caps the transitions applied in one drain
const maxTransitions = 64

// Player owns the demo clock and the stages. It is not safe for concurrent
// use; call it from a single update loop.
type Player struct {
	stages *Stages
	audio  Audio

	playing bool
	t       float32
	rms     float32
	pending string

	meta       demo.Metadata
	events     timeline.Sequence[timeline.Event]
	eventsAt   int
	envelope   timeline.Sequence[float32]
	envelopeAt int

	batch []timeline.Event
}

// New creates a paused player at start seconds. Cursors begin at the start
// of the timeline, so the first update after Play replays every event up to
// start and the stages catch up.
func New(d *demo.Demo, start float32, audio Audio, stages *Stages) *Player {
	return &Player{
		stages:   stages,
		audio:    audio,
		t:        start,
		meta:     d.Meta,
		events:   d.Events,
		envelope: d.Envelope,
		batch:    make([]timeline.Event, 0, 16),
	}
}

// Update advances the clock by dt seconds when playing, dispatches every
// event that became due, then updates the current stage
func (p *Player) Update(dt float32) {
	p.drain()
	p.ensureInit()
	p.drain()

	p.batch = p.batch[:0]
	if p.playing {
		p.t += dt

		for p.envelopeAt < len(p.envelope) && p.envelope[p.envelopeAt].Time <= p.t {
			p.rms = p.envelope[p.envelopeAt].Value
			p.envelopeAt++
		}
		for p.eventsAt < len(p.events) && p.events[p.eventsAt].Time <= p.t {
			p.batch = append(p.batch, p.events[p.eventsAt].Value)
			p.eventsAt++
		}
	}

	for _, ev := range p.batch {
		p.stages.stage().Event(p, ev)
		p.drain()
	}

	p.stages.stage().Update(p, dt)
	p.drain()
}

// Play starts the clock and the audio. Later calls do nothing.
func (p *Player) Play() {
	if p.playing {
		return
	}
	p.playing = true
	p.audio.Play()
	log.Printf("Playback started at %.3fs in stage %q", p.t, p.stages.Current())
}

// Key forwards a key event to the current stage
func (p *Player) Key(state KeyState, key string) {
	p.ensureInit()
	p.drain()
	p.stages.stage().Key(p, state, key)
}

// Render draws the current stage
func (p *Player) Render(w io.Writer) {
	p.stages.stage().Render(w)
}

// Go requests a transition to the named stage. It takes effect after the
// current event or update finishes. Unknown names panic.
func (p *Player) Go(name string) {
	if !p.stages.Has(name) {
		panic(fmt.Sprintf("unknown stage %q", name))
	}
	p.pending = name
}

// T returns the demo time in seconds
func (p *Player) T() float32 {
	return p.t
}

// RMS returns the most recent envelope value
func (p *Player) RMS() float32 {
	return p.rms
}

// Meta returns the demo metadata
func (p *Player) Meta() demo.Metadata {
	return p.meta
}

// Playing reports whether Play has been called
func (p *Player) Playing() bool {
	return p.playing
}

// Stage returns the name of the current stage
func (p *Player) Stage() string {
	return p.stages.Current()
}

// Events returns the timeline entries with a <= time <= b
func (p *Player) Events(a, b float32) timeline.Sequence[timeline.Event] {
	return p.events.Range(a, b)
}

// Done reports whether every event has been dispatched
func (p *Player) Done() bool {
	return p.eventsAt >= len(p.events)
}

// drain applies transition requests until none is left. A stage may
// request another transition from its Init; a chain longer than
// maxTransitions is a cycle between Init calls and panics.
func (p *Player) drain() {
	for n := 0; p.pending != ""; n++ {
		if n == maxTransitions {
			panic(fmt.Sprintf("stage transition loop: still switching to %q after %d transitions", p.pending, n))
		}
		name := p.pending
		p.pending = ""
		log.Printf("Stage %q -> %q at %.3fs", p.stages.Current(), name, p.t)
		p.stages.switchTo(name)
		p.ensureInit()
	}
}

func (p *Player) ensureInit() {
	if p.stages.ready {
		return
	}
	p.stages.ready = true
	p.stages.stage().Init(p)
}
