// ABOUTME: Score to timeline compiler
// ABOUTME: Converts tick-timed MIDI messages into timestamped demo events
package score

import (
	"fmt"
	"log"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/ms7-demo/demo-go/pkg/timeline"
)

// DefaultTempo is the MIDI default of 120 BPM in microseconds per quarter note
const DefaultTempo = 500000

// timed is a non-tempo message at an absolute time in seconds
type timed struct {
	t   float64
	msg midi.Message
}

// Compile converts s into a time-ordered event sequence using notes to
// classify note messages. Tempo changes take effect after their own
// timestamp and are not emitted.
func Compile(s *Score, notes NoteMap) (timeline.Sequence[timeline.Event], error) {
	if s == nil {
		return nil, fmt.Errorf("nil score")
	}
	if s.PPQN == 0 {
		return nil, fmt.Errorf("invalid ppqn: 0")
	}
	if err := notes.Validate(); err != nil {
		return nil, fmt.Errorf("invalid note map: %w", err)
	}

	msgs := resolveTimes(s)
	offs := indexNoteOffs(msgs)

	events := make(timeline.Sequence[timeline.Event], 0, len(msgs))
	for i, m := range msgs {
		ev, ok := classify(m.msg, notes, func(note uint8) float32 {
			return beatDuration(msgs, offs, i, note)
		})
		if !ok {
			continue
		}
		events = append(events, timeline.Entry[timeline.Event]{Time: float32(m.t), Value: ev})
	}

	log.Printf("Compiled score: %d events over %.2fs", len(events), events.End())

	return events, nil
}

// resolveTimes applies the running tempo to every delta and drops tempo events
func resolveTimes(s *Score) []timed {
	tempo := float64(DefaultTempo)
	last := 0.0

	out := make([]timed, 0, len(s.Events))
	for _, ev := range s.Events {
		t := last + float64(ev.Delta)*(tempo/float64(s.PPQN))/1e6
		last = t

		if us, ok := tempoOf(ev.Msg); ok {
			tempo = us
			continue
		}
		out = append(out, timed{t: t, msg: midi.Message(ev.Msg)})
	}
	return out
}

// tempoOf returns the microseconds per quarter note of a set-tempo meta event
func tempoOf(msg []byte) (float64, bool) {
	if len(msg) >= 6 && msg[0] == 0xFF && msg[1] == 0x51 && msg[2] == 0x03 {
		us := uint32(msg[3])<<16 | uint32(msg[4])<<8 | uint32(msg[5])
		if us == 0 {
			return 0, false
		}
		return float64(us), true
	}

	var bpm float64
	if smf.Message(msg).GetMetaTempo(&bpm) && bpm > 0 {
		return 60e6 / bpm, true
	}
	return 0, false
}

// noteOffs lists, per note number, the message positions of note-offs
type noteOffs [128][]int

func indexNoteOffs(msgs []timed) *noteOffs {
	var offs noteOffs
	for i, m := range msgs {
		if note, ok := noteOff(m.msg); ok {
			offs[note] = append(offs[note], i)
		}
	}
	return &offs
}

// beatDuration finds the first note-off of note after position i
func beatDuration(msgs []timed, offs *noteOffs, i int, note uint8) float32 {
	positions := offs[note&0x7F]
	k := sort.SearchInts(positions, i+1)
	if k == len(positions) {
		return 0
	}
	return float32(msgs[positions[k]].t - msgs[i].t)
}

// noteOn returns the note of a note-on with non-zero velocity
func noteOn(msg midi.Message) (uint8, bool) {
	var ch, key, vel uint8
	if msg.GetNoteOn(&ch, &key, &vel) && vel > 0 {
		return key, true
	}
	return 0, false
}

// noteOff returns the note of a note-off or a zero-velocity note-on
func noteOff(msg midi.Message) (uint8, bool) {
	if len(msg) == 3 && msg[0]&0xF0 == 0x90 && msg[2] == 0 {
		return msg[1], true
	}
	var ch, key, vel uint8
	if msg.GetNoteOff(&ch, &key, &vel) {
		return key, true
	}
	return 0, false
}

func classify(msg midi.Message, notes NoteMap, beat func(note uint8) float32) (timeline.Event, bool) {
	if note, ok := noteOn(msg); ok {
		if kind, ok := notes.Percussion[note]; ok {
			return timeline.Event{Kind: kind}, true
		}
		switch {
		case notes.Trigger.Contains(note):
			return timeline.NewTrigger(note), true
		case notes.Toggle.Contains(note):
			return timeline.NewToggle(note, true), true
		case notes.Beat.Contains(note):
			return timeline.NewBeat(note, beat(note)), true
		}
		return timeline.Event{}, false
	}

	if note, ok := noteOff(msg); ok {
		if notes.Toggle.Contains(note) {
			if _, perc := notes.Percussion[note]; !perc {
				return timeline.NewToggle(note, false), true
			}
		}
		return timeline.Event{}, false
	}

	var ch, program, controller, value uint8
	var rel int16
	var abs uint16
	switch {
	case msg.GetProgramChange(&ch, &program):
		return timeline.NewProgram(program), true
	case msg.GetPitchBend(&ch, &rel, &abs):
		return timeline.NewMod(ch, float32(abs)/16383), true
	case msg.GetControlChange(&ch, &controller, &value):
		return timeline.NewMod(controller, float32(value)/127), true
	}

	return timeline.Event{}, false
}
