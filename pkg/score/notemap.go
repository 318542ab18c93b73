// ABOUTME: Note number classification table for score compilation
// ABOUTME: Maps MIDI note ranges and percussion notes to event kinds
package score

import (
	"fmt"

	"github.com/ms7-demo/demo-go/pkg/timeline"
)

// Range is an inclusive span of MIDI note numbers
type Range struct {
	Lo uint8
	Hi uint8
}

// Contains reports whether note lies within the range
func (r Range) Contains(note uint8) bool {
	return note >= r.Lo && note <= r.Hi
}

func (r Range) overlaps(o Range) bool {
	return r.Lo <= o.Hi && o.Lo <= r.Hi
}

// NoteMap decides which event a note produces. Percussion entries are
// checked before the ranges.
type NoteMap struct {
	Trigger    Range
	Toggle     Range
	Beat       Range
	Percussion map[uint8]timeline.Kind
}

// DefaultNoteMap returns the standard layout: triggers 0-29, toggles 30-59,
// beats 60-127 and no percussion notes.
func DefaultNoteMap() NoteMap {
	return NoteMap{
		Trigger: Range{Lo: 0, Hi: 29},
		Toggle:  Range{Lo: 30, Hi: 59},
		Beat:    Range{Lo: 60, Hi: 127},
	}
}

// Validate checks that ranges are well formed and disjoint and that
// percussion notes map to percussive kinds
func (m NoteMap) Validate() error {
	ranges := []struct {
		name string
		r    Range
	}{
		{"trigger", m.Trigger},
		{"toggle", m.Toggle},
		{"beat", m.Beat},
	}

	for i, a := range ranges {
		if a.r.Lo > a.r.Hi || a.r.Hi > 127 {
			return fmt.Errorf("invalid %s range %d-%d", a.name, a.r.Lo, a.r.Hi)
		}
		for _, b := range ranges[i+1:] {
			if a.r.overlaps(b.r) {
				return fmt.Errorf("%s range %d-%d overlaps %s range %d-%d",
					a.name, a.r.Lo, a.r.Hi, b.name, b.r.Lo, b.r.Hi)
			}
		}
	}

	for note, kind := range m.Percussion {
		if note > 127 {
			return fmt.Errorf("invalid percussion note %d", note)
		}
		if !(timeline.Event{Kind: kind}).Percussive() {
			return fmt.Errorf("percussion note %d maps to non-percussive kind %s", note, kind)
		}
	}

	return nil
}
