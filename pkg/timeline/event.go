// ABOUTME: Timeline event model
// ABOUTME: Tagged event values dispatched to stages during playback
package timeline

import "fmt"

// Kind identifies the variant of an Event
type Kind uint8

const (
	Kick Kind = iota
	Snare
	Hat
	Trigger
	Toggle
	Strobe
	Beat
	Mod
	Program
)

var kindNames = [...]string{
	Kick:    "kick",
	Snare:   "snare",
	Hat:     "hat",
	Trigger: "trigger",
	Toggle:  "toggle",
	Strobe:  "strobe",
	Beat:    "beat",
	Mod:     "mod",
	Program: "program",
}

// Valid reports whether k is a known kind
func (k Kind) Valid() bool {
	return int(k) < len(kindNames)
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// ParseKind maps a kind name back to its Kind
func ParseKind(name string) (Kind, error) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown event kind: %q", name)
}

// Event is a single discrete timeline trigger. Only the fields relevant to
// Kind are meaningful:
//
//	Trigger, Program: ID
//	Toggle:           ID, State
//	Beat:             ID, Duration (seconds from note-on to note-off)
//	Mod:              ID, Value in [0, 1]
type Event struct {
	Kind     Kind
	ID       uint8
	State    bool
	Duration float32
	Value    float32
}

// Percussive reports whether the event is one of the fixed hit kinds
func (e Event) Percussive() bool {
	switch e.Kind {
	case Kick, Snare, Hat, Strobe:
		return true
	}
	return false
}

func (e Event) String() string {
	switch e.Kind {
	case Trigger, Program:
		return fmt.Sprintf("%s(%d)", e.Kind, e.ID)
	case Toggle:
		return fmt.Sprintf("toggle(%d, %t)", e.ID, e.State)
	case Beat:
		return fmt.Sprintf("beat(%d, %.3fs)", e.ID, e.Duration)
	case Mod:
		return fmt.Sprintf("mod(%d, %.3f)", e.ID, e.Value)
	default:
		return e.Kind.String()
	}
}

// Constructors keep call sites short

func NewTrigger(id uint8) Event { return Event{Kind: Trigger, ID: id} }

func NewToggle(id uint8, state bool) Event { return Event{Kind: Toggle, ID: id, State: state} }

func NewBeat(id uint8, duration float32) Event {
	return Event{Kind: Beat, ID: id, Duration: duration}
}

func NewMod(id uint8, value float32) Event { return Event{Kind: Mod, ID: id, Value: value} }

func NewProgram(id uint8) Event { return Event{Kind: Program, ID: id} }
