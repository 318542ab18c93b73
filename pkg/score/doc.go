// ABOUTME: Score package for compiling MIDI into demo timelines
// ABOUTME: Reads Standard MIDI Files and classifies notes into events
// Package score turns an authored MIDI score into the demo event timeline.
//
// Read merges every track of a Standard MIDI File into one tick-ordered
// stream. Compile walks it with a running tempo (default 120 BPM) and maps
// each message to a timeline event through a NoteMap:
//
//	note-on in the trigger range    -> Trigger{note}
//	note-on/off in the toggle range -> Toggle{note, on/off}
//	note-on in the beat range       -> Beat{note, seconds until its note-off}
//	program change                  -> Program{program}
//	pitch bend                      -> Mod{channel, bend/16383}
//	control change                  -> Mod{controller, value/127}
//
// Example:
//
//	s, err := score.ReadFile("demo.mid")
//	events, err := score.Compile(s, score.DefaultNoteMap())
package score
