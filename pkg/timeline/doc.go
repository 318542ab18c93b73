// ABOUTME: Timeline package for demo events and envelopes
// ABOUTME: Defines Event, Kind and the generic timed Sequence
// Package timeline holds the time-indexed data a demo plays back.
//
// A Sequence is an ordered list of (seconds, value) entries. The compiler
// produces a Sequence[Event] from the score and a Sequence[float32] loudness
// envelope from the audio; the player walks both with forward-only cursors.
//
// Example:
//
//	hits := demo.Events.Range(t-0.5, t)
//	for _, e := range hits {
//	    log.Printf("%.2f %s", e.Time, e.Value)
//	}
package timeline
