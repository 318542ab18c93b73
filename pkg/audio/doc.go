// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines the Stereo buffer type and sample conversion functions
// Package audio provides the fundamental audio types shared by the compiler
// and the playback engine.
//
// Audio is always stereo and stored planar (one []float32 per channel) so
// that it can be written to and read from a demo container without
// reshuffling. Interleaving only happens at the device boundary.
//
// Example:
//
//	buf := audio.Deinterleave(samples)
//	if err := buf.Validate(); err != nil {
//	    return err
//	}
//	seconds := buf.Duration(44100)
package audio
