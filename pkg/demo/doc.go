// ABOUTME: Demo container package
// ABOUTME: Compiles, saves and loads the single-file demo artifact
// Package demo defines the compiled demo artifact and its file format.
//
// A demo bundles the stereo soundtrack with the event timeline compiled
// from the score and the loudness envelope computed from the audio. It is
// built once by Compile, written with Save and read back whole with Load.
//
// Example:
//
//	d, err := demo.Compile("track.wav", "score.mid", demo.CompileOptions{})
//	err = d.Save("track.dem")
//
//	d, err = demo.Load("track.dem")
package demo
