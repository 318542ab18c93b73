// ABOUTME: Spectral analyzer package
// ABOUTME: Reduces a stereo track to a loudness envelope
// Package analyze turns decoded audio into the demo's loudness envelope.
//
// Each block of windowSize mono frames is Hann windowed, zero-padded to twice
// its length and transformed with a real FFT. The magnitudes of the first
// windowSize bins, divided by the window sum, are reduced to a single rms value.
//
// Example:
//
//	env, peak, err := analyze.Envelope(buf, 44100, analyze.DefaultWindowSize)
package analyze
