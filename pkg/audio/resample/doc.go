// ABOUTME: Audio resampling package using overlap-add FFT conversion
// ABOUTME: Converts a pull-based stereo source between sample rates
// Package resample provides fixed-output sample rate conversion.
//
// The FFT resampler pulls source frames on demand and always yields the
// requested number of output frames, which matches how device callbacks ask
// for audio. Handles both upsampling and downsampling.
//
// Example:
//
//	r, err := resample.NewFFT(44100, 48000, 512)
//	n := r.Process(source, out) // out holds 512 interleaved stereo frames
package resample
