// ABOUTME: Audio encoder package
// ABOUTME: Writes stereo buffers back out as PCM WAV files
// Package encode writes decoded or resampled demo audio to disk.
//
// Supports: 16-bit and 24-bit PCM WAV.
//
// Example:
//
//	err := encode.WriteWAVFile("out.wav", d.Audio, int(d.Meta.SampleRate), 16)
package encode
