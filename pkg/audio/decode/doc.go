// ABOUTME: Audio decoder package for the demo compiler
// ABOUTME: Provides Decoder interface and implementations for WAV, MP3, FLAC
// Package decode turns source audio files into planar stereo float PCM.
//
// Supports: WAV (integer PCM), MP3, FLAC. The demo format only carries
// stereo audio, so decoders reject anything else with audio.ErrNotStereo.
//
// Example:
//
//	buf, sampleRate, err := decode.File("track.flac")
package decode
