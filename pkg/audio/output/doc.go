// ABOUTME: Audio output package for playing a demo soundtrack
// ABOUTME: Provides the Device abstraction, buffer preflight and the playback engine
// Package output streams a stereo track to an audio device.
//
// Devices are callback driven: the backend calls a FillFunc on its audio
// thread whenever it needs frames. Backends: malgo (default), oto, and
// portaudio (build with -tags portaudio).
//
// Example:
//
//	dev, err := output.NewDevice("malgo")
//	engine, err := output.New(dev, 44100, track, 0)
//	engine.Play()
package output
