// ABOUTME: Decoder interface and file-type dispatch
// ABOUTME: Turns an audio file into planar stereo float PCM
package decode

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ms7-demo/demo-go/pkg/audio"
)

// Decoder decodes a complete encoded audio stream
type Decoder interface {
	// Decode reads the whole stream and returns planar stereo PCM and its sample rate
	Decode(r io.ReadSeeker) (audio.Stereo, int, error)
}

// ForExtension returns the decoder registered for a file extension (".wav", ".mp3", ".flac")
func ForExtension(ext string) (Decoder, error) {
	switch strings.ToLower(ext) {
	case ".wav", ".wave":
		return NewWAV(), nil
	case ".mp3":
		return NewMP3(), nil
	case ".flac":
		return NewFLAC(), nil
	default:
		return nil, fmt.Errorf("unsupported audio format: %s (supported: .wav, .mp3, .flac)", ext)
	}
}

// File decodes the audio file at path. The source must be stereo.
func File(path string) (audio.Stereo, int, error) {
	dec, err := ForExtension(filepath.Ext(path))
	if err != nil {
		return audio.Stereo{}, 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return audio.Stereo{}, 0, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	buf, rate, err := dec.Decode(f)
	if err != nil {
		return audio.Stereo{}, 0, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}

	log.Printf("Decoded %s: %d frames, %d Hz (%.1fs)",
		filepath.Base(path), buf.Frames(), rate, buf.Duration(rate))

	return buf, rate, nil
}

func requireStereo(channels int) error {
	if channels != audio.Channels {
		return fmt.Errorf("%w: %d channels", audio.ErrNotStereo, channels)
	}
	return nil
}
