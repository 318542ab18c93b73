// ABOUTME: WAV writer for stereo buffers
// ABOUTME: Wraps the go-audio encoder for demo audio export
package encode

import (
	"fmt"
	"io"
	"log"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ms7-demo/demo-go/pkg/audio"
)

// wavFormatPCM is the WAVE format tag for integer PCM
const wavFormatPCM = 1

// WriteWAV encodes buf as a stereo PCM WAV stream
func WriteWAV(w io.WriteSeeker, buf audio.Stereo, sampleRate, bitDepth int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", sampleRate)
	}

	data, err := Quantize(buf, bitDepth)
	if err != nil {
		return err
	}

	enc := wav.NewEncoder(w, sampleRate, bitDepth, audio.Channels, wavFormatPCM)
	if err := enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: audio.Channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}); err != nil {
		return fmt.Errorf("failed to write wav data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finish wav: %w", err)
	}
	return nil
}

// WriteWAVFile writes buf to a new WAV file at path
func WriteWAVFile(path string, buf audio.Stereo, sampleRate, bitDepth int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := WriteWAV(f, buf, sampleRate, bitDepth); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	log.Printf("Wrote %s: %d frames at %d Hz, %d-bit", path, buf.Frames(), sampleRate, bitDepth)
	return nil
}
