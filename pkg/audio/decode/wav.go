// ABOUTME: WAV audio decoder
// ABOUTME: Decodes RIFF/WAVE integer PCM to planar stereo float samples
package decode

import (
	"fmt"
	"io"

	"github.com/go-audio/wav"
	"github.com/ms7-demo/demo-go/pkg/audio"
)

// WAVDecoder decodes WAV files
type WAVDecoder struct{}

// NewWAV creates a new WAV decoder
func NewWAV() Decoder {
	return &WAVDecoder{}
}

// Decode reads the full PCM payload
func (d *WAVDecoder) Decode(r io.ReadSeeker) (audio.Stereo, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return audio.Stereo{}, 0, fmt.Errorf("invalid wav file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return audio.Stereo{}, 0, fmt.Errorf("failed to read wav data: %w", err)
	}
	if buf == nil || buf.Format == nil {
		return audio.Stereo{}, 0, fmt.Errorf("invalid wav buffer")
	}
	if err := requireStereo(buf.Format.NumChannels); err != nil {
		return audio.Stereo{}, 0, err
	}

	bitDepth := int(dec.BitDepth)
	frames := len(buf.Data) / audio.Channels
	out := audio.NewStereo(frames)
	for i := 0; i < frames; i++ {
		out.Left[i] = audio.SampleFromInt(int32(buf.Data[i*2]), bitDepth)
		out.Right[i] = audio.SampleFromInt(int32(buf.Data[i*2+1]), bitDepth)
	}

	return out, buf.Format.SampleRate, nil
}
