// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes MP3 audio to planar stereo float samples
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/ms7-demo/demo-go/pkg/audio"
)

// MP3Decoder decodes MP3 files
type MP3Decoder struct{}

// NewMP3 creates a new MP3 decoder
func NewMP3() Decoder {
	return &MP3Decoder{}
}

// Decode reads the whole stream. go-mp3 always yields 16-bit stereo.
func (d *MP3Decoder) Decode(r io.ReadSeeker) (audio.Stereo, int, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return audio.Stereo{}, 0, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	data, err := io.ReadAll(decoder)
	if err != nil {
		return audio.Stereo{}, 0, fmt.Errorf("mp3 decode error: %w", err)
	}

	// 2 bytes per int16 sample, 2 samples per frame
	frames := len(data) / 4
	out := audio.NewStereo(frames)
	for i := 0; i < frames; i++ {
		out.Left[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(data[i*4:])))
		out.Right[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(data[i*4+2:])))
	}

	return out, decoder.SampleRate(), nil
}
