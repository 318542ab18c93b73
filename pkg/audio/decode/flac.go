// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes FLAC frames to planar stereo float samples
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/ms7-demo/demo-go/pkg/audio"
)

// FLACDecoder decodes FLAC files
type FLACDecoder struct{}

// NewFLAC creates a new FLAC decoder
func NewFLAC() Decoder {
	return &FLACDecoder{}
}

// Decode parses every frame of the stream
func (d *FLACDecoder) Decode(r io.ReadSeeker) (audio.Stereo, int, error) {
	stream, err := flac.New(r)
	if err != nil {
		return audio.Stereo{}, 0, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	if err := requireStereo(int(info.NChannels)); err != nil {
		return audio.Stereo{}, 0, err
	}
	bitDepth := int(info.BitsPerSample)

	var out audio.Stereo
	if info.NSamples > 0 {
		out.Left = make([]float32, 0, info.NSamples)
		out.Right = make([]float32, 0, info.NSamples)
	}

	for {
		frame, err := stream.ParseNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return audio.Stereo{}, 0, fmt.Errorf("failed to parse FLAC frame: %w", err)
		}

		for i := 0; i < int(frame.BlockSize); i++ {
			out.Left = append(out.Left, audio.SampleFromInt(frame.Subframes[0].Samples[i], bitDepth))
			out.Right = append(out.Right, audio.SampleFromInt(frame.Subframes[1].Samples[i], bitDepth))
		}
	}

	return out, int(info.SampleRate), nil
}
