// ABOUTME: PCM quantization for stereo buffers
// ABOUTME: Converts planar float audio to interleaved 16 or 24-bit integers
package encode

import (
	"fmt"

	"github.com/ms7-demo/demo-go/pkg/audio"
)

// Quantize interleaves buf into integer samples at the given bit depth
func Quantize(buf audio.Stereo, bitDepth int) ([]int, error) {
	if bitDepth != 16 && bitDepth != 24 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", bitDepth)
	}
	if err := buf.Validate(); err != nil {
		return nil, err
	}

	out := make([]int, buf.Frames()*audio.Channels)
	for i := range buf.Left {
		out[i*2] = int(audio.SampleToInt(buf.Left[i], bitDepth))
		out[i*2+1] = int(audio.SampleToInt(buf.Right[i], bitDepth))
	}
	return out, nil
}
