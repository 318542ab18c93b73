// ABOUTME: Oto-based audio output implementation
// ABOUTME: Feeds a float32 oto player from the fill callback through a pull reader
package output

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// otoDefaultRate is used when the caller asks for the native rate, which oto
// cannot report
const otoDefaultRate = 48000

// oto allows only one context per process, shared by every stream
var (
	otoMu   sync.Mutex
	otoCtx  *oto.Context
	otoRate int
)

// Oto opens playback streams through oto
type Oto struct{}

// NewOto creates a new Oto device
func NewOto() Device {
	return &Oto{}
}

type otoStream struct {
	player *oto.Player
	rate   int
}

// otoReader adapts a FillFunc to the io.Reader oto pulls from
type otoReader struct {
	fill    FillFunc
	scratch []float32
}

// Open creates the shared context on first use and starts a player on it.
// Later requests for a different rate keep the existing context rate.
func (o *Oto) Open(cfg Config, fill FillFunc) (Stream, error) {
	ctx, rate, err := sharedOtoContext(cfg.SampleRate)
	if err != nil {
		return nil, err
	}

	r := &otoReader{
		fill:    fill,
		scratch: make([]float32, initialScratchFrames*2),
	}

	player := ctx.NewPlayer(r)
	if cfg.BufferFrames > 0 {
		player.SetBufferSize(cfg.BufferFrames * 2 * 4)
	}
	player.Play()

	log.Printf("Audio output opened: %dHz, 2 channels, f32 (oto)", rate)

	return &otoStream{player: player, rate: rate}, nil
}

func sharedOtoContext(sampleRate int) (*oto.Context, int, error) {
	otoMu.Lock()
	defer otoMu.Unlock()

	if otoCtx != nil {
		if sampleRate != 0 && sampleRate != otoRate {
			log.Printf("Warning: oto context already running at %dHz, ignoring requested %dHz", otoRate, sampleRate)
		}
		return otoCtx, otoRate, nil
	}

	if sampleRate == 0 {
		sampleRate = otoDefaultRate
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	otoCtx = ctx
	otoRate = sampleRate
	return otoCtx, otoRate, nil
}

// Read fills p with whole float32 stereo frames
func (r *otoReader) Read(p []byte) (int, error) {
	frames := len(p) / 8
	n := frames * 2
	if n > len(r.scratch) {
		r.scratch = make([]float32, n)
	}
	samples := r.scratch[:n]

	r.fill(samples)

	for i, v := range samples {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	return frames * 8, nil
}

func (s *otoStream) SampleRate() int {
	return s.rate
}

// Close stops the player. The shared context stays alive for later streams.
func (s *otoStream) Close() error {
	if s.player == nil {
		return nil
	}
	s.player.Pause()
	s.player.Close()
	s.player = nil
	return nil
}
