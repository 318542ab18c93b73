// ABOUTME: Demo container encoding
// ABOUTME: Little-endian tagged records behind a magic and version header
package demo

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ms7-demo/demo-go/pkg/timeline"
)

// Container layout:
//
//	magic "DEMO", u16 version
//	record*: u8 tag, u64 body length, body
//
//	'M' metadata: u32 sample rate, f32 peak rms
//	'A' audio:    u32 channels (2), u64 frames, f32 left*, f32 right*
//	'E' events:   u64 count, (f32 time, u8 kind, payload)*
//	'V' envelope: u64 count, (f32 time, f32 rms)*
//
// Event payloads: trigger and program u8 id; toggle u8 id, u8 state;
// beat u8 id, f32 duration; mod u8 id, f32 value; other kinds none.
const (
	magic   = "DEMO"
	Version = 1

	tagMeta     = 'M'
	tagAudio    = 'A'
	tagEvents   = 'E'
	tagEnvelope = 'V'

	headerSize       = len(magic) + 2
	recordHeaderSize = 1 + 8
)

// MarshalBinary encodes the demo into the container format
func (d *Demo) MarshalBinary() ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("invalid demo: %w", err)
	}

	frames := d.Audio.Frames()
	size := headerSize + 4*recordHeaderSize +
		8 + 4 + 8 + frames*8 +
		8 + len(d.Events)*10 +
		8 + len(d.Envelope)*8

	b := make([]byte, 0, size)
	b = append(b, magic...)
	b = binary.LittleEndian.AppendUint16(b, Version)

	b = appendRecord(b, tagMeta, func(b []byte) []byte {
		b = binary.LittleEndian.AppendUint32(b, d.Meta.SampleRate)
		return appendFloat(b, d.Meta.PeakRMS)
	})

	b = appendRecord(b, tagAudio, func(b []byte) []byte {
		b = binary.LittleEndian.AppendUint32(b, 2)
		b = binary.LittleEndian.AppendUint64(b, uint64(frames))
		for _, v := range d.Audio.Left {
			b = appendFloat(b, v)
		}
		for _, v := range d.Audio.Right {
			b = appendFloat(b, v)
		}
		return b
	})

	b = appendRecord(b, tagEvents, func(b []byte) []byte {
		b = binary.LittleEndian.AppendUint64(b, uint64(len(d.Events)))
		for _, e := range d.Events {
			b = appendFloat(b, e.Time)
			b = appendEvent(b, e.Value)
		}
		return b
	})

	b = appendRecord(b, tagEnvelope, func(b []byte) []byte {
		b = binary.LittleEndian.AppendUint64(b, uint64(len(d.Envelope)))
		for _, e := range d.Envelope {
			b = appendFloat(b, e.Time)
			b = appendFloat(b, e.Value)
		}
		return b
	})

	return b, nil
}

// appendRecord writes tag, a length placeholder and the body, then patches
// the length
func appendRecord(b []byte, tag byte, body func([]byte) []byte) []byte {
	b = append(b, tag)
	lenAt := len(b)
	b = binary.LittleEndian.AppendUint64(b, 0)
	b = body(b)
	binary.LittleEndian.PutUint64(b[lenAt:], uint64(len(b)-lenAt-8))
	return b
}

func appendFloat(b []byte, v float32) []byte {
	return binary.LittleEndian.AppendUint32(b, math.Float32bits(v))
}

func appendEvent(b []byte, e timeline.Event) []byte {
	b = append(b, byte(e.Kind))
	switch e.Kind {
	case timeline.Trigger, timeline.Program:
		b = append(b, e.ID)
	case timeline.Toggle:
		state := byte(0)
		if e.State {
			state = 1
		}
		b = append(b, e.ID, state)
	case timeline.Beat:
		b = append(b, e.ID)
		b = appendFloat(b, e.Duration)
	case timeline.Mod:
		b = append(b, e.ID)
		b = appendFloat(b, e.Value)
	}
	return b
}
