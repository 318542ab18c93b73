// ABOUTME: Demo container decoding
// ABOUTME: Bounds-checked reader over the tagged record layout
package demo

import (
	"encoding/binary"
	"fmt"
	"log"
	"math"

	"github.com/ms7-demo/demo-go/pkg/audio"
	"github.com/ms7-demo/demo-go/pkg/timeline"
)

type parser struct {
	data   []byte
	offset int

	demo Demo
	seen map[byte]bool

	// record being parsed, for error messages
	record string
}

// Decode parses a complete container held in memory
func Decode(data []byte) (*Demo, error) {
	if len(data) < len(magic) || string(data[:len(magic)]) != magic {
		return nil, ErrBadMagic
	}

	p := &parser{data: data, offset: len(magic), seen: make(map[byte]bool, 4)}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return &p.demo, nil
}

func (p *parser) errorf(format string, args ...any) *FormatError {
	text := fmt.Sprintf(format, args...)
	if p.record != "" {
		text = p.record + ": " + text
	}
	return &FormatError{Message: text, Offset: p.offset}
}

func (p *parser) remaining() int {
	return len(p.data) - p.offset
}

func (p *parser) read(l int, what string) []byte {
	if l < 0 || p.remaining() < l {
		panic(p.errorf("unexpected EOF while reading %s", what))
	}
	b := p.data[p.offset : p.offset+l]
	p.offset += l
	return b
}

func (p *parser) readByte(what string) uint8 {
	return p.read(1, what)[0]
}

func (p *parser) readUint16(what string) uint16 {
	return binary.LittleEndian.Uint16(p.read(2, what))
}

func (p *parser) readUint32(what string) uint32 {
	return binary.LittleEndian.Uint32(p.read(4, what))
}

func (p *parser) readUint64(what string) uint64 {
	return binary.LittleEndian.Uint64(p.read(8, what))
}

func (p *parser) readFloat(what string) float32 {
	return math.Float32frombits(p.readUint32(what))
}

// readCount reads an element count and checks that count elements of at
// least minSize bytes fit in the rest of the record
func (p *parser) readCount(minSize int, end int, what string) int {
	n := p.readUint64(what)
	avail := max(end-p.offset, 0)
	if n > uint64(avail)/uint64(minSize) {
		panic(p.errorf("%s %d exceeds record size", what, n))
	}
	return int(n)
}

func (p *parser) parse() (err error) {
	defer func() {
		rv := recover()
		if rv != nil {
			if formatErr, ok := rv.(*FormatError); ok {
				err = formatErr
			} else {
				panic(rv)
			}
		}
	}()

	if v := p.readUint16("version"); v != Version {
		return fmt.Errorf("%w: %d", ErrVersion, v)
	}

	for p.remaining() > 0 {
		p.parseRecord()
	}

	p.record = ""
	for _, tag := range []byte{tagMeta, tagAudio, tagEvents, tagEnvelope} {
		if !p.seen[tag] {
			return p.errorf("missing %q record", tag)
		}
	}

	if err := p.demo.Validate(); err != nil {
		return p.errorf("%v", err)
	}

	return nil
}

func (p *parser) parseRecord() {
	p.record = ""
	tag := p.readByte("record tag")
	length := p.readUint64("record length")
	if length > uint64(p.remaining()) {
		panic(p.errorf("record %q length %d exceeds remaining %d bytes", tag, length, p.remaining()))
	}
	end := p.offset + int(length)

	switch tag {
	case tagMeta, tagAudio, tagEvents, tagEnvelope:
	default:
		log.Printf("Skipping unknown demo record %q (%d bytes)", tag, length)
		p.offset = end
		return
	}

	if p.seen[tag] {
		panic(p.errorf("duplicate %q record", tag))
	}
	p.seen[tag] = true
	p.record = fmt.Sprintf("record %q", tag)

	switch tag {
	case tagMeta:
		p.parseMeta()
	case tagAudio:
		p.parseAudio(end)
	case tagEvents:
		p.parseEvents(end)
	case tagEnvelope:
		p.parseEnvelope(end)
	}

	if p.offset != end {
		panic(p.errorf("body length mismatch: %d bytes declared", length))
	}
}

func (p *parser) parseMeta() {
	p.demo.Meta.SampleRate = p.readUint32("sample rate")
	p.demo.Meta.PeakRMS = p.readFloat("peak rms")
}

func (p *parser) parseAudio(end int) {
	if ch := p.readUint32("channel count"); ch != audio.Channels {
		panic(p.errorf("channel count %d out of range", ch))
	}
	frames := p.readCount(8, end, "frame count")

	buf := audio.NewStereo(frames)
	for i := range buf.Left {
		buf.Left[i] = p.readFloat("left sample")
	}
	for i := range buf.Right {
		buf.Right[i] = p.readFloat("right sample")
	}
	p.demo.Audio = buf
}

func (p *parser) parseEvents(end int) {
	n := p.readCount(5, end, "event count")

	events := make(timeline.Sequence[timeline.Event], n)
	for i := range events {
		events[i].Time = p.readFloat("event time")
		events[i].Value = p.parseEvent()
	}
	p.demo.Events = events
}

func (p *parser) parseEvent() timeline.Event {
	kind := timeline.Kind(p.readByte("event kind"))
	if !kind.Valid() {
		p.offset--
		panic(p.errorf("event kind %d out of range", uint8(kind)))
	}

	e := timeline.Event{Kind: kind}
	switch kind {
	case timeline.Trigger, timeline.Program:
		e.ID = p.readByte("event id")
	case timeline.Toggle:
		e.ID = p.readByte("event id")
		switch state := p.readByte("toggle state"); state {
		case 0:
		case 1:
			e.State = true
		default:
			p.offset--
			panic(p.errorf("toggle state %d out of range", state))
		}
	case timeline.Beat:
		e.ID = p.readByte("event id")
		e.Duration = p.readFloat("beat duration")
	case timeline.Mod:
		e.ID = p.readByte("event id")
		e.Value = p.readFloat("mod value")
	}
	return e
}

func (p *parser) parseEnvelope(end int) {
	n := p.readCount(8, end, "envelope count")

	env := make(timeline.Sequence[float32], n)
	for i := range env {
		env[i].Time = p.readFloat("envelope time")
		env[i].Value = p.readFloat("envelope rms")
	}
	p.demo.Envelope = env
}
