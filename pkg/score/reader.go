// ABOUTME: Standard MIDI File reader
// ABOUTME: Flattens all tracks of an SMF into one tick-ordered event list
package score

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"
)

// headerSize is the length of the MThd chunk including its 8-byte prefix
const headerSize = 14

// TickEvent is a raw MIDI message with its delta time in ticks
type TickEvent struct {
	Delta uint32
	Msg   []byte
}

// Score is a merged, tick-ordered MIDI event stream
type Score struct {
	PPQN   uint16
	Events []TickEvent
}

// ReadFile reads a Standard MIDI File from disk
func ReadFile(path string) (*Score, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open midi file: %w", err)
	}
	defer f.Close()

	s, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return s, nil
}

// Read parses a Standard MIDI File. All tracks are merged by absolute tick;
// events on the same tick keep their track order. SMPTE time division is
// not supported.
func Read(r io.Reader) (*Score, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read midi: %w", err)
	}
	if err := checkHeader(data); err != nil {
		return nil, err
	}

	file, err := parseSMF(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse midi: %w", err)
	}

	ticks, ok := file.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("unsupported time format: %v", file.TimeFormat)
	}
	if uint16(ticks) == 0 {
		return nil, fmt.Errorf("invalid time division: 0 ticks per quarter note")
	}

	type absEvent struct {
		tick  uint64
		track int
		msg   []byte
	}

	var all []absEvent
	for ti, track := range file.Tracks {
		var tick uint64
		for _, ev := range track {
			tick += uint64(ev.Delta)
			all = append(all, absEvent{tick: tick, track: ti, msg: []byte(ev.Message)})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].tick != all[j].tick {
			return all[i].tick < all[j].tick
		}
		return all[i].track < all[j].track
	})

	s := &Score{
		PPQN:   uint16(ticks),
		Events: make([]TickEvent, len(all)),
	}
	var last uint64
	for i, ev := range all {
		s.Events[i] = TickEvent{Delta: uint32(ev.tick - last), Msg: ev.msg}
		last = ev.tick
	}

	log.Printf("Read score: %d tracks, %d events, %d ticks per quarter", len(file.Tracks), len(s.Events), s.PPQN)

	return s, nil
}

// checkHeader validates the MThd chunk before the file is handed to the
// decoder, which cannot process SMPTE timing
func checkHeader(data []byte) error {
	if len(data) < headerSize {
		return fmt.Errorf("midi file too short: %d bytes", len(data))
	}
	if string(data[:4]) != "MThd" {
		return fmt.Errorf("not a standard midi file: missing MThd header")
	}
	if n := binary.BigEndian.Uint32(data[4:8]); n < 6 {
		return fmt.Errorf("invalid midi header length: %d", n)
	}
	if division := binary.BigEndian.Uint16(data[12:14]); division&0x8000 != 0 {
		return fmt.Errorf("unsupported time format: SMPTE division 0x%04X", division)
	}
	return nil
}

// parseSMF runs the decoder and turns its panics on malformed input into
// errors
func parseSMF(data []byte) (file *smf.SMF, err error) {
	defer func() {
		if r := recover(); r != nil {
			file = nil
			err = fmt.Errorf("malformed midi file: %v", r)
		}
	}()
	return smf.ReadFrom(bytes.NewReader(data))
}
