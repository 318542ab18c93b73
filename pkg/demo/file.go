// ABOUTME: Demo file persistence
// ABOUTME: Exclusive-create save and whole-file load
package demo

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
)

// Save writes the demo to path, replacing any existing file
func (d *Demo) Save(path string) error {
	data, err := d.MarshalBinary()
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove existing demo: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create demo file: %w", err)
	}

	w := bufio.NewWriter(f)
	if _, err := w.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write demo: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write demo: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close demo file: %w", err)
	}

	log.Printf("Saved demo to %s (%d bytes, %.1fs, %d events)", path, len(data), d.Duration(), len(d.Events))
	return nil
}

// Load reads and decodes the demo at path
func Load(path string) (*Demo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read demo: %w", err)
	}

	d, err := LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return d, nil
}

// LoadBytes decodes a demo held in memory
func LoadBytes(data []byte) (*Demo, error) {
	d, err := Decode(data)
	if err != nil {
		return nil, err
	}

	log.Printf("Loaded demo: %dHz, %.1fs, %d events, %d envelope samples",
		d.Meta.SampleRate, d.Duration(), len(d.Events), len(d.Envelope))
	return d, nil
}
