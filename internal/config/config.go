// ABOUTME: YAML configuration for the demo tools
// ABOUTME: Player, output and compiler settings with defaults and validation
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ms7-demo/demo-go/pkg/audio/analyze"
	"github.com/ms7-demo/demo-go/pkg/audio/output"
	"github.com/ms7-demo/demo-go/pkg/score"
	"github.com/ms7-demo/demo-go/pkg/timeline"
)

// Config is the top-level configuration file
type Config struct {
	Player   PlayerConfig   `yaml:"player"`
	Output   OutputConfig   `yaml:"output"`
	Compiler CompilerConfig `yaml:"compiler"`
}

// PlayerConfig controls playback
type PlayerConfig struct {
	Demo     string           `yaml:"demo"`
	Start    float64          `yaml:"start"`
	Stage    string           `yaml:"stage"`
	Autoplay bool             `yaml:"autoplay"`
	LogFile  string           `yaml:"log_file"`
	FPS      int              `yaml:"fps"`
	Programs map[uint8]string `yaml:"programs,omitempty"` // program change -> stage
}

// OutputConfig selects and tunes the audio backend
type OutputConfig struct {
	Backend      string `yaml:"backend"`
	SampleRate   int    `yaml:"sample_rate,omitempty"`   // 0 = device native
	BufferFrames int    `yaml:"buffer_frames,omitempty"` // 0 = driver default
}

// CompilerConfig controls demo compilation
type CompilerConfig struct {
	WindowSize int           `yaml:"window_size"`
	Notes      NoteMapConfig `yaml:"notes"`
}

// NoteRange is an inclusive MIDI note span
type NoteRange struct {
	Lo uint8 `yaml:"lo"`
	Hi uint8 `yaml:"hi"`
}

// NoteMapConfig is the YAML form of score.NoteMap. Percussion kinds are
// given by name: kick, snare, hat, strobe.
type NoteMapConfig struct {
	Trigger    NoteRange        `yaml:"trigger"`
	Toggle     NoteRange        `yaml:"toggle"`
	Beat       NoteRange        `yaml:"beat"`
	Percussion map[uint8]string `yaml:"percussion,omitempty"`
}

// Default returns a config with sensible defaults
func Default() *Config {
	notes := score.DefaultNoteMap()
	return &Config{
		Player: PlayerConfig{
			Demo:    "demo.dem",
			Stage:   "scope",
			LogFile: "demo-player.log",
			FPS:     60,
		},
		Output: OutputConfig{
			Backend: "malgo",
		},
		Compiler: CompilerConfig{
			WindowSize: analyze.DefaultWindowSize,
			Notes: NoteMapConfig{
				Trigger: NoteRange(notes.Trigger),
				Toggle:  NoteRange(notes.Toggle),
				Beat:    NoteRange(notes.Beat),
			},
		},
	}
}

// Load reads the config at path over the defaults. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Player.Start < 0 {
		return fmt.Errorf("player.start must not be negative: %f", c.Player.Start)
	}
	if c.Player.FPS <= 0 || c.Player.FPS > 1000 {
		return fmt.Errorf("player.fps out of range: %d", c.Player.FPS)
	}
	if _, err := output.NewDevice(c.Output.Backend); err != nil {
		return err
	}
	if c.Output.SampleRate < 0 || c.Output.BufferFrames < 0 {
		return fmt.Errorf("output sample_rate and buffer_frames must not be negative")
	}
	if _, err := analyze.New(c.Compiler.WindowSize); err != nil {
		return fmt.Errorf("compiler.window_size: %w", err)
	}
	if _, err := c.NoteMap(); err != nil {
		return err
	}
	return nil
}

// NoteMap converts the note configuration for the score compiler
func (c *Config) NoteMap() (score.NoteMap, error) {
	n := c.Compiler.Notes
	m := score.NoteMap{
		Trigger: score.Range(n.Trigger),
		Toggle:  score.Range(n.Toggle),
		Beat:    score.Range(n.Beat),
	}

	if len(n.Percussion) > 0 {
		m.Percussion = make(map[uint8]timeline.Kind, len(n.Percussion))
		for note, name := range n.Percussion {
			kind, err := timeline.ParseKind(name)
			if err != nil {
				return score.NoteMap{}, fmt.Errorf("percussion note %d: %w", note, err)
			}
			m.Percussion[note] = kind
		}
	}

	if err := m.Validate(); err != nil {
		return score.NoteMap{}, fmt.Errorf("compiler.notes: %w", err)
	}
	return m, nil
}
