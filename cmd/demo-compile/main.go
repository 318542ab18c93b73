// ABOUTME: Entry point for the demo compiler
// ABOUTME: Builds a demo file from a stereo audio track and a MIDI score
package main

import (
	"flag"
	"log"
	"os"

	"github.com/ms7-demo/demo-go/internal/config"
	"github.com/ms7-demo/demo-go/internal/version"
	"github.com/ms7-demo/demo-go/pkg/audio/encode"
	"github.com/ms7-demo/demo-go/pkg/demo"
)

var (
	audioPath  = flag.String("audio", "", "Stereo audio track (WAV, MP3, FLAC)")
	midiPath   = flag.String("midi", "", "Standard MIDI file with the demo score")
	outPath    = flag.String("out", "", "Output demo file (default: demo path from config)")
	configPath = flag.String("config", "", "YAML config file")
	windowSize = flag.Int("window", 0, "Analysis window size in frames (power of two)")
	exportWAV  = flag.String("export-wav", "", "Also write the decoded demo audio to this WAV file")
	exportBits = flag.Int("export-bits", 16, "Bit depth for -export-wav (16 or 24)")
)

func main() {
	flag.Parse()
	log.SetOutput(os.Stdout)

	if *audioPath == "" || *midiPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *windowSize != 0 {
		cfg.Compiler.WindowSize = *windowSize
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid options: %v", err)
		}
	}

	out := *outPath
	if out == "" {
		out = cfg.Player.Demo
	}

	notes, err := cfg.NoteMap()
	if err != nil {
		log.Fatalf("Invalid note map: %v", err)
	}

	log.Printf("%s: compiling %s + %s", version.String(), *audioPath, *midiPath)

	d, err := demo.Compile(*audioPath, *midiPath, demo.CompileOptions{
		WindowSize: cfg.Compiler.WindowSize,
		Notes:      &notes,
	})
	if err != nil {
		log.Fatalf("Failed to compile demo: %v", err)
	}

	if err := d.Save(out); err != nil {
		log.Fatalf("Failed to save demo: %v", err)
	}

	if *exportWAV != "" {
		if err := encode.WriteWAVFile(*exportWAV, d.Audio, int(d.Meta.SampleRate), *exportBits); err != nil {
			log.Fatalf("Failed to export audio: %v", err)
		}
	}

	log.Printf("Wrote %s: %.2fs of audio at %d Hz, %d events, %d envelope entries, peak rms %.4f",
		out, d.Duration(), d.Meta.SampleRate, len(d.Events), len(d.Envelope), d.Meta.PeakRMS)
}
