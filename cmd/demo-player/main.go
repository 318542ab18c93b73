// ABOUTME: Entry point for the demo player
// ABOUTME: Loads a demo, opens the audio device and runs the stages
package main

import (
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ms7-demo/demo-go/internal/config"
	"github.com/ms7-demo/demo-go/internal/stages"
	"github.com/ms7-demo/demo-go/internal/ui"
	"github.com/ms7-demo/demo-go/internal/version"
	"github.com/ms7-demo/demo-go/pkg/audio/output"
	"github.com/ms7-demo/demo-go/pkg/demo"
	"github.com/ms7-demo/demo-go/pkg/player"
)

var (
	configPath = flag.String("config", "", "YAML config file")
	demoPath   = flag.String("demo", "", "Demo file to play")
	start      = flag.Float64("start", 0, "Start offset in seconds")
	backend    = flag.String("backend", "", "Audio backend: malgo, oto or portaudio")
	stage      = flag.String("stage", "", "Initial stage")
	logFile    = flag.String("log-file", "", "Log file path")
	autoplay   = flag.Bool("autoplay", false, "Start playback immediately")
	noTUI      = flag.Bool("no-tui", false, "Disable TUI, play headless with streaming logs")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid options: %v", err)
	}

	useTUI := !*noTUI

	f, err := os.OpenFile(cfg.Player.LogFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	log.Printf("Starting %s by %s", version.String(), version.Manufacturer)

	d, err := demo.Load(cfg.Player.Demo)
	if err != nil {
		log.Fatalf("Failed to load demo: %v", err)
	}
	log.Printf("Loaded %s: %.2fs, %d events", cfg.Player.Demo, d.Duration(), len(d.Events))

	set, err := stages.Build(stages.Programs(cfg.Player.Programs))
	if err != nil {
		log.Fatalf("Failed to build stages: %v", err)
	}
	st, err := player.NewStages(cfg.Player.Stage, set)
	if err != nil {
		log.Fatalf("Failed to create stages: %v", err)
	}

	dev, err := output.NewDevice(cfg.Output.Backend)
	if err != nil {
		log.Fatalf("Failed to select audio backend: %v", err)
	}
	engine, err := output.NewWithConfig(dev, output.Config{
		SampleRate:   cfg.Output.SampleRate,
		BufferFrames: cfg.Output.BufferFrames,
	}, int(d.Meta.SampleRate), d.Audio, cfg.Player.Start)
	if err != nil {
		log.Fatalf("Failed to open audio output: %v", err)
	}
	defer func() { _ = engine.Close() }()

	p := player.New(d, float32(cfg.Player.Start), engine, st)
	if cfg.Player.Autoplay || !useTUI {
		p.Play()
	}

	if useTUI {
		if err := ui.Run(p, cfg.Player.FPS); err != nil {
			log.Printf("TUI error: %v", err)
		}
		return
	}

	runHeadless(p, d.Duration(), cfg.Player.FPS)
}

// applyFlags overrides config values with flags set on the command line
func applyFlags(cfg *config.Config) {
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "demo":
			cfg.Player.Demo = *demoPath
		case "start":
			cfg.Player.Start = *start
		case "backend":
			cfg.Output.Backend = *backend
		case "stage":
			cfg.Player.Stage = *stage
		case "log-file":
			cfg.Player.LogFile = *logFile
		case "autoplay":
			cfg.Player.Autoplay = *autoplay
		}
	})
}

// runHeadless updates the player from a ticker until the audio ends or the
// process is interrupted
func runHeadless(p *player.Player, duration float64, fps int) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	log.Printf("Headless playback, press Ctrl-C to stop")

	last := time.Now()
	for {
		select {
		case sig := <-sigChan:
			log.Printf("Received %v signal, stopping at %.3fs", sig, p.T())
			return
		case now := <-ticker.C:
			p.Update(float32(now.Sub(last).Seconds()))
			last = now

			if p.Done() && float64(p.T()) >= duration {
				log.Printf("Demo finished at %.3fs", p.T())
				return
			}
		}
	}
}
