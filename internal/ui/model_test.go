// ABOUTME: Tests for the TUI model
// ABOUTME: Tests key handling, frame timing and view rendering
package ui

import (
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ms7-demo/demo-go/internal/stages"
	"github.com/ms7-demo/demo-go/pkg/demo"
	"github.com/ms7-demo/demo-go/pkg/player"
	"github.com/ms7-demo/demo-go/pkg/timeline"
)

type mockAudio struct {
	plays int
}

func (a *mockAudio) Play() { a.plays++ }

func newTestModel(t *testing.T) (Model, *player.Player, *mockAudio) {
	t.Helper()

	set, err := stages.Build(nil)
	if err != nil {
		t.Fatalf("failed to build stages: %v", err)
	}
	st, err := player.NewStages(stages.ScopeName, set)
	if err != nil {
		t.Fatalf("failed to create stages: %v", err)
	}

	d := &demo.Demo{
		Meta: demo.Metadata{SampleRate: 44100, PeakRMS: 1},
		Events: timeline.Sequence[timeline.Event]{
			{Time: 0.05, Value: timeline.NewTrigger(1)},
		},
	}
	audio := &mockAudio{}
	p := player.New(d, 0, audio, st)
	return NewModel(p, 50), p, audio
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModel(t *testing.T) {
	model, _, _ := newTestModel(t)

	if model.interval != 20*time.Millisecond {
		t.Errorf("expected 20ms frame interval, got %v", model.interval)
	}
	if model.quitting {
		t.Error("expected quitting to be false initially")
	}

	if got := NewModel(nil, 0).interval; got != time.Second/60 {
		t.Errorf("expected default 60fps interval, got %v", got)
	}
}

func TestSpacePlays(t *testing.T) {
	model, p, audio := newTestModel(t)

	model.Update(tea.KeyMsg{Type: tea.KeySpace})
	model.Update(runes(" "))

	if !p.Playing() {
		t.Error("expected player to be playing after space")
	}
	if audio.plays != 1 {
		t.Errorf("expected audio started once, got %d", audio.plays)
	}
}

func TestQuitKeys(t *testing.T) {
	for _, msg := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		model, _, _ := newTestModel(t)

		updated, cmd := model.Update(msg)
		if cmd == nil {
			t.Errorf("expected quit command for %q", msg.String())
		}
		if !updated.(Model).quitting {
			t.Errorf("expected quitting after %q", msg.String())
		}
		if !strings.Contains(updated.View(), "Stopping") {
			t.Errorf("expected stopping view after %q", msg.String())
		}
	}
}

func TestOtherKeysForwarded(t *testing.T) {
	model, p, _ := newTestModel(t)

	model.Update(tea.KeyMsg{Type: tea.KeyTab})
	model.Update(frameMsg(time.Now()))

	if p.Stage() != stages.FlashName {
		t.Errorf("expected tab to switch to %q, got %q", stages.FlashName, p.Stage())
	}
}

func TestFrameAdvancesClock(t *testing.T) {
	model, p, _ := newTestModel(t)
	p.Play()

	start := time.Now()
	updated, cmd := model.Update(frameMsg(start))
	if cmd == nil {
		t.Error("expected next frame to be scheduled")
	}
	if p.T() != 0 {
		t.Errorf("expected first frame to establish the clock, got t=%f", p.T())
	}

	model = updated.(Model)
	updated, _ = model.Update(frameMsg(start.Add(100 * time.Millisecond)))
	if math.Abs(float64(p.T())-0.1) > 1e-6 {
		t.Errorf("expected t=0.1, got %f", p.T())
	}

	// A stalled frame is capped
	model = updated.(Model)
	model.Update(frameMsg(start.Add(5 * time.Second)))
	if math.Abs(float64(p.T())-0.35) > 1e-6 {
		t.Errorf("expected t=0.35 after capped frame, got %f", p.T())
	}
	if !p.Done() {
		t.Error("expected the trigger to have been dispatched")
	}
}

func TestFramePausedKeepsClock(t *testing.T) {
	model, p, _ := newTestModel(t)

	start := time.Now()
	updated, _ := model.Update(frameMsg(start))
	updated.(Model).Update(frameMsg(start.Add(time.Second)))

	if p.T() != 0 {
		t.Errorf("expected paused clock at 0, got %f", p.T())
	}
}

func TestView(t *testing.T) {
	model, p, _ := newTestModel(t)

	view := model.View()
	for _, want := range []string{"Stage", "scope", "paused", "space: play"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q:\n%s", want, view)
		}
	}

	p.Play()
	if view := model.View(); !strings.Contains(view, "playing") {
		t.Errorf("expected playing state in view:\n%s", view)
	}
}
