// ABOUTME: Bubbletea model for the demo player TUI
// ABOUTME: Drives the player clock from frame ticks and renders the current stage
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ms7-demo/demo-go/internal/version"
	"github.com/ms7-demo/demo-go/pkg/player"
)

// maxStep caps a single frame so a stalled terminal does not skip the
// timeline ahead in one jump
const maxStep = 0.25

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	helpStyle = lipgloss.NewStyle().Faint(true)
)

// frameMsg is sent once per frame
type frameMsg time.Time

// Model represents the TUI state
type Model struct {
	player   *player.Player
	interval time.Duration
	last     time.Time
	quitting bool

	// Dimensions
	width  int
	height int
}

// NewModel creates a model updating p at fps frames per second
func NewModel(p *player.Player, fps int) Model {
	if fps <= 0 {
		fps = 60
	}
	return Model{
		player:   p,
		interval: time.Second / time.Duration(fps),
	}
}

// Init starts the frame clock
func (m Model) Init() tea.Cmd {
	return m.nextFrame()
}

func (m Model) nextFrame() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case frameMsg:
		m.frame(time.Time(msg))
		return m, m.nextFrame()
	}

	return m, nil
}

// frame advances the player by the wall time since the previous frame
func (m *Model) frame(now time.Time) {
	var dt float64
	if !m.last.IsZero() {
		dt = min(now.Sub(m.last).Seconds(), maxStep)
		if dt < 0 {
			dt = 0
		}
	}
	m.last = now
	m.player.Update(float32(dt))
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case " ", "space":
		m.player.Play()
	default:
		// Terminals only report presses
		m.player.Key(player.KeyPressed, key)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Stopping demo...\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(version.String()))
	b.WriteString("\n\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n\n")

	m.player.Render(&b)

	b.WriteString("\n")
	if m.player.Playing() {
		b.WriteString(helpStyle.Render("q: quit  tab: next stage"))
	} else {
		b.WriteString(helpStyle.Render("space: play  q: quit  tab: next stage"))
	}

	return b.String()
}

// renderStatus renders stage, clock and playback state
func (m Model) renderStatus() string {
	state := "paused"
	if m.player.Playing() {
		state = "playing"
		if m.player.Done() {
			state = "playing (timeline finished)"
		}
	}

	return headerStyle.Render("Stage: ") + valueStyle.Render(m.player.Stage()) + "  " +
		headerStyle.Render("Time: ") + valueStyle.Render(fmt.Sprintf("%.2fs", m.player.T())) + "  " +
		headerStyle.Render("State: ") + valueStyle.Render(state)
}
