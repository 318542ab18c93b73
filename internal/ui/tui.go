// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the demo player
package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ms7-demo/demo-go/pkg/player"
)

// Run shows the player full screen until the user quits
func Run(p *player.Player, fps int) error {
	prog := tea.NewProgram(NewModel(p, fps), tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("failed to run tui: %w", err)
	}
	return nil
}
