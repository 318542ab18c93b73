// ABOUTME: Built-in terminal stages for the demo player
// ABOUTME: Builds the stage table and routes program changes to stages
package stages

import (
	"fmt"
	"sort"

	"github.com/ms7-demo/demo-go/pkg/player"
	"github.com/ms7-demo/demo-go/pkg/timeline"
)

// Stage names
const (
	ScopeName = "scope"
	FlashName = "flash"
)

// Programs maps a MIDI program number to the stage it switches to
type Programs map[uint8]string

// route switches stage when ev is a program change with a known target
func (pr Programs) route(p *player.Player, ev timeline.Event) bool {
	if ev.Kind != timeline.Program {
		return false
	}
	name, ok := pr[ev.ID]
	if !ok || name == p.Stage() {
		return false
	}
	p.Go(name)
	return true
}

// Build returns the built-in stages keyed by name. Every program target must
// name one of them.
func Build(programs Programs) (map[string]player.Stage, error) {
	set := map[string]player.Stage{
		ScopeName: NewScope(programs),
		FlashName: NewFlash(programs),
	}

	ids := make([]int, 0, len(programs))
	for id := range programs {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	for _, id := range ids {
		name := programs[uint8(id)]
		if _, ok := set[name]; !ok {
			return nil, fmt.Errorf("program %d targets unknown stage %q", id, name)
		}
	}

	return set, nil
}

// Names returns the built-in stage names
func Names() []string {
	return []string{FlashName, ScopeName}
}
