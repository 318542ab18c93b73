// ABOUTME: Player package for demo playback scheduling
// ABOUTME: Master clock, event dispatch and the stage state machine
// Package player drives stages from a compiled demo.
//
// Each frame the caller invokes Update with the elapsed time. While playing,
// the clock advances, the loudness envelope is sampled and every event that
// became due is delivered to the current stage in timestamp order. Stages
// switch with Go; a switch takes effect as soon as the current event or
// update returns, so the next event already reaches the new stage.
//
// Example:
//
//	stages, err := player.NewStages("intro", map[string]player.Stage{
//	    "intro": intro,
//	    "main":  main,
//	})
//	p := player.New(d, 0, engine, stages)
//	p.Play()
//	for range ticker.C {
//	    p.Update(1.0 / 60)
//	}
package player
