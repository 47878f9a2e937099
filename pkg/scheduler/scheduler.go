// Package scheduler runs the fixed main-loop order spec.md §4.10/§5
// requires: leds, players, storage, every output's Task, the app's Task,
// then every input's Task. It is the Go generalization of the teacher's
// core0_main first_loop one-shot printf trace, turned into an injectable
// TraceHook so tests can assert the ordering (spec.md §8 property 6)
// instead of reading console output.
package scheduler

import (
	"github.com/gopad-fw/joypad/pkg/feedback"
	"github.com/gopad-fw/joypad/pkg/flashstore"
	"github.com/gopad-fw/joypad/pkg/iface"
	"github.com/gopad-fw/joypad/pkg/ledsvc"
	"github.com/gopad-fw/joypad/pkg/players"
)

// App is the single application task run once per tick, after every
// output and before every input (spec.md §6).
type App interface {
	Task()
}

// TraceHook is called with a stage name before that stage runs. Stage
// names for outputs/inputs are "output:<Name>"/"input:<Name>"; fixed
// stages are "leds", "players", "storage", "app".
type TraceHook func(stage string)

// Scheduler owns every stage of one tick. Any field may be nil/empty to
// omit that stage (a headless test harness with no real outputs, for
// instance); the fixed order is preserved regardless of which stages are
// populated.
type Scheduler struct {
	LEDs     *ledsvc.Service
	Players  *players.Manager
	Storage  *flashstore.Store
	Feedback *feedback.Plane
	Outputs  []iface.Output
	App      App
	Inputs   []iface.Input

	// ActiveOutput returns the currently selected output (the usbd mode
	// manager's current mode's Output record), used by the leds/players
	// and feedback stages. May be nil if no output is active yet.
	ActiveOutput func() *iface.Output

	Trace TraceHook
}

// New returns a Scheduler; all fields may also be set directly as a
// struct literal since most callers need every field populated anyway.
func New() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) trace(stage string) {
	if s.Trace != nil {
		s.Trace(stage)
	}
}

// activeOutput evaluates ActiveOutput defensively; a nil hook means "no
// active output yet", not a programming error (spec.md §7, boot before
// usbdmode.Manager.Init completes).
func (s *Scheduler) activeOutput() *iface.Output {
	if s.ActiveOutput == nil {
		return nil
	}
	return s.ActiveOutput()
}

// Tick runs one full iteration in the fixed order: leds, players,
// storage, outputs, app, inputs. Flash persistence itself is synchronous
// (flashstore.Store.SaveNow, always called from usbdmode.Manager.SetMode
// or the protocol handler, never from here) — the "storage" stage exists
// so its position in the fixed order is traceable and testable even
// though this tick performs no write of its own.
func (s *Scheduler) Tick() {
	s.trace("leds")

	active := s.activeOutput()

	s.trace("players")
	if s.Players != nil {
		s.Players.Task(active)
	}

	s.trace("storage")

	for i := range s.Outputs {
		out := &s.Outputs[i]
		s.trace("output:" + out.Name)
		if out.Task != nil {
			out.Task()
		}
	}

	s.trace("app")
	if s.App != nil {
		s.App.Task()
	}

	for i := range s.Inputs {
		in := &s.Inputs[i]
		s.trace("input:" + in.Name)
		if in.Task != nil {
			in.Task()
		}
	}

	if s.Feedback != nil {
		s.Feedback.Tick(active, s.Inputs, s.LEDs)
	}
}

// RunForever ticks in a tight loop forever. Real firmware relies on the
// board's own timing (USB interrupt pacing, boardcfg.AppPollIntervalMS's
// conceptual budget); this loop never sleeps itself, matching the
// teacher's own core0_main which re-enters immediately.
func (s *Scheduler) RunForever() {
	for {
		s.Tick()
	}
}
