// Package feedback implements the output-to-input feedback plane (spec.md
// §4.8, C8): a pull, never a push. Once per tick it reads the active
// output's rumble/LED state and, only when the output reports it dirty,
// fans it out to every input's optional ApplyFeedback and the LED service.
package feedback

import (
	"image/color"

	"github.com/gopad-fw/joypad/pkg/gpevent"
	"github.com/gopad-fw/joypad/pkg/iface"
	"github.com/gopad-fw/joypad/pkg/ledsvc"
)

// Plane is stateless between ticks; all state it reads and writes lives in
// the output, inputs, and LED service passed to Tick.
type Plane struct{}

// New returns a feedback plane.
func New() *Plane { return &Plane{} }

// Tick reads active's feedback (preferring the richer GetFeedback over the
// scalar GetRumble fallback, spec.md §4.8) and, if dirty, applies it to
// every input that has ApplyFeedback wired and updates leds' per-player
// color. active, inputs, and leds may all be nil/empty; a missing
// capability is simply skipped (spec.md §7).
func (p *Plane) Tick(active *iface.Output, inputs []iface.Input, leds *ledsvc.Service) {
	if active == nil {
		return
	}

	fb, ok := readFeedback(active)
	if !ok || !fb.Dirty {
		return
	}

	for _, in := range inputs {
		if in.ApplyFeedback != nil {
			in.ApplyFeedback(fb)
		}
	}

	if leds != nil {
		leds.SetPlayerColor(int(fb.LEDPlayer), color.RGBA{R: fb.LEDR, G: fb.LEDG, B: fb.LEDB, A: 255})
	}
}

// readFeedback prefers active.GetFeedback; when that capability is absent
// it falls back to the scalar GetRumble, synthesizing a feedback struct
// with both rumble channels set identically and Dirty always true (the
// scalar path has no dirty-tracking of its own, spec.md §4.8).
func readFeedback(active *iface.Output) (gpevent.OutputFeedback, bool) {
	if active.GetFeedback != nil {
		return active.GetFeedback()
	}
	if active.GetRumble != nil {
		if r, ok := active.GetRumble(); ok {
			return gpevent.OutputFeedback{RumbleLeft: r, RumbleRight: r, Dirty: true}, true
		}
	}
	return gpevent.OutputFeedback{}, false
}
