// Package profile implements the profile engine (spec.md §4.2): button
// remapping, per-stick sensitivity, stick swap and Y-axis inversion, combo
// detection, and hotkey profile switching. No deadzone and no stick or
// trigger calibration is applied. Apply is run once per pending event,
// producing the values actually sent on the wire.
package profile

import (
	"io"
	"math/bits"
	"time"

	"github.com/gopad-fw/joypad/pkg/flashstore"
	"github.com/gopad-fw/joypad/pkg/gpevent"
)

// BuiltIn is a fixed, target-specific remap table a mode supplies (spec.md
// §3 "profile": built-in runs first, custom composes on top).
type BuiltIn struct {
	Name string
	// Remap maps a source abstract Button bit index (0..31) to a
	// destination bit index, or 0xFF to pass through unmapped.
	Remap [32]uint8
}

// Clock abstracts time.Now() so combo dwell timing is deterministic in
// tests. RealClock uses the wall clock; tests inject a fake.
type Clock interface {
	Now() time.Duration
}

// RealClock implements Clock using the monotonic wall clock.
type RealClock struct{ start time.Time }

// NewRealClock returns a Clock anchored at the current time.
func NewRealClock() *RealClock { return &RealClock{start: time.Now()} }

// Now returns the elapsed time since the clock was created.
func (c *RealClock) Now() time.Duration { return time.Since(c.start) }

type comboState uint8

const (
	comboIdle comboState = iota
	comboArming
	comboFired
)

type comboTracker struct {
	state     comboState
	armedMask uint32
	armedAt   time.Duration
}

// Engine applies profiles to events and runs the per-player combo state
// machines.
type Engine struct {
	Clock Clock
	// Telemetry, if non-nil, receives a line of post-profile state for
	// configuration-console reflection (spec.md §4.2 step 4). Writes are
	// best-effort; errors are ignored, matching the firmware's "never
	// block the main loop" rule.
	Telemetry io.Writer

	trackers [gpevent.MaxPlayers][flashstore.MaxComboRules]comboTracker
	// switchRequests, when SwitchProfile fires, is set by Apply and read
	// back by the caller to perform the hotkey profile switch.
	switchRequests [gpevent.MaxPlayers]int
	switched       [gpevent.MaxPlayers]bool
}

// New returns an Engine using the real wall clock.
func New() *Engine {
	return &Engine{Clock: NewRealClock()}
}

// Apply runs the three-stage transform of spec.md §4.2: built-in remap (if
// supplied), then custom remap/sensitivity/flags (if slot is supplied),
// then motion/pressure passthrough. Combo rules in slot are evaluated
// against the player's persistent state machine. If a combo fires a
// profile switch, SwitchRequested(player) reports the requested index on
// the next call.
func (e *Engine) Apply(player int, builtin *BuiltIn, slot *flashstore.ProfileSlot, in gpevent.InputEvent) gpevent.ProfileOutput {
	out := gpevent.FromInput(in)

	if builtin != nil {
		out.Buttons = remapButtons(in.Buttons, &builtin.Remap)
	}

	if slot != nil {
		if builtin == nil {
			out.Buttons = remapButtons(in.Buttons, &slot.RemapTable)
		} else {
			out.Buttons = remapButtons(out.Buttons, &slot.RemapTable)
		}

		out.Analog[gpevent.AxisLX] = scaleAxis(in.Analog[gpevent.AxisLX], slot.SensitivityLeft)
		out.Analog[gpevent.AxisLY] = scaleAxis(in.Analog[gpevent.AxisLY], slot.SensitivityLeft)
		out.Analog[gpevent.AxisRX] = scaleAxis(in.Analog[gpevent.AxisRX], slot.SensitivityRight)
		out.Analog[gpevent.AxisRY] = scaleAxis(in.Analog[gpevent.AxisRY], slot.SensitivityRight)

		if slot.Flags&flashstore.FlagSwapSticks != 0 {
			out.Analog[gpevent.AxisLX], out.Analog[gpevent.AxisRX] = out.Analog[gpevent.AxisRX], out.Analog[gpevent.AxisLX]
			out.Analog[gpevent.AxisLY], out.Analog[gpevent.AxisRY] = out.Analog[gpevent.AxisRY], out.Analog[gpevent.AxisLY]
		}
		if slot.Flags&flashstore.FlagInvertLY != 0 {
			out.Analog[gpevent.AxisLY] = invertAxis(out.Analog[gpevent.AxisLY])
		}
		if slot.Flags&flashstore.FlagInvertRY != 0 {
			out.Analog[gpevent.AxisRY] = invertAxis(out.Analog[gpevent.AxisRY])
		}

		if player >= 0 && player < gpevent.MaxPlayers {
			e.runCombos(player, slot, out.Buttons)
		}
	}

	e.emitTelemetry(player, out)
	return out
}

// SwitchRequested reports whether a combo rule fired a profile switch for
// player since the last call, and clears the flag.
func (e *Engine) SwitchRequested(player int) (int, bool) {
	if player < 0 || player >= gpevent.MaxPlayers || !e.switched[player] {
		return 0, false
	}
	e.switched[player] = false
	return e.switchRequests[player], true
}

// runCombos advances the per-rule state machines for one player, applying
// the largest-mask (most buttons)/first-declared tie-break across rules
// that currently match. A profile-switch rule with HoldMs 0 uses a 2 s
// dwell.
func (e *Engine) runCombos(player int, slot *flashstore.ProfileSlot, buttons uint32) {
	now := e.Clock.Now()

	bestIdx := -1
	var bestMask uint32
	for i := 0; i < int(slot.RuleCount) && i < flashstore.MaxComboRules; i++ {
		rule := slot.Rules[i]
		if rule.Mask == 0 {
			continue
		}
		if buttons&rule.Mask != rule.Mask {
			continue
		}
		if bestIdx == -1 || bits.OnesCount32(rule.Mask) > bits.OnesCount32(bestMask) {
			bestIdx = i
			bestMask = rule.Mask
		}
	}

	for i := 0; i < int(slot.RuleCount) && i < flashstore.MaxComboRules; i++ {
		t := &e.trackers[player][i]
		if i != bestIdx {
			if t.state != comboIdle && buttons&slot.Rules[i].Mask != slot.Rules[i].Mask {
				t.state = comboIdle
			}
			continue
		}

		rule := slot.Rules[i]
		switch t.state {
		case comboIdle:
			t.state = comboArming
			t.armedMask = rule.Mask
			t.armedAt = now
		case comboArming:
			hold := time.Duration(rule.HoldMs) * time.Millisecond
			if hold == 0 && rule.ActionKind == flashstore.ComboActionSwitchProfile {
				hold = 2 * time.Second
			}
			if now-t.armedAt >= hold {
				t.state = comboFired
				e.fireCombo(player, rule)
			}
		case comboFired:
			// Held past firing; wait for release.
		}
	}

	// Release: any tracker whose rule mask no longer fully matches resets
	// to idle.
	for i := 0; i < int(slot.RuleCount) && i < flashstore.MaxComboRules; i++ {
		t := &e.trackers[player][i]
		rule := slot.Rules[i]
		if t.state == comboFired && buttons&rule.Mask != rule.Mask {
			t.state = comboIdle
		}
	}
}

func (e *Engine) fireCombo(player int, rule flashstore.ComboRule) {
	switch rule.ActionKind {
	case flashstore.ComboActionSwitchProfile:
		e.switchRequests[player] = int(rule.ActionProfile)
		e.switched[player] = true
	case flashstore.ComboActionSynthesizeButton:
		// No action is taken for this kind: ActionButton is not added to
		// any output and nothing is written to telemetry.
	}
}

func (e *Engine) emitTelemetry(player int, out gpevent.ProfileOutput) {
	if e.Telemetry == nil {
		return
	}
	io.WriteString(e.Telemetry, telemetryLine(player, out))
}

func telemetryLine(player int, out gpevent.ProfileOutput) string {
	const hexDigits = "0123456789abcdef"
	buf := make([]byte, 0, 32)
	buf = append(buf, 'p')
	buf = append(buf, byte('0'+player))
	buf = append(buf, ' ', 'b', '=', '0', 'x')
	for shift := 28; shift >= 0; shift -= 4 {
		buf = append(buf, hexDigits[(out.Buttons>>uint(shift))&0xF])
	}
	buf = append(buf, '\n')
	return string(buf)
}

func remapButtons(src uint32, table *[32]uint8) uint32 {
	var out uint32
	for bit := 0; bit < 32; bit++ {
		if src&(1<<uint(bit)) == 0 {
			continue
		}
		dst := table[bit]
		if dst == 0xFF {
			out |= 1 << uint(bit)
		} else {
			out |= 1 << uint(dst)
		}
	}
	return out
}

// scaleAxis scales value around center 128 by sens percent, saturating to
// 0..=255.
func scaleAxis(value uint8, sens uint8) uint8 {
	if sens == 100 {
		return value
	}
	delta := int(value) - gpevent.AxisCenter
	scaled := delta * int(sens) / 100
	result := gpevent.AxisCenter + scaled
	if result < 0 {
		result = 0
	}
	if result > 255 {
		result = 255
	}
	return uint8(result)
}

// invertAxis flips an axis across the full 0..=255 range (255 - value),
// matching spec.md §8 S4: LY=0x20 inverted yields 0xDF.
func invertAxis(value uint8) uint8 {
	return 255 - value
}
