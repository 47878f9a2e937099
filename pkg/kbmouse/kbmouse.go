// Package kbmouse translates abstract gamepad events into keyboard
// key-down/up events and a relative mouse report, for the Keyboard/Mouse
// usbd_mode. Key press/release tracking uses the teacher's
// pkg/keyboard.Keyboard interface; the mouse report layout is grounded on
// the retrieval pack's sanjay900-VIIPER mouse.InputState (buttons(1) +
// 4 signed 16-bit deltas, little-endian).
package kbmouse

import (
	tgk "machine/usb/hid/keyboard"

	"github.com/gopad-fw/joypad/pkg/gpevent"
	"github.com/gopad-fw/joypad/pkg/keyboard"
)

// MouseReportSize is the 9-byte relative mouse report: buttons(1) +
// dx,dy,wheel,pan (int16 each).
const MouseReportSize = 9

// mouse button bits, matching sanjay900-VIIPER's mouse.InputState layout.
const (
	mouseLeft uint8 = 1 << iota
	mouseRight
	mouseMiddle
)

// keymap is the fixed button-to-key convention for this mode: the dpad
// drives WASD, the four face buttons drive common binds, start/select map
// to Enter/Escape.
var keymap = map[gpevent.Button]tgk.Keycode{
	gpevent.ButtonDpadUp:    tgk.KeyW,
	gpevent.ButtonDpadDown:  tgk.KeyS,
	gpevent.ButtonDpadLeft:  tgk.KeyA,
	gpevent.ButtonDpadRight: tgk.KeyD,
	gpevent.ButtonB1:        tgk.KeySpace,
	gpevent.ButtonB2:        tgk.KeyLeftCtrl,
	gpevent.ButtonB3:        tgk.KeyE,
	gpevent.ButtonB4:        tgk.KeyQ,
	gpevent.ButtonS1:        tgk.KeyEscape,
	gpevent.ButtonS2:        tgk.KeyEnter,
}

// mouseSensitivity scales a centered stick axis (0..255, center 128) down
// to a per-tick pixel delta.
const mouseSensitivity = 16

// Translator drives a keyboard.Keyboard from successive profiled events and
// builds the companion mouse report from the right stick and triggers.
type Translator struct {
	kb     keyboard.Keyboard
	pressed map[gpevent.Button]bool
}

// New returns a Translator driving kb.
func New(kb keyboard.Keyboard) *Translator {
	return &Translator{kb: kb, pressed: make(map[gpevent.Button]bool, len(keymap))}
}

// ApplyKeys diffs out.Buttons against the previous call and issues Down/Up
// on kb for every mapped key whose state changed.
func (t *Translator) ApplyKeys(out gpevent.ProfileOutput) error {
	for btn, key := range keymap {
		down := out.Buttons&uint32(btn) != 0
		was := t.pressed[btn]
		if down == was {
			continue
		}
		t.pressed[btn] = down
		if down {
			if err := t.kb.Down(key); err != nil {
				return err
			}
		} else {
			if err := t.kb.Up(key); err != nil {
				return err
			}
		}
	}
	return nil
}

// BuildMouseReport converts the right stick into a relative mouse move and
// L2/R2 into left/right click, R3 into middle click.
func BuildMouseReport(out gpevent.ProfileOutput) [MouseReportSize]byte {
	var report [MouseReportSize]byte

	var buttons uint8
	if out.Analog[gpevent.AxisL2] > 0x7F {
		buttons |= mouseLeft
	}
	if out.Analog[gpevent.AxisR2] > 0x7F {
		buttons |= mouseRight
	}
	if out.Buttons&uint32(gpevent.ButtonR3) != 0 {
		buttons |= mouseMiddle
	}
	report[0] = buttons

	dx := deltaFromAxis(out.Analog[gpevent.AxisRX])
	dy := deltaFromAxis(out.Analog[gpevent.AxisRY])
	putInt16(report[1:3], dx)
	putInt16(report[3:5], dy)
	// Wheel/pan left at zero: no spec-defined analog source maps to them.
	return report
}

func deltaFromAxis(v uint8) int16 {
	centered := int(v) - gpevent.AxisCenter
	return int16(centered / mouseSensitivity)
}

func putInt16(dst []byte, v int16) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
}

// IdleMouseReport returns the zero-delta, no-buttons mouse report sent when
// no pending gamepad event exists but the mode must still keep the pointer
// channel alive (spec.md §8 property for Tick's KB/Mouse special case).
func IdleMouseReport() [MouseReportSize]byte {
	return [MouseReportSize]byte{}
}
