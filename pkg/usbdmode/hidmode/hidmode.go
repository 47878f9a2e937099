// Package hidmode implements the generic HID DInput usbd_mode, grounded on
// the teacher's pkg/gamepad report shape (16 buttons + 4 axes) with
// its own button layout (no remap to a named console's convention).
package hidmode

import (
	"github.com/gopad-fw/joypad/pkg/gpevent"
	"github.com/gopad-fw/joypad/pkg/profile"
	"github.com/gopad-fw/joypad/pkg/usbdmode"
)

// ReportSize: buttons(2) + 4 unsigned axes(4, 0..255 with center 128) =
// 6 bytes, following the
// teacher's pkg/gamepad report layout minus its leading report-id byte
// (DInput here has no composite report id to multiplex).
const ReportSize = 6

var identityRemap = func() [32]uint8 {
	var t [32]uint8
	for i := range t {
		t[i] = 0xFF
	}
	return t
}()

// Builtin is the identity convention: DInput has no named button layout to
// convert to, so the abstract ids pass straight through.
var Builtin = &profile.BuiltIn{Name: "hid", Remap: identityRemap}

// Mode implements the generic HID DInput usbd_mode.
type Mode struct {
	ready    func() bool
	lastSent [ReportSize]byte
}

// New returns a HID DInput mode using readyFn as the ready check.
func New(readyFn func() bool) *Mode {
	return &Mode{ready: readyFn}
}

func (m *Mode) init() {}

func (m *Mode) isReady() bool {
	if m.ready == nil {
		return true
	}
	return m.ready()
}

func (m *Mode) sendReport(player int, event gpevent.InputEvent, out gpevent.ProfileOutput, buttons uint32) bool {
	if !m.isReady() {
		return false
	}
	var report [ReportSize]byte
	report[0] = uint8(buttons)
	report[1] = uint8(buttons >> 8)
	report[2] = toAxis(out.Analog[gpevent.AxisLX])
	report[3] = toAxis(out.Analog[gpevent.AxisLY])
	report[4] = toAxis(out.Analog[gpevent.AxisRX])
	report[5] = toAxis(out.Analog[gpevent.AxisRY])
	m.lastSent = report
	return true
}

func toAxis(v uint8) byte { return v }

// LastSent returns the most recently transmitted report, for tests.
func (m *Mode) LastSent() [ReportSize]byte { return m.lastSent }

// NewUsbdMode wraps Mode as a usbdmode.Mode registry entry.
func NewUsbdMode(readyFn func() bool) (*usbdmode.Mode, *Mode) {
	m := New(readyFn)
	return &usbdmode.Mode{
		Name:       "hid",
		ID:         usbdmode.ModeHID,
		Init:       m.init,
		IsReady:    m.isReady,
		SendReport: m.sendReport,
		ReportSize: ReportSize,
		Builtin:    Builtin,
	}, m
}
