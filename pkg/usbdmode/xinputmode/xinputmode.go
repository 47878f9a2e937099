// Package xinputmode implements the XInput (Xbox 360) usbd_mode. Unlike
// the HID-style modes, XInput keeps the dpad as four discrete bits rather
// than encoding it to a hat byte (spec.md §4.6).
package xinputmode

import (
	"github.com/gopad-fw/joypad/pkg/gpevent"
	"github.com/gopad-fw/joypad/pkg/profile"
	"github.com/gopad-fw/joypad/pkg/usbdmode"
)

// ReportSize is the 20-byte XUSB_REPORT: reportID, length, buttons(2),
// triggers(2), sticks(8), reserved(6).
const ReportSize = 20

// XInput wire button bit positions (360 layout).
const (
	bitDpadUp uint16 = 1 << iota
	bitDpadDown
	bitDpadLeft
	bitDpadRight
	bitStart
	bitBack
	bitLThumb
	bitRThumb
	bitLB
	bitRB
	_reservedGuide
	_reservedUnused
	bitA
	bitB
	bitX
	bitY
)

var builtinRemap = func() [32]uint8 {
	var t [32]uint8
	for i := range t {
		t[i] = 0xFF
	}
	set := func(src gpevent.Button, dst uint16) {
		idx := bitPos(src)
		if idx >= 0 {
			t[idx] = uint8(bitPos16(dst))
		}
	}
	set(gpevent.ButtonB1, bitB)
	set(gpevent.ButtonB2, bitA)
	set(gpevent.ButtonB3, bitY)
	set(gpevent.ButtonB4, bitX)
	set(gpevent.ButtonL1, bitLB)
	set(gpevent.ButtonR1, bitRB)
	set(gpevent.ButtonS1, bitBack)
	set(gpevent.ButtonS2, bitStart)
	set(gpevent.ButtonL3, bitLThumb)
	set(gpevent.ButtonR3, bitRThumb)
	set(gpevent.ButtonDpadUp, bitDpadUp)
	set(gpevent.ButtonDpadDown, bitDpadDown)
	set(gpevent.ButtonDpadLeft, bitDpadLeft)
	set(gpevent.ButtonDpadRight, bitDpadRight)
	return t
}()

func bitPos(b gpevent.Button) int {
	for i := 0; i < 32; i++ {
		if uint32(b) == 1<<uint(i) {
			return i
		}
	}
	return -1
}

func bitPos16(b uint16) int {
	for i := 0; i < 16; i++ {
		if b == 1<<uint(i) {
			return i
		}
	}
	return -1
}

// Builtin is this mode's fixed remap/profile convention.
var Builtin = &profile.BuiltIn{Name: "xinput", Remap: builtinRemap}

// Mode implements the XInput usbd_mode.
type Mode struct {
	ready    func() bool
	lastSent [ReportSize]byte
}

// New returns an XInput mode using readyFn as the ready check.
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
	report[0] = 0x00 // report id
	report[1] = ReportSize
	report[2] = uint8(buttons)
	report[3] = uint8(buttons >> 8)
	report[4] = toSigned(out.Analog[gpevent.AxisL2])
	report[5] = toSigned(out.Analog[gpevent.AxisR2])
	putInt16(report[6:8], out.Analog[gpevent.AxisLX])
	putInt16(report[8:10], out.Analog[gpevent.AxisLY])
	putInt16(report[10:12], out.Analog[gpevent.AxisRX])
	putInt16(report[12:14], out.Analog[gpevent.AxisRY])

	m.lastSent = report
	return true
}

// toSigned passes a trigger axis through unchanged; XInput triggers are
// unsigned bytes, matching the firmware's own 0..=255 convention.
func toSigned(v uint8) uint8 { return v }

func putInt16(dst []byte, v uint8) {
	// Convert the firmware's unsigned 0..255 (center 128) axis into
	// XInput's signed 16-bit range, centered at 0.
	signed := int16(v) - 128
	scaled := int32(signed) * 257
	if scaled < -32768 {
		scaled = -32768
	}
	dst[0] = uint8(scaled)
	dst[1] = uint8(scaled >> 8)
}

// LastSent returns the most recently transmitted report, for tests.
func (m *Mode) LastSent() [ReportSize]byte { return m.lastSent }

// NewUsbdMode wraps Mode as a usbdmode.Mode registry entry.
func NewUsbdMode(readyFn func() bool) (*usbdmode.Mode, *Mode) {
	m := New(readyFn)
	return &usbdmode.Mode{
		Name:       "xinput",
		ID:         usbdmode.ModeXInput,
		Init:       m.init,
		IsReady:    m.isReady,
		SendReport: m.sendReport,
		ReportSize: ReportSize,
		Builtin:    Builtin,
	}, m
}
