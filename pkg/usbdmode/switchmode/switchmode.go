// Package switchmode implements the Switch Pro Controller usbd_mode,
// grounded on the teacher's original_source/src/usb/usbd/modes/switch_mode.c:
// a private, zeroed-and-centered report struct, IsReady backed by the USB
// stack's own tud_hid_ready() analogue, and a fixed-size SendReport.
package switchmode

import (
	"github.com/gopad-fw/joypad/pkg/gpevent"
	"github.com/gopad-fw/joypad/pkg/profile"
	"github.com/gopad-fw/joypad/pkg/usbdmode"
)

// ReportSize is the 8-byte Switch Pro input report: buttons(2) + hat(1) +
// lx,ly,rx,ry(4) + vendor(1).
const ReportSize = 8

// Switch button bit positions (spec.md §4.6 button convention: B1→B,
// B2→A, B3→Y, B4→X).
const (
	bitY uint16 = 1 << iota
	bitB
	bitA
	bitX
	bitL
	bitR
	bitZL
	bitZR
	bitMinus
	bitPlus
	bitLStick
	bitRStick
	bitHome
	bitCapture
)

// DeviceIdentity is one VID/PID/string-descriptor set a Switch mode can
// present. spec.md's Open Question notes the source has multiple
// divergent switch_descriptors.h copies (Pokken, HORIPAD S, genuine Pro
// Controller) with no single correct answer — so the choice is a
// constructor parameter, never hard-coded.
type DeviceIdentity struct {
	VendorID     uint16
	ProductID    uint16
	Manufacturer string
	Product      string
}

var (
	// IdentityGenuinePro is Nintendo's own VID/PID.
	IdentityGenuinePro = DeviceIdentity{VendorID: 0x057E, ProductID: 0x2009, Manufacturer: "Nintendo Co., Ltd.", Product: "Pro Controller"}
	// IdentityPokken mimics the Pokken Tournament DX Pro Pad, which some
	// hosts whitelist more readily than the genuine Pro Controller ID.
	IdentityPokken = DeviceIdentity{VendorID: 0x0F0D, ProductID: 0x0092, Manufacturer: "HORI CO.,LTD.", Product: "POKKEN CONTROLLER"}
	// IdentityHoripadS mimics the HORIPAD S.
	IdentityHoripadS = DeviceIdentity{VendorID: 0x0F0D, ProductID: 0x00C1, Manufacturer: "HORI CO.,LTD.", Product: "HORIPAD S"}
)

// Mode implements a Switch Pro Controller usbd_mode.
type Mode struct {
	identity DeviceIdentity
	report   [ReportSize]byte
	ready    func() bool
	// lastSent captures the most recently transmitted report for tests —
	// the Go analogue of intercepting tud_hid_report's argument.
	lastSent [ReportSize]byte
}

// New returns a Switch mode presenting identity, with readyFn as the
// ready-check (normally the USB stack's own tud_hid_ready; tests inject a
// fake).
func New(identity DeviceIdentity, readyFn func() bool) *Mode {
	m := &Mode{identity: identity, ready: readyFn}
	m.reset()
	return m
}

// Report layout: [buttons_lo, buttons_hi, hat, lx, ly, rx, ry, vendor].
func (m *Mode) reset() {
	for i := range m.report {
		m.report[i] = 0
	}
	m.report[2] = uint8(gpevent.HatCenter)
	m.report[3] = gpevent.AxisCenter // lx
	m.report[4] = gpevent.AxisCenter // ly
	m.report[5] = gpevent.AxisCenter // rx
	m.report[6] = gpevent.AxisCenter // ry
}

func (m *Mode) init() {
	m.reset()
}

func (m *Mode) isReady() bool {
	if m.ready == nil {
		return true
	}
	return m.ready()
}

// builtinRemap maps the firmware's abstract buttons to the Switch wire
// bits (spec.md §4.6).
var builtinRemap = func() [32]uint8 {
	var t [32]uint8
	for i := range t {
		t[i] = 0xFF
	}
	set := func(src gpevent.Button, dst uint8) {
		for i := 0; i < 32; i++ {
			if uint32(src) == 1<<uint(i) {
				t[i] = dst
				return
			}
		}
	}
	set(gpevent.ButtonB1, bitBIndex(bitB))
	set(gpevent.ButtonB2, bitBIndex(bitA))
	set(gpevent.ButtonB3, bitBIndex(bitY))
	set(gpevent.ButtonB4, bitBIndex(bitX))
	set(gpevent.ButtonL1, bitBIndex(bitL))
	set(gpevent.ButtonR1, bitBIndex(bitR))
	set(gpevent.ButtonL2, bitBIndex(bitZL))
	set(gpevent.ButtonR2, bitBIndex(bitZR))
	set(gpevent.ButtonS1, bitBIndex(bitMinus))
	set(gpevent.ButtonS2, bitBIndex(bitPlus))
	set(gpevent.ButtonL3, bitBIndex(bitLStick))
	set(gpevent.ButtonR3, bitBIndex(bitRStick))
	// The dpad moves to bits 16-19, above the two wire button bytes, in
	// gpevent's Up/Down/Left/Right order so sendReport can encode the hat.
	set(gpevent.ButtonDpadUp, 16)
	set(gpevent.ButtonDpadDown, 17)
	set(gpevent.ButtonDpadLeft, 18)
	set(gpevent.ButtonDpadRight, 19)
	return t
}()

func bitBIndex(bit uint16) uint8 {
	for i := 0; i < 16; i++ {
		if bit == 1<<uint(i) {
			return uint8(i)
		}
	}
	return 0xFF
}

// Builtin is this mode's fixed remap/profile convention.
var Builtin = &profile.BuiltIn{Name: "switch", Remap: builtinRemap}

func (m *Mode) sendReport(player int, event gpevent.InputEvent, out gpevent.ProfileOutput, buttons uint32) bool {
	if !m.isReady() {
		return false
	}

	var report [ReportSize]byte
	report[0] = uint8(buttons)
	report[1] = uint8(buttons >> 8)
	report[2] = uint8(gpevent.DpadToHat(buttons >> 16))
	report[3] = out.Analog[gpevent.AxisLX]
	report[4] = out.Analog[gpevent.AxisLY]
	report[5] = out.Analog[gpevent.AxisRX]
	report[6] = out.Analog[gpevent.AxisRY]
	report[7] = 0 // vendor

	m.report = report
	m.lastSent = report
	return true
}

// LastSent returns the most recently transmitted report, for tests.
func (m *Mode) LastSent() [ReportSize]byte {
	return m.lastSent
}

// Identity returns the device identity this mode presents.
func (m *Mode) Identity() DeviceIdentity {
	return m.identity
}

// NewUsbdMode wraps Mode as a usbdmode.Mode registry entry.
func NewUsbdMode(identity DeviceIdentity, readyFn func() bool) (*usbdmode.Mode, *Mode) {
	m := New(identity, readyFn)
	return &usbdmode.Mode{
		Name:       "switch",
		ID:         usbdmode.ModeSwitch,
		Init:       m.init,
		IsReady:    m.isReady,
		SendReport: m.sendReport,
		ReportSize: ReportSize,
		Builtin:    Builtin,
	}, m
}
