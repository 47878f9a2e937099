// Package kbmouse implements the Keyboard/Mouse usbd_mode: gamepad buttons
// become key down/up events, the right stick and trigger pair become a
// relative mouse report. This is the one mode with an idle mouse report
// (IdleMouseReport) that usbdmode.Manager.Tick can emit with no pending
// gamepad event (spec.md §4.6).
package kbmouse

import (
	"github.com/gopad-fw/joypad/pkg/gpevent"
	pkgkbmouse "github.com/gopad-fw/joypad/pkg/kbmouse"
	"github.com/gopad-fw/joypad/pkg/keyboard"
	"github.com/gopad-fw/joypad/pkg/profile"
	"github.com/gopad-fw/joypad/pkg/usbdmode"
)

// ReportSize is the mouse report's wire size; key events go out over the
// keyboard's own HID endpoint and carry no player-indexed report here.
const ReportSize = pkgkbmouse.MouseReportSize

var identityRemap = func() [32]uint8 {
	var t [32]uint8
	for i := range t {
		t[i] = 0xFF
	}
	return t
}()

// Builtin: key/mouse bindings are fixed by kbmouse.Translator's keymap, not
// a per-wire-bit remap, so the builtin table is identity.
var Builtin = &profile.BuiltIn{Name: "kbmouse", Remap: identityRemap}

// Mode implements the Keyboard/Mouse usbd_mode.
type Mode struct {
	translator *pkgkbmouse.Translator
	ready      func() bool
	lastSent   [ReportSize]byte
}

// New returns a Keyboard/Mouse mode driving kb, using readyFn as the ready
// check for the mouse HID endpoint.
func New(kb keyboard.Keyboard, readyFn func() bool) *Mode {
	return &Mode{translator: pkgkbmouse.New(kb), ready: readyFn}
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
	// Only player 0 drives the shared keyboard/mouse; other players have
	// no distinct key/pointer channel to target.
	if player != 0 {
		return true
	}
	if err := m.translator.ApplyKeys(out); err != nil {
		return false
	}
	m.lastSent = pkgkbmouse.BuildMouseReport(out)
	return true
}

// IdleMouseReport sends the zero-delta mouse report. usbdmode.Manager.Tick
// calls it under this mode when it is passed as Tick's idleMouseReport
// argument and no pending event was sent; app.DefaultApp passes nil, so
// the reference wiring emits no idle reports.
func (m *Mode) IdleMouseReport() {
	if !m.isReady() {
		return
	}
	m.lastSent = pkgkbmouse.IdleMouseReport()
}

// LastSent returns the most recently built mouse report, for tests.
func (m *Mode) LastSent() [ReportSize]byte { return m.lastSent }

// NewUsbdMode wraps Mode as a usbdmode.Mode registry entry.
func NewUsbdMode(kb keyboard.Keyboard, readyFn func() bool) (*usbdmode.Mode, *Mode) {
	m := New(kb, readyFn)
	return &usbdmode.Mode{
		Name:       "kbmouse",
		ID:         usbdmode.ModeKeyboardMouse,
		Init:       m.init,
		IsReady:    m.isReady,
		SendReport: m.sendReport,
		ReportSize: ReportSize,
		Builtin:    Builtin,
	}, m
}
