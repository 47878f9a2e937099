// Package gcadapter implements the GC Adapter vendor-class usbd_mode: the
// firmware presents itself as a 4-port GameCube USB adapter. The 37-byte
// packet shape (1 header byte + 9 bytes per port) is grounded on the
// buffer size the retrieval pack's Gurvan-go-gc-adapter host-side driver
// reads from a real adapter's IN endpoint.
package gcadapter

import (
	"github.com/gopad-fw/joypad/pkg/gpevent"
	"github.com/gopad-fw/joypad/pkg/profile"
	"github.com/gopad-fw/joypad/pkg/usbdmode"
)

// ReportSize is the combined 4-port packet: 1 header + 4*9 per-port bytes.
const ReportSize = 1 + 4*9

// GC wire button bit positions within a port's first status byte.
const (
	bitA uint8 = 1 << iota
	bitB
	bitX
	bitY
	bitStart
	_
	_
	_
)

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
	set(gpevent.ButtonB1, bitIndex(bitA))
	set(gpevent.ButtonB2, bitIndex(bitB))
	set(gpevent.ButtonB3, bitIndex(bitX))
	set(gpevent.ButtonB4, bitIndex(bitY))
	set(gpevent.ButtonS1, bitIndex(bitStart))
	return t
}()

func bitIndex(b uint8) uint8 {
	for i := 0; i < 8; i++ {
		if b == 1<<uint(i) {
			return uint8(i)
		}
	}
	return 0xFF
}

// Builtin is this mode's fixed remap/profile convention.
var Builtin = &profile.BuiltIn{Name: "gcadapter", Remap: builtinRemap}

// Mode implements the GC Adapter vendor-class usbd_mode. Each player
// occupies its own 9-byte slot within the shared 37-byte packet; ready
// players are written into lastSent in place so the next poll can read the
// combined state of all four ports.
type Mode struct {
	ready    func() bool
	lastSent [ReportSize]byte
}

// New returns a GC Adapter mode using readyFn as the ready check.
func New(readyFn func() bool) *Mode {
	return &Mode{ready: readyFn}
}

func (m *Mode) init() {
	// Byte 0 of each port status is "connected, normal" (0x14 in the real
	// protocol); left at 0 here since this mode emulates the adapter's
	// report channel, not the physical pairing handshake.
}

func (m *Mode) isReady() bool {
	if m.ready == nil {
		return true
	}
	return m.ready()
}

func (m *Mode) sendReport(player int, event gpevent.InputEvent, out gpevent.ProfileOutput, buttons uint32) bool {
	if !m.isReady() || player < 0 || player >= 4 {
		return false
	}

	off := 1 + player*9
	m.lastSent[off] = uint8(buttons)
	m.lastSent[off+1] = uint8(buttons >> 8)
	m.lastSent[off+2] = out.Analog[gpevent.AxisLX]
	m.lastSent[off+3] = out.Analog[gpevent.AxisLY]
	m.lastSent[off+4] = out.Analog[gpevent.AxisRX]
	m.lastSent[off+5] = out.Analog[gpevent.AxisRY]
	m.lastSent[off+6] = out.Analog[gpevent.AxisL2]
	m.lastSent[off+7] = out.Analog[gpevent.AxisR2]
	m.lastSent[off+8] = 0 // reserved

	return true
}

// LastSent returns the combined 4-port packet, for tests.
func (m *Mode) LastSent() [ReportSize]byte { return m.lastSent }

// vendorClassDriver is a placeholder handle standing in for the real
// vendor-class USB driver: this mode has no standard HID report descriptor,
// so the manager must not fall back to the built-in HID class driver
// (spec.md §4.6 "GC-adapter vendor class").
type vendorClassDriver struct{}

// NewUsbdMode wraps Mode as a usbdmode.Mode registry entry.
func NewUsbdMode(readyFn func() bool) (*usbdmode.Mode, *Mode) {
	m := New(readyFn)
	return &usbdmode.Mode{
		Name:           "gcadapter",
		ID:             usbdmode.ModeGCAdapter,
		Init:           m.init,
		IsReady:        m.isReady,
		SendReport:     m.sendReport,
		GetClassDriver: func() any { return vendorClassDriver{} },
		ReportSize:     ReportSize,
		Builtin:        Builtin,
	}, m
}
