// Package usbdmode implements the USB-device mode manager (spec.md §4.6):
// a fixed mode registry, descriptor/class-driver dispatch to whichever
// mode is currently active, a per-player latest-wins pending-event queue,
// and the persist-then-reboot mode-change protocol. It is the Go
// translation of the teacher's usb/usbd/usbd.c function-pointer dispatch
// table, generalized from one hard-coded mode list to the full registry
// spec.md enumerates.
package usbdmode

import (
	"errors"

	"github.com/gopad-fw/joypad/pkg/flashstore"
	"github.com/gopad-fw/joypad/pkg/gpevent"
	"github.com/gopad-fw/joypad/pkg/profile"
)

// ModeID identifies one of the eleven wire identities spec.md §4.6
// enumerates.
type ModeID uint8

const (
	ModeHID ModeID = iota
	ModeXboxOriginal
	ModeXInput
	ModePS3
	ModePS4
	ModeSwitch
	ModePSClassic
	ModeXboxOne
	ModeXAC
	ModeKeyboardMouse
	ModeGCAdapter
	modeCount
)

// ModeCount is the size of the fixed mode registry.
const ModeCount = int(modeCount)

// DeviceDescriptor, ConfigDescriptor, and the report/class-driver members
// below are raw byte slices / handles a concrete mode supplies; usbdmode
// never interprets their contents, only dispatches to them.

// Mode is the capability set a USB-device mode must expose (spec.md §3
// usbd_mode). Every member beyond Name/ID/Init/IsReady/SendReport is
// optional: a nil function means that capability is silently absent for
// this mode, never an error (spec.md §7).
type Mode struct {
	Name string
	ID   ModeID

	GetDeviceDescriptor func() []byte
	GetConfigDescriptor func() []byte
	// GetReportDescriptor may be nil; the manager substitutes a generic
	// HID report descriptor when it is.
	GetReportDescriptor func() []byte
	// GetClassDriver may be nil; the manager then uses the built-in HID
	// class driver. Non-nil substitutes (XInput, Xbox OG XID, Xbox One
	// GIP, GC-adapter vendor class).
	GetClassDriver func() any

	Init    func()
	Task    func()
	IsReady func() bool

	// SendReport builds and transmits one wire report for player from the
	// profiled event. It returns false if the report could not be sent
	// (e.g. endpoint busy) — the caller keeps the pending event for the
	// next tick (spec.md §7).
	SendReport func(player int, event gpevent.InputEvent, profileOut gpevent.ProfileOutput, buttons uint32) bool

	HandleOutputReport func(reportID uint8, buf []byte)
	GetReport          func(id uint8, reportType uint8, buf []byte, reqLen int) int

	GetRumble   func() (uint8, bool)
	GetFeedback func() (gpevent.OutputFeedback, bool)

	// ReportSize is this mode's declared wire-report size in bytes, used
	// by tests asserting spec.md §8 property 1.
	ReportSize int

	// Builtin is this mode's fixed remap/profile conventions (spec.md §3
	// "profile": built-in runs first).
	Builtin *profile.BuiltIn
}

type pendingSlot struct {
	event gpevent.InputEvent
	valid bool
}

// PumpFunc drives the external USB-device stack for one tick (tud_task()
// in the teacher's C, injected here since this module never talks to
// hardware directly).
type PumpFunc func()

// Manager owns the mode registry, the active mode, and the per-player
// pending-event queue.
type Manager struct {
	registry [ModeCount]*Mode
	current  *Mode

	pending [gpevent.MaxPlayers]pendingSlot

	engine *profile.Engine
	pump   PumpFunc

	store *flashstore.Store
	// watchdogReset, if set, is invoked by SetMode after a successful
	// persist+verify to arm the ~100ms watchdog and trigger the reset
	// that re-enters main with the new mode (spec.md §4.6, §4.1).
	watchdogReset func()

	// lockout wraps every SaveNow with Core 1 parked (corebus.Bus.FlashLockout),
	// per spec.md Purpose/Scope: Core 1 always participates in the
	// flash-write lockout protocol. Nil runs the write unwrapped, for
	// tests that have no Bus.
	lockout func(func() error) error
}

// ErrUnsupportedMode is returned by SetMode for an id outside ModeCount.
var ErrUnsupportedMode = errors.New("usbdmode: unsupported mode id")

// ErrVerifyFailed is returned by SetMode when the post-save read-back
// doesn't match what was written.
var ErrVerifyFailed = errors.New("usbdmode: flash verify failed after save")

// NewManager builds a manager around engine (used to profile pending
// events before handing them to the active mode) and pump (the external
// USB-stack driver).
func NewManager(engine *profile.Engine, pump PumpFunc) *Manager {
	return &Manager{engine: engine, pump: pump}
}

// Register installs mode into the fixed-size registry at its own ID. Modes
// are registered once at startup and never changed thereafter.
func (m *Manager) Register(mode *Mode) {
	if mode == nil || int(mode.ID) < 0 || int(mode.ID) >= ModeCount {
		return
	}
	m.registry[mode.ID] = mode
}

// Init sets the active mode from persisted state, falling back to
// ModeHID if the persisted id is unregistered (spec.md §7, §8 property 4).
func (m *Manager) Init(store *flashstore.Store, persisted ModeID) {
	m.store = store

	id := persisted
	if int(id) < 0 || int(id) >= ModeCount || m.registry[id] == nil {
		id = ModeHID
	}
	m.current = m.registry[id]
	if m.current != nil && m.current.Init != nil {
		m.current.Init()
	}
}

// SetWatchdogReset installs the callback used by SetMode to arm the reset
// that re-enters main after a mode change.
func (m *Manager) SetWatchdogReset(fn func()) {
	m.watchdogReset = fn
}

// SetFlashLockout installs the flash-write lockout hook (corebus.Bus.FlashLockout)
// every SaveNow must run through.
func (m *Manager) SetFlashLockout(lockout func(func() error) error) {
	m.lockout = lockout
}

// saveNow persists record, under the flash lockout when one is installed.
func (m *Manager) saveNow(record flashstore.Record) error {
	if m.lockout != nil {
		return m.lockout(func() error { return m.store.SaveNow(record) })
	}
	return m.store.SaveNow(record)
}

// Current returns the active mode (never nil after Init).
func (m *Manager) Current() *Mode {
	return m.current
}

// EnqueuePlayerEvent implements the router tap the manager must register
// for OUTPUT_TARGET_USB_DEVICE before routing is live (spec.md Open
// Question: a never-wired placeholder tap is a bug, not a feature). Writes
// overwrite: the queue is latest-wins, depth 1 per player.
func (m *Manager) EnqueuePlayerEvent(player int, event gpevent.InputEvent) {
	if player < 0 || player >= gpevent.MaxPlayers {
		return
	}
	m.pending[player] = pendingSlot{event: event, valid: true}
}

// Tick runs one iteration of the four-step per-tick task (spec.md §4.6):
// pump the external stack, run the mode's own Task, then for every
// player with a valid pending event under a ready mode, apply the profile
// engine and call SendReport. Under ModeKeyboardMouse, idleMouseReport
// (if non-nil) is invoked on every ready tick in which no pending event
// was sent, so continuous pointer movement keeps flowing.
func (m *Manager) Tick(builtinFor func(ModeID) *profile.BuiltIn, slotFor func(player int) *flashstore.ProfileSlot, idleMouseReport func()) {
	if m.pump != nil {
		m.pump()
	}
	if m.current == nil {
		return
	}
	if m.current.Task != nil {
		m.current.Task()
	}

	ready := m.current.IsReady == nil || m.current.IsReady()
	if !ready {
		return
	}

	sentAny := false
	for player := 0; player < gpevent.MaxPlayers; player++ {
		slot := &m.pending[player]
		if !slot.valid {
			continue
		}
		if m.current.SendReport == nil {
			continue
		}

		var builtin *profile.BuiltIn
		if builtinFor != nil {
			builtin = builtinFor(m.current.ID)
		}
		var ps *flashstore.ProfileSlot
		if slotFor != nil {
			ps = slotFor(player)
		}

		out := m.engine.Apply(player, builtin, ps, slot.event)
		ok := m.current.SendReport(player, slot.event, out, out.Buttons)
		if ok {
			slot.valid = false
			sentAny = true
		}
		// If SendReport returns false (not ready), the pending event is
		// kept for the next tick (spec.md §7).
	}

	if m.current.ID == ModeKeyboardMouse && !sentAny && idleMouseReport != nil {
		idleMouseReport()
	}
}

// SetMode implements the mode-change protocol (spec.md §4.6): validate,
// persist, verify, then arm the watchdog reset. It aborts without
// resetting on any failure so the old mode keeps working (spec.md §7).
func (m *Manager) SetMode(id ModeID, record flashstore.Record) error {
	if int(id) < 0 || int(id) >= ModeCount || m.registry[id] == nil {
		return ErrUnsupportedMode
	}

	record.USBOutputMode = uint8(id)
	if err := m.saveNow(record); err != nil {
		return err
	}

	verify, ok := m.store.Load()
	if !ok || verify.USBOutputMode != uint8(id) {
		return ErrVerifyFailed
	}

	if m.watchdogReset != nil {
		m.watchdogReset()
	}
	return nil
}

// ReportDescriptorOrDefault returns the mode's report descriptor, or a
// generic HID report descriptor when the mode doesn't supply one.
func (m *Manager) ReportDescriptorOrDefault(generic []byte) []byte {
	if m.current == nil {
		return generic
	}
	if m.current.GetReportDescriptor != nil {
		return m.current.GetReportDescriptor()
	}
	return generic
}
