// Package app provides the reference App (spec.md §6): one native USB
// HID gamepad output wired through pkg/usbdmode, and one placeholder
// USB-host input mirroring usb/usbh/usbh.c's bare tuh_task pump (host
// class drivers are out of scope, spec.md §1). It is the Go translation
// of apps/usb2usb/app_config.h's APP_INPUT_INTERFACES/APP_OUTPUT_INTERFACES
// build-time wiring into a struct literal instead of preprocessor macros.
package app

import (
	"github.com/gopad-fw/joypad/pkg/flashstore"
	"github.com/gopad-fw/joypad/pkg/gamepad"
	"github.com/gopad-fw/joypad/pkg/iface"
	"github.com/gopad-fw/joypad/pkg/profile"
	"github.com/gopad-fw/joypad/pkg/router"
	"github.com/gopad-fw/joypad/pkg/usbdmode"
)

// DefaultApp wires the native gamepad's router tap, the usbdmode
// Manager's per-tick driving, and a host-pump placeholder input.
type DefaultApp struct {
	gp       *gamepad.Gamepad
	manager  *usbdmode.Manager
	store    *flashstore.Store
	hostPump func()
}

// NewDefaultApp registers gp's output tap on TargetUSBDevice (the tap that
// must be live before routing starts, spec.md Open Question / §4 above)
// and returns the app wiring manager/store/hostPump into the Output and
// HostInput records the caller assembles into the scheduler.
func NewDefaultApp(gp *gamepad.Gamepad, manager *usbdmode.Manager, store *flashstore.Store, r *router.Router, hostPump func()) *DefaultApp {
	r.SetTap(router.TargetUSBDevice, gp.NewOutputTap())
	return &DefaultApp{gp: gp, manager: manager, store: store, hostPump: hostPump}
}

// Task is the scheduler.App hook. The reference App has no per-tick work
// of its own beyond its wired Output/HostInput, so this is a no-op — the
// usbdmode tick and the host pump are driven through their own Output/
// Input Task fields instead.
func (a *DefaultApp) Task() {}

// Output is the native gamepad's iface.Output record for the scheduler's
// outputs[] stage: Task drives usbdmode.Manager.Tick once per iteration.
func (a *DefaultApp) Output() iface.Output {
	return iface.Output{
		Name:     "usbdevice",
		TargetID: router.TargetUSBDevice,
		Task:     a.tickUSBDMode,
	}
}

// HostInput is the placeholder USB-host input: Task runs hostPump (the
// external host-stack tud_task/tuh_task equivalent) once per iteration.
// It produces no events of its own until a concrete host class driver is
// plugged in.
func (a *DefaultApp) HostInput() iface.Input {
	return iface.Input{
		Name: "usbhost",
		Task: a.hostPump,
	}
}

func (a *DefaultApp) tickUSBDMode() {
	a.manager.Tick(a.builtinFor, a.slotFor, nil)
}

func (a *DefaultApp) builtinFor(usbdmode.ModeID) *profile.BuiltIn {
	mode := a.manager.Current()
	if mode == nil {
		return nil
	}
	return mode.Builtin
}

// slotFor reloads the active profile slot from flash every tick. This is
// the simplest correct reference implementation; a production app would
// cache the active Record and only reload it after SetMode or a profile
// edit lands through pkg/protocol.
func (a *DefaultApp) slotFor(int) *flashstore.ProfileSlot {
	record, ok := a.store.Load()
	if !ok {
		return nil
	}
	idx := int(record.ActiveProfileIndex)
	if idx < 0 || idx >= flashstore.MaxProfileSlots {
		return nil
	}
	slot := record.Slots[idx]
	return &slot
}
