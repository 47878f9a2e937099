package main

import (
	"machine"
	tgk "machine/usb/hid/keyboard"

	"github.com/gopad-fw/joypad/pkg/app"
	"github.com/gopad-fw/joypad/pkg/boardcfg"
	"github.com/gopad-fw/joypad/pkg/composite"
	"github.com/gopad-fw/joypad/pkg/corebus"
	"github.com/gopad-fw/joypad/pkg/display"
	"github.com/gopad-fw/joypad/pkg/feedback"
	"github.com/gopad-fw/joypad/pkg/flashstore"
	"github.com/gopad-fw/joypad/pkg/gamepad"
	"github.com/gopad-fw/joypad/pkg/iface"
	"github.com/gopad-fw/joypad/pkg/ledsvc"
	"github.com/gopad-fw/joypad/pkg/players"
	"github.com/gopad-fw/joypad/pkg/profile"
	"github.com/gopad-fw/joypad/pkg/protocol"
	"github.com/gopad-fw/joypad/pkg/router"
	"github.com/gopad-fw/joypad/pkg/scheduler"
	"github.com/gopad-fw/joypad/pkg/usbdmode"
	"github.com/gopad-fw/joypad/pkg/usbdmode/gcadapter"
	"github.com/gopad-fw/joypad/pkg/usbdmode/hidmode"
	kbmousemode "github.com/gopad-fw/joypad/pkg/usbdmode/kbmouse"
	"github.com/gopad-fw/joypad/pkg/usbdmode/switchmode"
	"github.com/gopad-fw/joypad/pkg/usbdmode/xinputmode"

	serialtransport "github.com/gopad-fw/joypad/serial"

	"tinygo.org/x/drivers/ws2812"
	"tinygo.org/x/tinyfs"
)

// MAIN THREAD DUTIES
//
// Core 0 first launches Core 1 (parked until every service below is
// ready), then brings up flash storage, registers every usbd mode, wires
// the router tap, releases Core 1, and runs the scheduler forever. Core 1 only ever runs if some
// registered Output supplies a Core1Task — none does in this reference
// wiring, so it idles after its flash-lockout init.

// usbReady is the readyFn every usbd mode uses: the composite device's
// endpoint-complete flag, the same check the teacher's pkg/gamepad.tx
// guards its own sends with.
func usbReady() bool {
	return machine.USBDev.InitEndpointComplete
}

func main() {
	bus := corebus.New()
	bus.LaunchCore1(func() {
		// Flash-safety init would run here on real hardware before any
		// flash write is possible; flashLockout's mutex already gates
		// writes from Core 0, so there is nothing further to do on this
		// goroutine side of the handshake.
	})

	// blockDev is a RAM-backed stand-in: the retrieval corpus never wires
	// a real flash-backed tinyfs.BlockDevice for RP2040 (the teacher's own
	// pkg/storage.New only ever receives one from its tests), so there is
	// no grounded board block device to copy here. Swapping this for the
	// real flash region is a board-support task outside this module.
	blockDev := tinyfs.NewMemoryDevice(256, 4096, 64)
	store, err := flashstore.Init(blockDev, true)
	if err != nil {
		store = nil
	}

	persistedMode := usbdmode.ModeHID
	if store != nil {
		if rec, ok := store.Load(); ok {
			persistedMode = usbdmode.ModeID(rec.USBOutputMode)
		}
	}

	engine := profile.New()
	manager := usbdmode.NewManager(engine, nil)

	hidUsbd, _ := hidmode.NewUsbdMode(usbReady)
	switchUsbd, _ := switchmode.NewUsbdMode(switchmode.IdentityGenuinePro, usbReady)
	xinputUsbd, _ := xinputmode.NewUsbdMode(usbReady)
	gcUsbd, _ := gcadapter.NewUsbdMode(usbReady)
	kbmouseUsbd, _ := kbmousemode.NewUsbdMode(tgk.Port(), usbReady)

	// The composite CDC+HID descriptor multiplexes Mouse/Keyboard/Consumer
	// (Report IDs 1-3) and Gamepad (Report ID 4) on one USB identity; both
	// the generic-HID and keyboard/mouse modes enumerate under it.
	hidUsbd.GetDeviceDescriptor = func() []byte { return composite.USBDescriptor.Device }
	hidUsbd.GetConfigDescriptor = func() []byte { return composite.USBDescriptor.Configuration }
	hidUsbd.GetReportDescriptor = func() []byte { return composite.CompositeHIDReportDescriptor }
	kbmouseUsbd.GetDeviceDescriptor = hidUsbd.GetDeviceDescriptor
	kbmouseUsbd.GetConfigDescriptor = hidUsbd.GetConfigDescriptor
	kbmouseUsbd.GetReportDescriptor = hidUsbd.GetReportDescriptor

	manager.Register(hidUsbd)
	manager.Register(switchUsbd)
	manager.Register(xinputUsbd)
	manager.Register(gcUsbd)
	manager.Register(kbmouseUsbd)

	manager.Init(store, persistedMode)
	manager.SetWatchdogReset(func() {
		machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: boardcfg.WatchdogResetMS})
		machine.Watchdog.Start()
		for {
		}
	})
	manager.SetFlashLockout(bus.FlashLockout)

	r := router.New()
	gp := gamepad.New()
	defaultApp := app.NewDefaultApp(gp, manager, store, r, func() {
		// usb host pump placeholder: no host class driver is wired
		// (spec.md §1), so there is nothing to pump yet.
	})

	if !r.HasTap(router.TargetUSBDevice) {
		panic("joypad: usb device output tap never registered")
	}

	dbg := display.NewManager()

	boardcfg.WS2812Pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	strip := ws2812.New(boardcfg.WS2812Pin)

	leds := ledsvc.New(strip, dbg, ledsvc.NewRealClock())
	playerMgr := players.New(leds, func() string { return manager.Current().Name })
	feedbackPlane := feedback.New()

	formatter := display.NewFrameFormatter()
	handler := protocol.NewHandler(store)
	handler.SetFlashLockout(bus.FlashLockout)
	cdc := serialtransport.NewSerial(machine.Serial, handler, dbg, formatter)
	go cdc.Handle()

	outputs := []iface.Output{defaultApp.Output()}
	inputs := []iface.Input{defaultApp.HostInput()}

	bus.AssignCore1Task(core1TasksOf(outputs))
	bus.Start()

	sched := &scheduler.Scheduler{
		LEDs:     leds,
		Players:  playerMgr,
		Storage:  store,
		Feedback: feedbackPlane,
		Outputs:  outputs,
		App:      defaultApp,
		Inputs:   inputs,
		ActiveOutput: func() *iface.Output {
			return &outputs[0]
		},
	}

	sched.RunForever()
}

// core1TasksOf extracts every output's optional Core1Task, in order, for
// corebus.Bus.AssignCore1Task (spec.md §4.9, §8 property 5).
func core1TasksOf(outputs []iface.Output) []func() {
	tasks := make([]func(), 0, len(outputs))
	for _, out := range outputs {
		tasks = append(tasks, out.Core1Task)
	}
	return tasks
}
