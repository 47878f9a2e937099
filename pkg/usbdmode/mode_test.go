package usbdmode

import (
	"testing"

	"github.com/gopad-fw/joypad/pkg/flashstore"
	"github.com/gopad-fw/joypad/pkg/gpevent"
	"github.com/gopad-fw/joypad/pkg/profile"
	"tinygo.org/x/tinyfs"
)

// fakeMode is a minimal, fully-controllable usbdmode.Mode for manager tests —
// it plays the same capability-table role a concrete mode package
// (hidmode/switchmode/...) plays, without pulling in a board-facing
// dependency.
type fakeMode struct {
	id          ModeID
	name        string
	ready       bool
	sent        []sentCall
	sendOK      bool
	initialized bool
}

type sentCall struct {
	player int
	event  gpevent.InputEvent
}

func newFakeMode(id ModeID, name string) *fakeMode {
	return &fakeMode{id: id, name: name, ready: true, sendOK: true}
}

func (f *fakeMode) asMode() *Mode {
	return &Mode{
		Name:    f.name,
		ID:      f.id,
		Init:    func() { f.initialized = true },
		IsReady: func() bool { return f.ready },
		SendReport: func(player int, event gpevent.InputEvent, out gpevent.ProfileOutput, buttons uint32) bool {
			if !f.sendOK {
				return false
			}
			f.sent = append(f.sent, sentCall{player: player, event: event})
			return true
		},
		ReportSize: 8,
		Builtin:    &profile.BuiltIn{Name: f.name},
	}
}

func newTestStore(t *testing.T) *flashstore.Store {
	t.Helper()
	dev := tinyfs.NewMemoryDevice(256, 4096, 64)
	s, err := flashstore.Init(dev, true)
	if err != nil {
		t.Fatalf("flashstore.Init: %v", err)
	}
	return s
}

func TestInitFallsBackToHIDForUnregisteredPersistedMode(t *testing.T) {
	eng := profile.New()
	mgr := NewManager(eng, nil)
	hid := newFakeMode(ModeHID, "hid")
	mgr.Register(hid.asMode())

	store := newTestStore(t)
	defer store.Close()

	mgr.Init(store, ModeSwitch) // never registered

	if mgr.Current() == nil || mgr.Current().ID != ModeHID {
		t.Fatalf("expected fallback to ModeHID, got %+v", mgr.Current())
	}
	if !hid.initialized {
		t.Error("fallback mode's Init was not called")
	}
}

func TestEnqueuePlayerEventIsLatestWins(t *testing.T) {
	eng := profile.New()
	mgr := NewManager(eng, nil)
	fake := newFakeMode(ModeHID, "hid")
	mgr.Register(fake.asMode())

	store := newTestStore(t)
	defer store.Close()
	mgr.Init(store, ModeHID)

	mgr.EnqueuePlayerEvent(0, gpevent.InputEvent{Buttons: 1})
	mgr.EnqueuePlayerEvent(0, gpevent.InputEvent{Buttons: 2}) // overwrites

	mgr.Tick(nil, nil, nil)

	if len(fake.sent) != 1 {
		t.Fatalf("expected exactly one SendReport call, got %d", len(fake.sent))
	}
	if fake.sent[0].event.Buttons != 2 {
		t.Errorf("expected latest-wins event (buttons=2), got %d", fake.sent[0].event.Buttons)
	}
}

func TestPendingEventKeptWhenSendReportFails(t *testing.T) {
	eng := profile.New()
	mgr := NewManager(eng, nil)
	fake := newFakeMode(ModeHID, "hid")
	fake.sendOK = false
	mgr.Register(fake.asMode())

	store := newTestStore(t)
	defer store.Close()
	mgr.Init(store, ModeHID)

	mgr.EnqueuePlayerEvent(0, gpevent.InputEvent{Buttons: 1})
	mgr.Tick(nil, nil, nil)
	if len(fake.sent) != 0 {
		t.Fatalf("SendReport should have failed, got %d sends", len(fake.sent))
	}

	fake.sendOK = true
	mgr.Tick(nil, nil, nil)
	if len(fake.sent) != 1 {
		t.Fatalf("pending event should have been retried next tick, got %d sends", len(fake.sent))
	}
}

func TestSetModePersistsVerifiesAndArmsWatchdog(t *testing.T) {
	eng := profile.New()
	mgr := NewManager(eng, nil)
	mgr.Register(newFakeMode(ModeHID, "hid").asMode())
	mgr.Register(newFakeMode(ModeSwitch, "switch").asMode())

	store := newTestStore(t)
	defer store.Close()
	mgr.Init(store, ModeHID)

	watchdogArmed := false
	mgr.SetWatchdogReset(func() { watchdogArmed = true })

	if err := mgr.SetMode(ModeSwitch, flashstore.DefaultRecord()); err != nil {
		t.Fatalf("SetMode: %v", err)
	}
	if !watchdogArmed {
		t.Error("watchdog reset was not armed after a successful mode change")
	}

	loaded, ok := store.Load()
	if !ok || loaded.USBOutputMode != uint8(ModeSwitch) {
		t.Errorf("persisted record mismatch: ok=%v loaded=%+v", ok, loaded)
	}
}

func TestSetModeRejectsUnsupportedID(t *testing.T) {
	eng := profile.New()
	mgr := NewManager(eng, nil)
	mgr.Register(newFakeMode(ModeHID, "hid").asMode())

	store := newTestStore(t)
	defer store.Close()
	mgr.Init(store, ModeHID)

	if err := mgr.SetMode(ModeSwitch, flashstore.DefaultRecord()); err != ErrUnsupportedMode {
		t.Errorf("expected ErrUnsupportedMode, got %v", err)
	}
}

func TestTickSkipsSendWhenModeNotReady(t *testing.T) {
	eng := profile.New()
	mgr := NewManager(eng, nil)
	fake := newFakeMode(ModeHID, "hid")
	fake.ready = false
	mgr.Register(fake.asMode())

	store := newTestStore(t)
	defer store.Close()
	mgr.Init(store, ModeHID)

	mgr.EnqueuePlayerEvent(0, gpevent.InputEvent{Buttons: 1})
	mgr.Tick(nil, nil, nil)

	if len(fake.sent) != 0 {
		t.Error("Tick should not send reports while the mode reports not ready")
	}
}

func TestTickInvokesIdleMouseReportOnlyForKeyboardMouseWithNothingSent(t *testing.T) {
	eng := profile.New()
	mgr := NewManager(eng, nil)
	fake := newFakeMode(ModeKeyboardMouse, "kbmouse")
	mgr.Register(fake.asMode())

	store := newTestStore(t)
	defer store.Close()
	mgr.Init(store, ModeKeyboardMouse)

	idleCalls := 0
	mgr.Tick(nil, nil, func() { idleCalls++ })

	if idleCalls != 1 {
		t.Errorf("expected idle mouse report once with no pending event, got %d", idleCalls)
	}

	mgr.EnqueuePlayerEvent(0, gpevent.InputEvent{Buttons: 1})
	idleCalls = 0
	mgr.Tick(nil, nil, func() { idleCalls++ })
	if idleCalls != 0 {
		t.Error("idle mouse report must not fire when a real event was sent")
	}
}
