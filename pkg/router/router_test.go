package router

import (
	"testing"

	"github.com/gopad-fw/joypad/pkg/gpevent"
)

const targetUSBDevice TargetID = 0

func TestPublishInvokesRegisteredTap(t *testing.T) {
	r := New()
	var gotPlayer int
	var gotEvent gpevent.InputEvent
	calls := 0
	r.SetTap(targetUSBDevice, func(player int, event gpevent.InputEvent) {
		calls++
		gotPlayer = player
		gotEvent = event
	})

	ev := gpevent.InputEvent{PlayerIndex: 1, Buttons: uint32(gpevent.ButtonB1)}
	r.Publish(targetUSBDevice, 1, ev)

	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	if gotPlayer != 1 || gotEvent.Buttons != ev.Buttons {
		t.Errorf("tap did not receive the published event: player=%d buttons=0x%x", gotPlayer, gotEvent.Buttons)
	}
}

func TestPublishToUnregisteredTargetIsNoop(t *testing.T) {
	r := New()
	// Must not panic.
	r.Publish(targetUSBDevice, 0, gpevent.InputEvent{})
}

func TestPublishIgnoresInvalidPlayerIndex(t *testing.T) {
	r := New()
	calls := 0
	r.SetTap(targetUSBDevice, func(player int, event gpevent.InputEvent) { calls++ })

	r.Publish(targetUSBDevice, -1, gpevent.InputEvent{})
	r.Publish(targetUSBDevice, gpevent.MaxPlayers, gpevent.InputEvent{})

	if calls != 0 {
		t.Errorf("expected invalid player indices to be ignored, got %d calls", calls)
	}
}

func TestHasTapDetectsPlaceholder(t *testing.T) {
	r := New()
	if r.HasTap(targetUSBDevice) {
		t.Error("HasTap should be false before any tap is registered")
	}
	r.SetTap(targetUSBDevice, nil)
	if r.HasTap(targetUSBDevice) {
		t.Error("HasTap should be false for a nil placeholder tap")
	}
	r.SetTap(targetUSBDevice, func(int, gpevent.InputEvent) {})
	if !r.HasTap(targetUSBDevice) {
		t.Error("HasTap should be true once a real tap is registered")
	}
}

func TestSetTapReplacesPriorTap(t *testing.T) {
	r := New()
	first := 0
	second := 0
	r.SetTap(targetUSBDevice, func(int, gpevent.InputEvent) { first++ })
	r.SetTap(targetUSBDevice, func(int, gpevent.InputEvent) { second++ })

	r.Publish(targetUSBDevice, 0, gpevent.InputEvent{})

	if first != 0 || second != 1 {
		t.Errorf("expected only the latest tap to fire: first=%d second=%d", first, second)
	}
}
