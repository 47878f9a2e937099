package gcadapter

import (
	"testing"

	"github.com/gopad-fw/joypad/pkg/gpevent"
	"github.com/gopad-fw/joypad/pkg/profile"
)

func TestSendReportWritesPlayerSlot(t *testing.T) {
	m := New(func() bool { return true })
	eng := profile.New()

	in := gpevent.InputEvent{
		Buttons: uint32(gpevent.ButtonB1),
		Analog:  [gpevent.AxisCount]uint8{128, 128, 128, 128, 0, 0},
	}
	out := eng.Apply(1, Builtin, nil, in)

	if !m.sendReport(1, in, out, out.Buttons) {
		t.Fatal("sendReport returned false")
	}

	got := m.LastSent()
	off := 1 + 1*9
	if got[off] != 0x01 {
		t.Errorf("player 1 buttons lo: got 0x%x want 0x01", got[off])
	}
	if got[off+2] != 128 {
		t.Errorf("player 1 LX: got %d want 128", got[off+2])
	}

	// Player 0's slot must be untouched.
	if got[1] != 0 {
		t.Errorf("player 0 slot disturbed: got 0x%x want 0x00", got[1])
	}
}

func TestSendReportInvalidPlayer(t *testing.T) {
	m := New(func() bool { return true })
	eng := profile.New()
	in := gpevent.InputEvent{}
	out := eng.Apply(5, Builtin, nil, in)
	if m.sendReport(5, in, out, out.Buttons) {
		t.Error("sendReport should reject a player index outside 0..3")
	}
}

func TestSendReportNotReady(t *testing.T) {
	m := New(func() bool { return false })
	eng := profile.New()
	in := gpevent.InputEvent{}
	out := eng.Apply(0, Builtin, nil, in)
	if m.sendReport(0, in, out, out.Buttons) {
		t.Error("sendReport should return false when not ready")
	}
}
