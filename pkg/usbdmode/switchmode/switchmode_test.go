package switchmode

import (
	"testing"

	"github.com/gopad-fw/joypad/pkg/gpevent"
	"github.com/gopad-fw/joypad/pkg/profile"
)

// S1: Switch mode, B1 pressed, sticks centered.
func TestS1SwitchB1Pressed(t *testing.T) {
	m := New(IdentityGenuinePro, func() bool { return true })
	eng := profile.New()

	in := gpevent.InputEvent{
		Buttons: uint32(gpevent.ButtonB1),
		Analog:  [gpevent.AxisCount]uint8{128, 128, 128, 128, 0, 0},
	}

	out := eng.Apply(0, Builtin, nil, in)
	ok := m.sendReport(0, in, out, out.Buttons)
	if !ok {
		t.Fatal("sendReport returned false")
	}

	got := m.LastSent()
	if len(got) != ReportSize {
		t.Fatalf("report size: got %d want %d", len(got), ReportSize)
	}
	if got[0] != 0x02 || got[1] != 0x00 {
		t.Errorf("buttons: got lo=0x%x hi=0x%x want lo=0x02 hi=0x00", got[0], got[1])
	}
	if got[2] != 0x08 {
		t.Errorf("hat: got 0x%x want 0x08", got[2])
	}
	for i, axis := range []int{3, 4, 5, 6} {
		if got[axis] != 0x80 {
			t.Errorf("analog[%d]: got 0x%x want 0x80", i, got[axis])
		}
	}
	if got[7] != 0x00 {
		t.Errorf("vendor: got 0x%x want 0x00", got[7])
	}
}

// S2: d-pad diagonal (Up+Right) yields hat=UP_RIGHT=0x01.
func TestS2DpadDiagonal(t *testing.T) {
	m := New(IdentityGenuinePro, func() bool { return true })
	eng := profile.New()

	in := gpevent.InputEvent{
		Buttons: uint32(gpevent.ButtonDpadUp) | uint32(gpevent.ButtonDpadRight),
		Analog:  [gpevent.AxisCount]uint8{128, 128, 128, 128, 0, 0},
	}

	out := eng.Apply(0, Builtin, nil, in)
	m.sendReport(0, in, out, out.Buttons)

	got := m.LastSent()
	if got[2] != 0x01 {
		t.Errorf("hat: got 0x%x want 0x01 (UP_RIGHT)", got[2])
	}
}

func TestSendReportNotReady(t *testing.T) {
	m := New(IdentityGenuinePro, func() bool { return false })
	eng := profile.New()
	in := gpevent.InputEvent{}
	out := eng.Apply(0, Builtin, nil, in)
	if m.sendReport(0, in, out, out.Buttons) {
		t.Error("sendReport should return false when not ready")
	}
}
