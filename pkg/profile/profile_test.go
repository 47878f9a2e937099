package profile

import (
	"testing"
	"time"

	"github.com/gopad-fw/joypad/pkg/flashstore"
	"github.com/gopad-fw/joypad/pkg/gpevent"
)

type fakeClock struct{ t time.Duration }

func (f *fakeClock) Now() time.Duration { return f.t }

func TestApplyIdentity(t *testing.T) {
	e := New()
	slot := flashstore.DefaultProfileSlot()
	in := gpevent.InputEvent{
		Buttons: uint32(gpevent.ButtonB1) | uint32(gpevent.ButtonL1),
		Analog:  [gpevent.AxisCount]uint8{10, 20, 200, 240, 0, 0},
	}

	out := e.Apply(0, nil, &slot, in)

	if out.Buttons != in.Buttons {
		t.Errorf("buttons: got 0x%x want 0x%x", out.Buttons, in.Buttons)
	}
	if out.Analog != in.Analog {
		t.Errorf("analog: got %v want %v", out.Analog, in.Analog)
	}
}

func TestApplyInvertLY(t *testing.T) {
	e := New()
	slot := flashstore.DefaultProfileSlot()
	slot.Flags = flashstore.FlagInvertLY

	in := gpevent.InputEvent{Analog: [gpevent.AxisCount]uint8{128, 0x20, 128, 128, 0, 0}}
	out := e.Apply(0, nil, &slot, in)

	if out.Analog[gpevent.AxisLY] != 0xDF {
		t.Errorf("inverted LY: got 0x%x want 0xDF", out.Analog[gpevent.AxisLY])
	}
}

func TestApplySwapSticks(t *testing.T) {
	e := New()
	slot := flashstore.DefaultProfileSlot()
	slot.Flags = flashstore.FlagSwapSticks

	in := gpevent.InputEvent{Analog: [gpevent.AxisCount]uint8{10, 20, 30, 40, 0, 0}}
	out := e.Apply(0, nil, &slot, in)

	if out.Analog[gpevent.AxisLX] != 30 || out.Analog[gpevent.AxisLY] != 40 {
		t.Errorf("left stick after swap: got lx=%d ly=%d", out.Analog[gpevent.AxisLX], out.Analog[gpevent.AxisLY])
	}
	if out.Analog[gpevent.AxisRX] != 10 || out.Analog[gpevent.AxisRY] != 20 {
		t.Errorf("right stick after swap: got rx=%d ry=%d", out.Analog[gpevent.AxisRX], out.Analog[gpevent.AxisRY])
	}
}

func TestApplyButtonRemap(t *testing.T) {
	e := New()
	slot := flashstore.DefaultProfileSlot()
	// Remap B1 (bit index per gpevent const ordering) to B2's bit.
	srcBit := bitIndex(gpevent.ButtonB1)
	dstBit := bitIndex(gpevent.ButtonB2)
	slot.RemapTable[srcBit] = uint8(dstBit)

	in := gpevent.InputEvent{Buttons: uint32(gpevent.ButtonB1)}
	out := e.Apply(0, nil, &slot, in)

	if out.Buttons != uint32(gpevent.ButtonB2) {
		t.Errorf("remap: got 0x%x want 0x%x", out.Buttons, uint32(gpevent.ButtonB2))
	}
}

func TestApplySensitivityScaling(t *testing.T) {
	e := New()
	slot := flashstore.DefaultProfileSlot()
	slot.SensitivityLeft = 50

	in := gpevent.InputEvent{Analog: [gpevent.AxisCount]uint8{228, 128, 128, 128, 0, 0}} // +100 from center
	out := e.Apply(0, nil, &slot, in)

	if out.Analog[gpevent.AxisLX] != 178 { // center + 100*0.5
		t.Errorf("scaled LX: got %d want 178", out.Analog[gpevent.AxisLX])
	}
}

func TestComboFiresProfileSwitchAfterDwell(t *testing.T) {
	e := New()
	clock := &fakeClock{}
	e.Clock = clock

	slot := flashstore.DefaultProfileSlot()
	slot.RuleCount = 1
	slot.Rules[0] = flashstore.ComboRule{
		Mask:          uint32(gpevent.ButtonL1) | uint32(gpevent.ButtonR1),
		HoldMs:        2000,
		ActionKind:    flashstore.ComboActionSwitchProfile,
		ActionProfile: 3,
	}

	in := gpevent.InputEvent{Buttons: uint32(gpevent.ButtonL1) | uint32(gpevent.ButtonR1)}

	e.Apply(0, nil, &slot, in)
	if _, fired := e.SwitchRequested(0); fired {
		t.Fatal("combo should not fire before dwell elapses")
	}

	clock.t = 2001 * time.Millisecond
	e.Apply(0, nil, &slot, in)

	idx, fired := e.SwitchRequested(0)
	if !fired || idx != 3 {
		t.Errorf("expected combo to fire switch to profile 3: fired=%v idx=%d", fired, idx)
	}
}

func TestComboSpecificityTieBreak(t *testing.T) {
	e := New()
	clock := &fakeClock{}
	e.Clock = clock

	slot := flashstore.DefaultProfileSlot()
	slot.RuleCount = 2
	// Rule 0: smaller mask (L1 only).
	slot.Rules[0] = flashstore.ComboRule{
		Mask:          uint32(gpevent.ButtonL1),
		HoldMs:        100,
		ActionKind:    flashstore.ComboActionSwitchProfile,
		ActionProfile: 1,
	}
	// Rule 1: larger mask (L1+R1) should win when both match.
	slot.Rules[1] = flashstore.ComboRule{
		Mask:          uint32(gpevent.ButtonL1) | uint32(gpevent.ButtonR1),
		HoldMs:        100,
		ActionKind:    flashstore.ComboActionSwitchProfile,
		ActionProfile: 2,
	}

	in := gpevent.InputEvent{Buttons: uint32(gpevent.ButtonL1) | uint32(gpevent.ButtonR1)}
	e.Apply(0, nil, &slot, in)
	clock.t = 101 * time.Millisecond
	e.Apply(0, nil, &slot, in)

	idx, fired := e.SwitchRequested(0)
	if !fired || idx != 2 {
		t.Errorf("expected larger mask (profile 2) to win, got idx=%d fired=%v", idx, fired)
	}
}

func bitIndex(b gpevent.Button) int {
	for i := 0; i < 32; i++ {
		if uint32(b) == 1<<uint(i) {
			return i
		}
	}
	return -1
}
