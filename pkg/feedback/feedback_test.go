package feedback

import (
	"image/color"
	"testing"
	"time"

	"github.com/gopad-fw/joypad/pkg/gpevent"
	"github.com/gopad-fw/joypad/pkg/iface"
	"github.com/gopad-fw/joypad/pkg/ledsvc"
)

type fakeClock struct{ t time.Duration }

func (f *fakeClock) Now() time.Duration { return f.t }

type fakeStrip struct{ lastColors []color.RGBA }

func (f *fakeStrip) WriteColors(colors []color.RGBA) error {
	f.lastColors = append([]color.RGBA(nil), colors...)
	return nil
}

func TestTickFansOutDirtyFeedbackToInputs(t *testing.T) {
	plane := New()
	var applied gpevent.OutputFeedback
	applyCount := 0

	out := &iface.Output{
		GetFeedback: func() (gpevent.OutputFeedback, bool) {
			return gpevent.OutputFeedback{RumbleLeft: 200, Dirty: true}, true
		},
	}
	in := iface.Input{
		ApplyFeedback: func(fb gpevent.OutputFeedback) {
			applied = fb
			applyCount++
		},
	}

	plane.Tick(out, []iface.Input{in}, nil)

	if applyCount != 1 {
		t.Fatalf("expected ApplyFeedback called once, got %d", applyCount)
	}
	if applied.RumbleLeft != 200 {
		t.Errorf("expected rumble 200, got %d", applied.RumbleLeft)
	}
}

func TestTickSkipsNonDirtyFeedback(t *testing.T) {
	plane := New()
	out := &iface.Output{
		GetFeedback: func() (gpevent.OutputFeedback, bool) {
			return gpevent.OutputFeedback{Dirty: false}, true
		},
	}
	called := false
	in := iface.Input{ApplyFeedback: func(gpevent.OutputFeedback) { called = true }}

	plane.Tick(out, []iface.Input{in}, nil)

	if called {
		t.Error("ApplyFeedback should not be called for non-dirty feedback")
	}
}

func TestTickFallsBackToScalarRumble(t *testing.T) {
	plane := New()
	out := &iface.Output{
		GetRumble: func() (uint8, bool) { return 128, true },
	}
	var applied gpevent.OutputFeedback
	in := iface.Input{ApplyFeedback: func(fb gpevent.OutputFeedback) { applied = fb }}

	plane.Tick(out, []iface.Input{in}, nil)

	if applied.RumbleLeft != 128 || applied.RumbleRight != 128 {
		t.Errorf("expected both rumble channels 128, got L=%d R=%d", applied.RumbleLeft, applied.RumbleRight)
	}
}

func TestTickUpdatesLEDServiceFromFeedback(t *testing.T) {
	plane := New()
	strip := &fakeStrip{}
	leds := ledsvc.New(strip, nil, &fakeClock{})
	out := &iface.Output{
		GetFeedback: func() (gpevent.OutputFeedback, bool) {
			return gpevent.OutputFeedback{LEDPlayer: 1, LEDR: 10, LEDG: 20, LEDB: 30, Dirty: true}, true
		},
	}

	plane.Tick(out, nil, leds)
	leds.Tick("hid", 0, nil)

	want := color.RGBA{R: 10, G: 20, B: 30, A: 255}
	if strip.lastColors[1] != want {
		t.Errorf("player 1 LED: got %v want %v", strip.lastColors[1], want)
	}
}

func TestTickWithNilActiveIsNoop(t *testing.T) {
	plane := New()
	plane.Tick(nil, nil, nil) // must not panic
}
