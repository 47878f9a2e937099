package players

import (
	"image/color"
	"testing"
	"time"

	"github.com/gopad-fw/joypad/pkg/iface"
	"github.com/gopad-fw/joypad/pkg/ledsvc"
)

type fakeClock struct{ t time.Duration }

func (f *fakeClock) Now() time.Duration { return f.t }

type fakeStrip struct {
	lastColors []color.RGBA
}

func (f *fakeStrip) WriteColors(colors []color.RGBA) error {
	f.lastColors = append([]color.RGBA(nil), colors...)
	return nil
}

func TestNewInitializesIdentityLEDIndex(t *testing.T) {
	m := New(nil, nil)
	for i, idx := range m.LEDIndex {
		if idx != i {
			t.Errorf("LEDIndex[%d] = %d, want %d", i, idx, i)
		}
	}
}

func TestSetConnectedCountClamps(t *testing.T) {
	m := New(nil, nil)
	m.SetConnectedCount(-1)
	if m.Count != 0 {
		t.Errorf("expected clamp to 0, got %d", m.Count)
	}
	m.SetConnectedCount(99)
	if m.Count != 4 {
		t.Errorf("expected clamp to MaxPlayers, got %d", m.Count)
	}
}

func TestTaskPullsActiveOutputLEDColor(t *testing.T) {
	strip := &fakeStrip{}
	leds := ledsvc.New(strip, nil, &fakeClock{})
	m := New(leds, func() string { return "hid" })
	m.SetConnectedCount(1)

	green := color.RGBA{G: 255, A: 255}
	out := &iface.Output{
		GetPlayerLED: func(player int) (color.RGBA, bool) {
			if player == 0 {
				return green, true
			}
			return color.RGBA{}, false
		},
	}

	m.Task(out)

	if strip.lastColors[0] != green {
		t.Errorf("player 0 color: got %v want %v", strip.lastColors[0], green)
	}
}

func TestTaskWithNilActiveOutputStillTicksHeartbeat(t *testing.T) {
	leds := ledsvc.New(nil, nil, &fakeClock{})
	m := New(leds, nil)
	m.Task(nil) // must not panic
}
