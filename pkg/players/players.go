// Package players is the per-player bookkeeping service (spec.md §4.7,
// C7): it tracks how many players are currently connected, maps each to
// its LED index, and ticks pkg/ledsvc once per scheduler iteration with
// the active output's per-player color and connection state.
package players

import (
	"image/color"

	"github.com/gopad-fw/joypad/pkg/gpevent"
	"github.com/gopad-fw/joypad/pkg/iface"
	"github.com/gopad-fw/joypad/pkg/ledsvc"
)

// Manager owns the player-to-LED mapping and drives the LED service.
type Manager struct {
	Count    int
	LEDIndex [gpevent.MaxPlayers]int

	leds     *ledsvc.Service
	modeName func() string
}

// New returns a Manager driving leds, labeling its heartbeat with
// modeName() each tick (the active usbd mode's Name). modeName may be nil.
func New(leds *ledsvc.Service, modeName func() string) *Manager {
	m := &Manager{leds: leds, modeName: modeName}
	for i := range m.LEDIndex {
		m.LEDIndex[i] = i
	}
	return m
}

// SetConnectedCount records how many players are currently producing
// input, read back by pkg/display's status row via ledsvc.
func (m *Manager) SetConnectedCount(n int) {
	if n < 0 {
		n = 0
	}
	if n > gpevent.MaxPlayers {
		n = gpevent.MaxPlayers
	}
	m.Count = n
}

// TriggerProfileBlink forwards to the LED service's profile-switch blink,
// the visible confirmation of a combo-fired profile switch (spec.md §4.2
// step 4).
func (m *Manager) TriggerProfileBlink(player int) {
	if m.leds != nil {
		m.leds.TriggerProfileBlink(player)
	}
}

// Task is the per-scheduler-iteration tick (spec §5, "leds → players" —
// players runs immediately after leds in the fixed order and drives the
// same service, so the two are adjacent stages sharing one tick call).
// active is the currently selected output; nil means no output is ready
// yet and the LED service still ticks its heartbeat with no player color.
func (m *Manager) Task(active *iface.Output) {
	var getLED func(int) (color.RGBA, bool)
	name := ""
	if m.modeName != nil {
		name = m.modeName()
	}
	if active != nil && active.GetPlayerLED != nil {
		getLED = active.GetPlayerLED
	}
	if m.leds != nil {
		m.leds.Tick(name, m.Count, getLED)
	}
}
