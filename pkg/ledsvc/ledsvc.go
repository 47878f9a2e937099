// Package ledsvc drives the per-player addressable LED strip and the
// debug display's status row from the active output's feedback (spec.md
// §4.7 "LED service", generalizing the teacher's pkg/display frame-echo
// rows into a router/mode/player summary plus a ws2812 strip, C7).
package ledsvc

import (
	"image/color"
	"time"

	"github.com/gopad-fw/joypad/pkg/boardcfg"
	"github.com/gopad-fw/joypad/pkg/gpevent"
)

// Strip is the subset of tinygo.org/x/drivers/ws2812.Device this service
// drives; kept as an interface so tests run without real pixel hardware.
type Strip interface {
	WriteColors(colors []color.RGBA) error
}

// StatusDisplay is the subset of pkg/display.Manager the heartbeat refreshes.
type StatusDisplay interface {
	ShowStatus(modeName string, connectedPlayers int)
}

// Clock abstracts time.Now() so heartbeat/blink timing is deterministic in
// tests.
type Clock interface {
	Now() time.Duration
}

// RealClock anchors Now() at construction, same pattern pkg/profile uses.
type RealClock struct{ start time.Time }

// NewRealClock returns a Clock anchored at the current time.
func NewRealClock() *RealClock { return &RealClock{start: time.Now()} }

// Now returns elapsed time since the clock was created.
func (c *RealClock) Now() time.Duration { return time.Since(c.start) }

// Service owns the per-player LED color table and the heartbeat/blink
// animation state machine. Strip and Display may both be nil (headless
// test builds or a board with no LED strip wired).
type Service struct {
	strip   Strip
	display StatusDisplay
	clock   Clock

	colors [gpevent.MaxPlayers]color.RGBA

	lastHeartbeat time.Duration
	heartbeatOn   bool

	blinking       bool
	blinkPlayer    int
	blinkOn        bool
	blinkRemaining int
	lastBlink      time.Duration
}

// New returns a Service driving strip and display, timed by clock.
func New(strip Strip, display StatusDisplay, clock Clock) *Service {
	return &Service{strip: strip, display: display, clock: clock}
}

// SetPlayerColor sets player's base color, overwritten while a
// TriggerProfileBlink animation is active for that player.
func (s *Service) SetPlayerColor(player int, c color.RGBA) {
	if player < 0 || player >= gpevent.MaxPlayers {
		return
	}
	s.colors[player] = c
}

// TriggerProfileBlink starts the hotkey-profile-switch blink pattern on
// player's LED (spec.md §4.2 step 4's user-visible confirmation of a combo
// firing ComboActionSwitchProfile).
func (s *Service) TriggerProfileBlink(player int) {
	if player < 0 || player >= gpevent.MaxPlayers {
		return
	}
	s.blinking = true
	s.blinkPlayer = player
	s.blinkOn = true
	s.blinkRemaining = boardcfg.LEDProfileBlinkCount * 2
	s.lastBlink = s.clock.Now()
}

// Tick advances the heartbeat and any in-progress blink, reads each
// player's LED color via getPlayerLED (the active output's GetPlayerLED,
// nil-checked per spec.md §7), and pushes the result to the strip and
// status display.
func (s *Service) Tick(modeName string, connectedPlayers int, getPlayerLED func(player int) (color.RGBA, bool)) {
	now := s.clock.Now()

	if now-s.lastHeartbeat >= time.Duration(boardcfg.LEDHeartbeatIntervalMS)*time.Millisecond {
		s.heartbeatOn = !s.heartbeatOn
		s.lastHeartbeat = now
	}

	if getPlayerLED != nil {
		for p := 0; p < gpevent.MaxPlayers; p++ {
			if c, ok := getPlayerLED(p); ok {
				s.colors[p] = c
			}
		}
	}

	out := s.colors
	if s.blinking {
		if now-s.lastBlink >= time.Duration(boardcfg.LEDProfileBlinkMS)*time.Millisecond {
			s.blinkOn = !s.blinkOn
			s.lastBlink = now
			s.blinkRemaining--
			if s.blinkRemaining <= 0 {
				s.blinking = false
			}
		}
		if !s.blinkOn {
			out[s.blinkPlayer] = color.RGBA{}
		}
	}

	if s.strip != nil {
		s.strip.WriteColors(out[:])
	}
	if s.display != nil {
		s.display.ShowStatus(modeName, connectedPlayers)
	}
}

// HeartbeatOn reports the current heartbeat phase, for tests asserting the
// blink period without a real strip attached.
func (s *Service) HeartbeatOn() bool { return s.heartbeatOn }

// Blinking reports whether a profile-switch blink is in progress.
func (s *Service) Blinking() bool { return s.blinking }
