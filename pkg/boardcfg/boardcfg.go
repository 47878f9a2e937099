// Package boardcfg collects the per-board, build-time constants spec.md §6
// leaves to board-specific configuration: debug-display pin assignment,
// watchdog timing, and the App/scheduler poll interval. It generalizes the
// teacher's pkg/display SCL/SDA constants (previously hard-coded in that
// package) into one place a different board target can override.
package boardcfg

import "machine"

// I2C pins for the debug SSD1306, same assignment the teacher wired
// directly into pkg/display.
const (
	DisplaySCLPin = machine.GPIO1
	DisplaySDAPin = machine.GPIO0
)

// AppPollIntervalMS is the nominal scheduler tick budget, the Go
// equivalent of apps/usb2usb/app_config.h's APP_POLL_INTERVAL_MS.
// scheduler.Scheduler does not read it or sleep between ticks.
const AppPollIntervalMS = 1

// WatchdogResetMS is how long usbdmode.Manager.SetMode's armed watchdog
// waits before forcing reboot into the newly persisted mode (spec.md
// §4.1, §4.6).
const WatchdogResetMS = 100

// LEDHeartbeatIntervalMS is the blink period ledsvc.Service uses for its
// idle heartbeat pattern when no profile-switch blink is active.
const LEDHeartbeatIntervalMS = 500

// LEDProfileBlinkMS is the on/off period of the profile-switch blink
// pattern ledsvc.Service plays after TriggerProfileBlink is called.
const LEDProfileBlinkMS = 120

// LEDProfileBlinkCount is how many on/off cycles the profile-switch blink
// plays before returning to the heartbeat pattern.
const LEDProfileBlinkCount = 3

// WS2812Pin drives the addressable per-player LED strip ledsvc.Service
// writes to through tinygo.org/x/drivers/ws2812.
const WS2812Pin = machine.GPIO2
