// Package iface defines the uniform input/output backend contracts
// (spec.md §4.4, §4.5, §6): function-pointer capability records rather
// than interfaces, so a missing optional member is a nil check, never a
// type assertion or a panic.
package iface

import (
	"image/color"

	"github.com/gopad-fw/joypad/pkg/gpevent"
	"github.com/gopad-fw/joypad/pkg/router"
)

// Input is one input backend: polls its hardware once per main-loop
// iteration and calls Router.Publish when it observes a new event.
// ApplyFeedback is optional — nil if this input has no rumble/LED return
// path.
type Input struct {
	Name          string
	Init          func()
	Task          func()
	ApplyFeedback func(gpevent.OutputFeedback)
}

// Output is one output backend. At most one registered Output's Core1Task
// may be non-nil across the whole system (spec.md §4.5, §8 property 5);
// every other optional member is independently nil-checked.
type Output struct {
	Name     string
	TargetID router.TargetID

	Init func()
	Task func()

	// Core1Task, if non-nil, is the single timing-critical task bound to
	// Core 1 (spec.md §4.9).
	Core1Task func()

	GetFeedback         func() (gpevent.OutputFeedback, bool)
	GetRumble           func() (uint8, bool)
	GetPlayerLED        func(player int) (color.RGBA, bool)
	GetTriggerThreshold func() (uint8, bool)

	ProfileCount  func() int
	ActiveProfile func() int
	SetActive     func(index int)
	ProfileName   func(index int) string
}
