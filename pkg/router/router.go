// Package router implements the input-event plane: a single tap per output
// target, invoked synchronously from whichever input observed the event.
// There is no queue and no lock here — routing is a direct function-pointer
// call, single-threaded on Core 0. The sink decides buffering.
package router

import "github.com/gopad-fw/joypad/pkg/gpevent"

// TargetID names an output destination (USB device, a native console
// output, ...).
type TargetID int

// TargetUSBDevice is the usbdmode.Manager's tap target (spec.md §3's
// OUTPUT_TARGET_USB_DEVICE): the only target the reference App wires in
// this repo, since no other output backend is implemented.
const TargetUSBDevice TargetID = 0

// TapFunc receives one routed event for its target.
type TapFunc func(player int, event gpevent.InputEvent)

// Router holds one tap per target.
type Router struct {
	taps map[TargetID]TapFunc
}

// New returns an empty router.
func New() *Router {
	return &Router{taps: make(map[TargetID]TapFunc)}
}

// SetTap registers fn as the tap for target, replacing any prior tap.
func (r *Router) SetTap(target TargetID, fn TapFunc) {
	r.taps[target] = fn
}

// HasTap reports whether target has a non-nil tap registered. Used at
// startup to catch the placeholder-tap bug (spec.md's Open Question): a
// target armed for routing with no real tap would otherwise have every
// event dropped by Publish without any error.
func (r *Router) HasTap(target TargetID) bool {
	fn, ok := r.taps[target]
	return ok && fn != nil
}

// Publish invokes the tap registered for target, if any. An unregistered
// target silently drops the event — matching spec.md's "missing capability
// ⇒ feature disabled" policy, since an output with no tap is an output that
// was never wired into routing at all.
func (r *Router) Publish(target TargetID, player int, event gpevent.InputEvent) {
	if player < 0 || player >= gpevent.MaxPlayers {
		return
	}
	if fn, ok := r.taps[target]; ok && fn != nil {
		fn(player, event)
	}
}
