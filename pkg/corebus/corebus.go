// Package corebus models the dual-core handshake and flash-write lockout
// protocol of spec.md §4.9/§5. RP2040's real Core 1 launch is a board
// runtime primitive, not something importable from Go module space — no
// repo in the retrieval pack exercises it — so this is a deliberate,
// documented adaptation: Core 1 is modeled as a dedicated goroutine
// synchronized with the same flag-then-wake handshake the teacher's
// main.c implements with __wfe/__sev, and the flash lockout as a mutex
// that serializes flash writes; the Core-1 goroutine is not paused by it.
package corebus

import "sync"

// Bus coordinates the single optional Core-1 task and the flash-write
// lockout that must park it.
type Bus struct {
	mu           sync.Mutex
	core1Ready   chan struct{}
	core1Task    func()
	taskAssigned bool

	lockout sync.Mutex // held by FlashLockout for the duration of a write
	started bool

	onDroppedTask func()
}

// New returns a Bus with Core 1 not yet launched.
func New() *Bus {
	return &Bus{core1Ready: make(chan struct{})}
}

// LaunchCore1 starts the Core-1 goroutine: it runs flashInit (the
// flash-lockout participation init, spec.md §4.9 step 1) then parks until
// Start's wake arrives — mirroring main.c's core1_wrapper, which
// initializes flash safety before the main loop has done anything else.
func (b *Bus) LaunchCore1(flashInit func()) {
	go func() {
		if flashInit != nil {
			flashInit()
		}
		<-b.core1Ready
		b.mu.Lock()
		task := b.core1Task
		b.mu.Unlock()
		if task != nil {
			task()
		}
		// A nil task means Core 1 idles: nothing further to run. Real
		// firmware would __wfi() in a loop; the goroutine simply returns,
		// since there is no hardware interrupt to wait for here.
	}()
}

// AssignCore1Task records which output's Core1Task (if any) should run on
// Core 1. Only the first non-nil Core1Task across outputs, in enumeration
// order, is ever bound (spec.md §8 property 5); every subsequent one is
// reported via onDropped, never silently lost to the caller.
func (b *Bus) AssignCore1Task(outputs []func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, task := range outputs {
		if task == nil {
			continue
		}
		if !b.taskAssigned {
			b.core1Task = task
			b.taskAssigned = true
		} else if b.onDroppedTask != nil {
			b.onDroppedTask()
		}
	}
}

// OnDroppedCore1Task registers a callback invoked once per Core1Task that
// was discovered but could not be bound because one was already assigned.
// Tests use this to assert spec.md §8 property 5.
func (b *Bus) OnDroppedCore1Task(fn func()) {
	b.onDroppedTask = fn
}

// Start wakes Core 1 so it begins running its assigned task (or idles if
// none was assigned). Core 0 must only call this after every input and
// output has been initialized (spec.md §4.9).
func (b *Bus) Start() {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return
	}
	b.started = true
	b.mu.Unlock()
	close(b.core1Ready)
}

// FlashLockout runs fn with Core 1 parked, the Go analogue of the chip
// vendor's flash_safe_execute primitive (spec.md §4.1, §5). Because this
// module doesn't model a second real CPU, the lockout is a mutex rather
// than a literal core pause; callers still MUST route every flash write
// through it so the ordering requirement is exercised and testable.
func (b *Bus) FlashLockout(fn func() error) error {
	b.lockout.Lock()
	defer b.lockout.Unlock()
	return fn()
}
