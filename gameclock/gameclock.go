// Package gameclock drives in-game time. The game runs on an accelerated
// calendar so a season of satellite passes fits into one play session; the
// clock also fires periodic ticks that the server uses for autosave.
package gameclock

import (
	"sync"
	"time"
)

// Clock is the read-only view handed to components that only need the
// current in-game time.
type Clock interface {
	// Now returns the current in-game time.
	Now() time.Time
}

// Mode describes how the GameClock advances.
type Mode int

const (
	// RealTime advances in-game time at wall-clock speed.
	RealTime Mode = iota
	// Accelerated advances in-game time by StepPerTick on every tick.
	Accelerated
)

// GameClock advances in-game time and notifies registered listeners on
// every tick. It implements Clock.
type GameClock struct {
	mu sync.RWMutex

	StartTime time.Time
	// Tick is the wall-clock interval between listener notifications.
	Tick time.Duration
	// StepPerTick is how far in-game time jumps each tick in Accelerated
	// mode; ignored in RealTime mode.
	StepPerTick time.Duration
	Mode        Mode

	current   time.Time
	listeners []func(time.Time)
}

// New constructs a clock positioned at start.
func New(start time.Time, tick, stepPerTick time.Duration, mode Mode) *GameClock {
	return &GameClock{
		StartTime:   start,
		Tick:        tick,
		StepPerTick: stepPerTick,
		Mode:        mode,
		current:     start,
	}
}

// Now returns the current in-game time. Implements Clock.
func (gc *GameClock) Now() time.Time {
	gc.mu.RLock()
	defer gc.mu.RUnlock()
	return gc.current
}

// SetTime repositions the clock, e.g. after restoring a snapshot.
func (gc *GameClock) SetTime(t time.Time) {
	gc.mu.Lock()
	gc.current = t
	gc.mu.Unlock()
}

// AddListener registers a callback invoked on every tick. Listeners must
// be registered before Start.
func (gc *GameClock) AddListener(fn func(time.Time)) {
	gc.listeners = append(gc.listeners, fn)
}

// Start runs the clock in a separate goroutine until stop is closed, or
// forever when stop is nil. It returns a channel that is closed when the
// clock loop exits.
func (gc *GameClock) Start(stop <-chan struct{}) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		gc.mu.Lock()
		gc.current = gc.StartTime
		gc.mu.Unlock()

		ticker := time.NewTicker(gc.Tick)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
			}

			step := gc.Tick
			if gc.Mode == Accelerated {
				step = gc.StepPerTick
			}

			gc.mu.Lock()
			gc.current = gc.current.Add(step)
			now := gc.current
			gc.mu.Unlock()

			for _, fn := range gc.listeners {
				fn(now)
			}
		}
	}()
	return done
}
