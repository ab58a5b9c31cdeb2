// Package clock holds the countdown state for one turn. It is pure state:
// an external 1-second driver calls Tick, and the session owner decides
// what an expiry means. The clock never restarts itself.
package clock

import constants "github.com/christophrus/rummikub-tracker/internal/constants"

// Clock counts a single turn down. ConfiguredDuration is the live duration
// for this turn (it grows when the turn is extended); the baseline the
// session reverts to between turns is tracked by the session, not here.
type Clock struct {
	SecondsRemaining   int
	ConfiguredDuration int
	Active             bool
}

func New(duration int) *Clock {
	return &Clock{
		SecondsRemaining:   duration,
		ConfiguredDuration: duration,
		Active:             false,
	}
}

// Start activates the countdown. No-op if already running.
func (c *Clock) Start() {
	c.Active = true
}

// Pause halts the countdown without touching the remaining time.
func (c *Clock) Pause() {
	c.Active = false
}

// Reset restores the full configured duration and activates the countdown.
func (c *Clock) Reset() {
	c.SecondsRemaining = c.ConfiguredDuration
	c.Active = true
}

// SetDuration reconfigures the turn length and applies it immediately,
// overriding any countdown in progress.
func (c *Clock) SetDuration(d int) {
	c.ConfiguredDuration = d
	c.SecondsRemaining = d
}

// Extend adds seconds to both the remaining time and the live configured
// duration, so a subsequent Reset reflects the extended value. The
// session's baseline duration is unaffected.
func (c *Clock) Extend(seconds int) {
	c.SecondsRemaining += seconds
	c.ConfiguredDuration += seconds
}

// Tick advances the countdown by one second. lowTime is true while the
// remaining time is in the final-stretch window (a tick cue should sound),
// expired is true exactly once, when the countdown reaches zero; the clock
// deactivates itself and the caller handles the turn change.
func (c *Clock) Tick() (lowTime, expired bool) {
	if !c.Active || c.SecondsRemaining <= 0 {
		return false, false
	}
	c.SecondsRemaining--
	if c.SecondsRemaining == 0 {
		c.Active = false
		return false, true
	}
	if c.SecondsRemaining <= constants.TimerLowTime {
		return true, false
	}
	return false, false
}
