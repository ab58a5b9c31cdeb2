// Package audio defines the cue surface the game core calls into. The
// core never synthesizes sound; it emits semantic cues and the browser
// renders them (oscillator tones and speech synthesis live client-side).
package audio

import (
	realtime "github.com/christophrus/rummikub-tracker/internal/realtime"
)

// Notifier is fired best-effort from game transitions. Implementations
// must never block or fail game logic.
type Notifier interface {
	PlayTick()
	PlayTurnChime()
	PlayVictoryFanfare()
	Speak(text, locale string)
}

// Event prefixes on the realtime channel. The browser maps these to the
// tick tone, the two-note turn chime, the fanfare and speech synthesis.
const (
	CueTick    = "audio:tick"
	CueTurn    = "audio:turn"
	CueFanfare = "audio:fanfare"
	CueSpeak   = "audio:speak" // audio:speak|<locale>|<text>
)

// EventNotifier publishes cues to the realtime broadcaster.
type EventNotifier struct {
	Events *realtime.Broadcaster
}

func NewEventNotifier(events *realtime.Broadcaster) *EventNotifier {
	return &EventNotifier{Events: events}
}

func (n *EventNotifier) PlayTick() {
	n.Events.Publish(CueTick)
}

func (n *EventNotifier) PlayTurnChime() {
	n.Events.Publish(CueTurn)
}

func (n *EventNotifier) PlayVictoryFanfare() {
	n.Events.Publish(CueFanfare)
}

func (n *EventNotifier) Speak(text, locale string) {
	n.Events.Publish(CueSpeak + "|" + locale + "|" + text)
}

// Noop is used headless and in tests.
type Noop struct{}

func (Noop) PlayTick()                 {}
func (Noop) PlayTurnChime()            {}
func (Noop) PlayVictoryFanfare()       {}
func (Noop) Speak(text, locale string) {}
