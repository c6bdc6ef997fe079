package session

import "time"

// Phase represents the current step of the breathing pattern.
type Phase string

const (
	PhaseReady    Phase = "ready"
	PhaseInhale   Phase = "inhale"
	PhaseHold     Phase = "hold"
	PhaseExhale   Phase = "exhale"
	PhaseComplete Phase = "complete"
)

// EventType defines the type of engine event.
type EventType string

const (
	EventStateChange EventType = "state_change"
	EventProgress    EventType = "progress"
	EventCompleted   EventType = "completed"
	EventStoreError  EventType = "store_error"
)

// Event represents an engine update for observers.
type Event struct {
	Type              EventType
	Phase             Phase
	PhaseDuration     time.Duration
	Active            bool
	TimeLeft          time.Duration
	HoldDuration      time.Duration
	CompletedSessions int
	ShowCelebration   bool
	Message           string
	At                time.Time
}

// Status is a point-in-time snapshot of the session state.
type Status struct {
	Phase             Phase
	Active            bool
	TimeLeft          time.Duration
	HoldDuration      time.Duration
	CompletedSessions int
	ShowCelebration   bool
}
