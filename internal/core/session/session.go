package session

import (
	"errors"
	"sync"
	"time"

	"stillbreath/internal/core/model"
)

// ErrSessionActive indicates a setting cannot change while a session runs.
var ErrSessionActive = errors.New("session active")

// ErrHoldNotAllowed indicates the requested hold duration is not permitted.
var ErrHoldNotAllowed = errors.New("hold duration not allowed")

// CounterStore persists the completed-session counter.
type CounterStore interface {
	LoadCount() (int, error)
	SaveCount(count int) error
}

// CueEmitter plays short audio cues for phase and completion events.
// Implementations must not block; playback is best-effort and failures
// are swallowed.
type CueEmitter interface {
	Acquire()
	PhaseCue(phase Phase)
	CompletionCue()
}

// Timer is a cancellable one-shot timer handle.
type Timer interface {
	Stop() bool
}

// Options contains runtime options for the Engine.
type Options struct {
	TickInterval time.Duration
	// AfterFunc schedules a deferred callback. Defaults to time.AfterFunc;
	// tests substitute a manual scheduler.
	AfterFunc func(d time.Duration, fn func()) Timer
}

// Engine is the state machine driving one guided-breathing session at a
// time: a one-second countdown clock and a repeating inhale/hold/exhale
// phase cycle, both live only while the session is active.
type Engine struct {
	mu           sync.Mutex
	config       model.SessionConfig
	options      Options
	phase        Phase
	timeLeft     time.Duration
	active       bool
	holdDuration time.Duration
	completed    int
	celebrating  bool
	cues         CueEmitter
	store        CounterStore
	pending      Timer
	generation   uint64
	events       []chan Event
	stopCh       chan struct{}
	running      bool
}

// New creates an Engine with the provided configuration.
func New(config model.SessionConfig, options Options) *Engine {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.AfterFunc == nil {
		options.AfterFunc = func(d time.Duration, fn func()) Timer {
			return time.AfterFunc(d, fn)
		}
	}
	if !config.HoldAllowed(config.DefaultHoldDuration) && len(config.AllowedHoldDurations) > 0 {
		config.DefaultHoldDuration = config.AllowedHoldDurations[0]
	}

	return &Engine{
		config:       config,
		options:      options,
		phase:        PhaseReady,
		timeLeft:     config.TotalDuration,
		holdDuration: config.DefaultHoldDuration,
		stopCh:       make(chan struct{}),
	}
}

// SetCueEmitter injects the audio cue emitter.
func (engine *Engine) SetCueEmitter(cues CueEmitter) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.cues = cues
}

// SetCounterStore injects the counter store and loads the persisted total.
func (engine *Engine) SetCounterStore(store CounterStore) {
	count, err := store.LoadCount()

	engine.mu.Lock()
	engine.store = store
	if err == nil && count > engine.completed {
		engine.completed = count
	}
	engine.mu.Unlock()

	if err != nil {
		engine.emit(Event{
			Type:    EventStoreError,
			Message: err.Error(),
			At:      time.Now(),
		})
	}
}

// Subscribe registers a new observer channel.
func (engine *Engine) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	engine.mu.Lock()
	engine.events = append(engine.events, ch)
	engine.mu.Unlock()
	return ch
}

// Start launches the ticking loop. It does not begin a session.
func (engine *Engine) Start() {
	engine.mu.Lock()
	if engine.running {
		engine.mu.Unlock()
		return
	}
	engine.running = true
	engine.mu.Unlock()

	go engine.run()
}

// Stop terminates the ticking loop, cancels any pending phase transition
// and closes observer channels.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	if !engine.running {
		engine.mu.Unlock()
		return
	}
	close(engine.stopCh)
	engine.running = false
	engine.active = false
	engine.cancelPendingLocked()
	events := engine.events
	engine.events = nil
	engine.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// Toggle starts or pauses the session. A finished session is reset instead
// of resumed. The first activation acquires the audio resource so that the
// call chain stays inside the user gesture that triggered it.
func (engine *Engine) Toggle() {
	engine.mu.Lock()
	if !engine.active && engine.timeLeft <= 0 {
		engine.resetLocked()
		engine.emitLocked(engine.eventLocked(EventStateChange))
		engine.mu.Unlock()
		return
	}
	if engine.active {
		engine.active = false
		engine.cancelPendingLocked()
		engine.emitLocked(engine.eventLocked(EventStateChange))
		engine.mu.Unlock()
		return
	}
	cues := engine.cues
	engine.mu.Unlock()

	if cues != nil {
		cues.Acquire()
	}

	engine.mu.Lock()
	if !engine.active && engine.timeLeft > 0 {
		engine.active = true
		// Resume policy: a paused mid-cycle session restarts the
		// breathing pattern from Inhale rather than resuming the
		// interrupted phase timer.
		engine.enterPhaseLocked(PhaseInhale)
	}
	engine.mu.Unlock()
}

// Reset returns the session to its initial state. Idempotent.
func (engine *Engine) Reset() {
	engine.mu.Lock()
	engine.resetLocked()
	engine.emitLocked(engine.eventLocked(EventStateChange))
	engine.mu.Unlock()
}

// AcknowledgeCelebration dismisses the completion overlay and readies the
// next session. The completed-session counter keeps its incremented value.
func (engine *Engine) AcknowledgeCelebration() {
	engine.mu.Lock()
	engine.resetLocked()
	engine.emitLocked(engine.eventLocked(EventStateChange))
	engine.mu.Unlock()
}

// SetHoldDuration changes the hold phase length. Rejected while a session
// is active and for values outside the allowed set.
func (engine *Engine) SetHoldDuration(value time.Duration) error {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.active {
		return ErrSessionActive
	}
	if !engine.config.HoldAllowed(value) {
		return ErrHoldNotAllowed
	}
	engine.holdDuration = value
	engine.emitLocked(engine.eventLocked(EventStateChange))
	return nil
}

// Status returns a snapshot of the current session state.
func (engine *Engine) Status() Status {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return Status{
		Phase:             engine.phase,
		Active:            engine.active,
		TimeLeft:          engine.timeLeft,
		HoldDuration:      engine.holdDuration,
		CompletedSessions: engine.completed,
		ShowCelebration:   engine.celebrating,
	}
}

func (engine *Engine) run() {
	ticker := time.NewTicker(engine.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-engine.stopCh:
			return
		case tickTime := <-ticker.C:
			engine.tick(tickTime)
		}
	}
}

func (engine *Engine) tick(tickTime time.Time) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if !engine.active {
		return
	}

	if engine.timeLeft <= engine.options.TickInterval {
		engine.timeLeft = 0
		engine.completeLocked(tickTime)
		return
	}

	engine.timeLeft -= engine.options.TickInterval
	event := engine.eventLocked(EventProgress)
	event.At = tickTime
	engine.emitLocked(event)
}

func (engine *Engine) completeLocked(now time.Time) {
	engine.active = false
	engine.cancelPendingLocked()
	engine.phase = PhaseComplete
	engine.celebrating = true
	engine.completed++

	if engine.cues != nil {
		engine.cues.CompletionCue()
	}
	if engine.store != nil {
		if err := engine.store.SaveCount(engine.completed); err != nil {
			storeEvent := engine.eventLocked(EventStoreError)
			storeEvent.Message = err.Error()
			engine.emitLocked(storeEvent)
		}
	}

	event := engine.eventLocked(EventCompleted)
	event.At = now
	engine.emitLocked(event)
}

func (engine *Engine) enterPhaseLocked(phase Phase) {
	engine.phase = phase
	duration := engine.phaseDurationLocked(phase)

	if engine.cues != nil {
		engine.cues.PhaseCue(phase)
	}

	engine.cancelPendingLocked()
	generation := engine.generation
	engine.pending = engine.options.AfterFunc(duration, func() {
		engine.advancePhase(generation)
	})

	event := engine.eventLocked(EventStateChange)
	event.PhaseDuration = duration
	engine.emitLocked(event)
}

// advancePhase fires from the pending one-shot timer. The generation check
// makes a transition scheduled before a pause, reset or completion a no-op
// even if its cancellation raced with the timer firing.
func (engine *Engine) advancePhase(generation uint64) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if !engine.active || generation != engine.generation {
		return
	}
	engine.enterPhaseLocked(nextPhase(engine.phase))
}

func (engine *Engine) resetLocked() {
	engine.active = false
	engine.cancelPendingLocked()
	engine.timeLeft = engine.config.TotalDuration
	engine.phase = PhaseReady
	engine.celebrating = false
}

func (engine *Engine) cancelPendingLocked() {
	engine.generation++
	if engine.pending != nil {
		engine.pending.Stop()
		engine.pending = nil
	}
}

func (engine *Engine) phaseDurationLocked(phase Phase) time.Duration {
	switch phase {
	case PhaseInhale:
		return engine.config.InhaleDuration
	case PhaseHold:
		return engine.holdDuration
	case PhaseExhale:
		return engine.config.ExhaleDuration
	}
	return 0
}

func nextPhase(phase Phase) Phase {
	switch phase {
	case PhaseInhale:
		return PhaseHold
	case PhaseHold:
		return PhaseExhale
	default:
		return PhaseInhale
	}
}

func (engine *Engine) eventLocked(eventType EventType) Event {
	return Event{
		Type:              eventType,
		Phase:             engine.phase,
		Active:            engine.active,
		TimeLeft:          engine.timeLeft,
		HoldDuration:      engine.holdDuration,
		CompletedSessions: engine.completed,
		ShowCelebration:   engine.celebrating,
		At:                time.Now(),
	}
}

func (engine *Engine) emit(event Event) {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	engine.emitLocked(event)
}

func (engine *Engine) emitLocked(event Event) {
	events := append([]chan Event(nil), engine.events...)
	for _, ch := range events {
		select {
		case ch <- event:
		default:
		}
	}
}
