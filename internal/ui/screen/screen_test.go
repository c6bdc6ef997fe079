package screen

import (
	"testing"
	"time"

	"fyne.io/fyne/v2/test"

	"stillbreath/internal/core/session"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name  string
		value time.Duration
		want  string
	}{
		{name: "zero", value: 0, want: "00:00"},
		{name: "seconds only", value: 42 * time.Second, want: "00:42"},
		{name: "minutes and seconds", value: 3*time.Minute + 5*time.Second, want: "03:05"},
		{name: "negative clamps", value: -time.Second, want: "00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatDuration(tt.value); got != tt.want {
				t.Fatalf("formatDuration(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestPhaseDescription(t *testing.T) {
	tests := []struct {
		phase session.Phase
		want  string
	}{
		{phase: session.PhaseReady, want: "Ready"},
		{phase: session.PhaseInhale, want: "Breathe in"},
		{phase: session.PhaseHold, want: "Hold"},
		{phase: session.PhaseExhale, want: "Breathe out"},
		{phase: session.PhaseComplete, want: "Complete"},
	}
	for _, tt := range tests {
		if got := phaseDescription(tt.phase); got != tt.want {
			t.Errorf("phaseDescription(%q) = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

func newTestScreen(t *testing.T, callbacks Callbacks) *Window {
	t.Helper()
	app := test.NewApp()
	t.Cleanup(app.Quit)
	choices := []time.Duration{2 * time.Second, 4 * time.Second}
	return New(app, choices, callbacks)
}

func progressEvent(active bool, phase session.Phase, timeLeft time.Duration) session.Event {
	return session.Event{
		Type:         session.EventProgress,
		Phase:        phase,
		Active:       active,
		TimeLeft:     timeLeft,
		HoldDuration: 4 * time.Second,
	}
}

func TestApplyUpdatesLabels(t *testing.T) {
	screen := newTestScreen(t, Callbacks{})

	screen.Apply(progressEvent(true, session.PhaseHold, 95*time.Second))

	if got := screen.phaseLabel.Text; got != "Hold" {
		t.Fatalf("phase label = %q, want %q", got, "Hold")
	}
	if got := screen.timerLabel.Text; got != "01:35" {
		t.Fatalf("timer label = %q, want %q", got, "01:35")
	}
	if got := screen.toggleButton.Text; got != "Pause" {
		t.Fatalf("toggle button = %q, want %q", got, "Pause")
	}
	if !screen.holdSelect.Disabled() {
		t.Fatal("hold selector enabled during an active session")
	}
}

func TestApplyPausedShowsFrozenPhase(t *testing.T) {
	screen := newTestScreen(t, Callbacks{})

	screen.Apply(progressEvent(false, session.PhaseInhale, time.Minute))

	if got := screen.phaseLabel.Text; got != "Breathe in (paused)" {
		t.Fatalf("phase label = %q, want paused inhale", got)
	}
	if got := screen.toggleButton.Text; got != "Resume" {
		t.Fatalf("toggle button = %q, want %q", got, "Resume")
	}
	if screen.holdSelect.Disabled() {
		t.Fatal("hold selector disabled while paused")
	}
}

func TestCelebrationVisibility(t *testing.T) {
	screen := newTestScreen(t, Callbacks{})

	event := progressEvent(false, session.PhaseComplete, 0)
	event.ShowCelebration = true
	screen.Apply(event)
	if !screen.celebration.Visible() {
		t.Fatal("celebration hidden after completion")
	}

	event.ShowCelebration = false
	event.Phase = session.PhaseReady
	screen.Apply(event)
	if screen.celebration.Visible() {
		t.Fatal("celebration still visible after acknowledge")
	}
}

func TestHoldSelectorEmitsIntent(t *testing.T) {
	var got time.Duration
	screen := newTestScreen(t, Callbacks{
		OnSetHold: func(value time.Duration) { got = value },
	})

	screen.holdSelect.SetSelected("2 seconds")

	if got != 2*time.Second {
		t.Fatalf("OnSetHold received %v, want 2s", got)
	}
}
