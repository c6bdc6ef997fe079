package guide

import (
	"context"
	"sync"
	"time"

	"stillbreath/internal/core/session"
)

// Config contains guide animation values.
type Config struct {
	MinScale      float32
	MaxScale      float32
	FrameInterval time.Duration
}

// DefaultConfig returns the breathing circle defaults.
func DefaultConfig() Config {
	return Config{
		MinScale:      0.55,
		MaxScale:      1.0,
		FrameInterval: 33 * time.Millisecond,
	}
}

// Animator drives the pulsing breathing circle: it grows over the inhale,
// stays full during the hold and shrinks over the exhale. Scale updates are
// delivered through the apply callback from the animator's own goroutine.
type Animator struct {
	mu     sync.Mutex
	config Config
	apply  func(scale float32)
	cancel context.CancelFunc
	scale  float32
}

// New creates an animator. apply may be called from any goroutine.
func New(config Config, apply func(scale float32)) *Animator {
	if config.FrameInterval <= 0 {
		config.FrameInterval = 33 * time.Millisecond
	}
	return &Animator{
		config: config,
		apply:  apply,
		scale:  config.MinScale,
	}
}

// EnterPhase replaces the running animation with the one for phase.
func (animator *Animator) EnterPhase(phase session.Phase, duration time.Duration) {
	switch phase {
	case session.PhaseInhale:
		animator.ramp(animator.config.MinScale, animator.config.MaxScale, duration)
	case session.PhaseHold:
		animator.settle(animator.config.MaxScale)
	case session.PhaseExhale:
		animator.ramp(animator.config.MaxScale, animator.config.MinScale, duration)
	default:
		animator.settle(animator.config.MinScale)
	}
}

// Freeze stops the animation at its current scale (paused session).
func (animator *Animator) Freeze() {
	animator.stop()
}

// Reset stops the animation and returns the circle to its resting size.
func (animator *Animator) Reset() {
	animator.settle(animator.config.MinScale)
}

// Scale returns the most recently applied scale.
func (animator *Animator) Scale() float32 {
	animator.mu.Lock()
	defer animator.mu.Unlock()
	return animator.scale
}

func (animator *Animator) settle(scale float32) {
	animator.start(func(ctx context.Context) {
		animator.applyScale(scale)
	})
}

func (animator *Animator) ramp(from, to float32, duration time.Duration) {
	animator.start(func(ctx context.Context) {
		animator.applyScale(from)
		if duration <= 0 {
			animator.applyScale(to)
			return
		}

		start := time.Now()
		ticker := time.NewTicker(animator.config.FrameInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				progress := float64(now.Sub(start)) / float64(duration)
				if progress >= 1 {
					animator.applyScale(to)
					return
				}
				animator.applyScale(lerp(from, to, float32(progress)))
			}
		}
	})
}

func (animator *Animator) start(run func(context.Context)) {
	animator.mu.Lock()
	if animator.cancel != nil {
		animator.cancel()
	}
	runCtx, cancel := context.WithCancel(context.Background())
	animator.cancel = cancel
	animator.mu.Unlock()

	go run(runCtx)
}

func (animator *Animator) stop() {
	animator.mu.Lock()
	defer animator.mu.Unlock()
	if animator.cancel != nil {
		animator.cancel()
		animator.cancel = nil
	}
}

func (animator *Animator) applyScale(scale float32) {
	animator.mu.Lock()
	animator.scale = scale
	apply := animator.apply
	animator.mu.Unlock()
	if apply != nil {
		apply(scale)
	}
}

func lerp(from, to, progress float32) float32 {
	return from + (to-from)*progress
}
