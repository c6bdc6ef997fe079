package audio

import (
	"bytes"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"stillbreath/internal/core/session"
)

const (
	sampleRate  = 44100
	cueDuration = 500 * time.Millisecond
	attackTime  = 100 * time.Millisecond
	peakGain    = 0.1
	releaseGain = 0.001
)

// Waveform selects the oscillator shape of a cue.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveTriangle
)

// Cue describes one tone: pitch and oscillator shape.
type Cue struct {
	Frequency float64
	Waveform  Waveform
}

var completionCue = Cue{Frequency: 600, Waveform: WaveTriangle}

func cueFor(phase session.Phase) (Cue, bool) {
	switch phase {
	case session.PhaseInhale:
		return Cue{Frequency: 300, Waveform: WaveSine}, true
	case session.PhaseHold:
		return Cue{Frequency: 440, Waveform: WaveSine}, true
	case session.PhaseExhale:
		return Cue{Frequency: 350, Waveform: WaveSine}, true
	}
	return Cue{}, false
}

// Player renders short synthesized cues through the system audio device.
// The device context is created lazily on first use; every failure mode
// results in silence, never in an error reaching the session engine.
type Player struct {
	mu      sync.Mutex
	context *oto.Context
	ready   chan struct{}
	failed  bool
}

// NewPlayer creates a Player without touching the audio device.
func NewPlayer() *Player {
	return &Player{}
}

// Acquire creates the audio device context if it does not exist yet.
// Idempotent; the first call should happen inside a user-initiated action.
func (player *Player) Acquire() {
	player.mu.Lock()
	defer player.mu.Unlock()
	if player.context != nil || player.failed {
		return
	}

	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		player.failed = true
		return
	}
	player.context = context
	player.ready = ready
}

// PhaseCue plays the tone for the given breathing phase, if it has one.
func (player *Player) PhaseCue(phase session.Phase) {
	if cue, ok := cueFor(phase); ok {
		player.play(cue)
	}
}

// CompletionCue plays the session-completed tone.
func (player *Player) CompletionCue() {
	player.play(completionCue)
}

func (player *Player) play(cue Cue) {
	player.Acquire()

	player.mu.Lock()
	context := player.context
	ready := player.ready
	player.mu.Unlock()
	if context == nil {
		return
	}

	samples := Synthesize(cue, cueDuration)
	go func() {
		<-ready
		tone := context.NewPlayer(bytes.NewReader(samples))
		tone.Play()
		for tone.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		_ = tone.Close()
	}()
}

// Synthesize renders a cue as 16-bit little-endian mono PCM.
func Synthesize(cue Cue, duration time.Duration) []byte {
	total := int(float64(sampleRate) * duration.Seconds())
	data := make([]byte, 2*total)
	for i := 0; i < total; i++ {
		at := float64(i) / sampleRate
		value := waveValue(cue.Waveform, cue.Frequency, at) * envelope(at, duration.Seconds())
		sample := int16(value * math.MaxInt16)
		data[2*i] = byte(sample)
		data[2*i+1] = byte(sample >> 8)
	}
	return data
}

// envelope shapes the cue: a linear attack to the peak gain over the first
// 0.1s, then an exponential decay to near-silence at the end.
func envelope(at, duration float64) float64 {
	attack := attackTime.Seconds()
	if at < attack {
		return peakGain * at / attack
	}
	release := duration - attack
	if release <= 0 {
		return peakGain
	}
	return peakGain * math.Pow(releaseGain/peakGain, (at-attack)/release)
}

func waveValue(waveform Waveform, frequency, at float64) float64 {
	angle := 2 * math.Pi * frequency * at
	switch waveform {
	case WaveTriangle:
		return (2 / math.Pi) * math.Asin(math.Sin(angle))
	default:
		return math.Sin(angle)
	}
}
