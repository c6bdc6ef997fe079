package audio

import (
	"math"
	"testing"
	"time"

	"stillbreath/internal/core/session"
)

func TestCueForPhase(t *testing.T) {
	tests := []struct {
		phase  session.Phase
		want   Cue
		hasCue bool
	}{
		{phase: session.PhaseInhale, want: Cue{Frequency: 300, Waveform: WaveSine}, hasCue: true},
		{phase: session.PhaseHold, want: Cue{Frequency: 440, Waveform: WaveSine}, hasCue: true},
		{phase: session.PhaseExhale, want: Cue{Frequency: 350, Waveform: WaveSine}, hasCue: true},
		{phase: session.PhaseReady},
		{phase: session.PhaseComplete},
	}
	for _, tt := range tests {
		t.Run(string(tt.phase), func(t *testing.T) {
			got, ok := cueFor(tt.phase)
			if ok != tt.hasCue {
				t.Fatalf("cueFor(%q) ok = %v, want %v", tt.phase, ok, tt.hasCue)
			}
			if ok && got != tt.want {
				t.Fatalf("cueFor(%q) = %+v, want %+v", tt.phase, got, tt.want)
			}
		})
	}

	if completionCue.Frequency != 600 || completionCue.Waveform != WaveTriangle {
		t.Fatalf("completion cue = %+v, want 600Hz triangle", completionCue)
	}
}

func TestEnvelopeShape(t *testing.T) {
	duration := cueDuration.Seconds()

	if got := envelope(0, duration); got != 0 {
		t.Fatalf("envelope(0) = %v, want 0", got)
	}
	if got := envelope(attackTime.Seconds(), duration); math.Abs(got-peakGain) > 1e-9 {
		t.Fatalf("envelope at attack end = %v, want %v", got, peakGain)
	}
	if got := envelope(duration, duration); math.Abs(got-releaseGain) > 1e-9 {
		t.Fatalf("envelope at end = %v, want %v", got, releaseGain)
	}

	// Attack ramps up, decay ramps down, and the gain never exceeds the peak.
	previous := envelope(attackTime.Seconds(), duration)
	for at := attackTime.Seconds() + 0.01; at <= duration; at += 0.01 {
		current := envelope(at, duration)
		if current > previous {
			t.Fatalf("decay not monotonic at t=%v: %v > %v", at, current, previous)
		}
		previous = current
	}
	for at := 0.0; at <= duration; at += 0.005 {
		if got := envelope(at, duration); got > peakGain+1e-9 {
			t.Fatalf("envelope(%v) = %v exceeds peak gain", at, got)
		}
	}
}

func TestWaveValueBounds(t *testing.T) {
	for _, waveform := range []Waveform{WaveSine, WaveTriangle} {
		for i := 0; i < 1000; i++ {
			at := float64(i) / sampleRate
			value := waveValue(waveform, 440, at)
			if value < -1 || value > 1 {
				t.Fatalf("waveform %d at t=%v out of range: %v", waveform, at, value)
			}
		}
	}

	// A triangle peaks at a quarter period.
	quarter := 1.0 / (4 * 440.0)
	if got := waveValue(WaveTriangle, 440, quarter); math.Abs(got-1) > 1e-6 {
		t.Fatalf("triangle quarter-period value = %v, want 1", got)
	}
}

func TestSynthesizeOutput(t *testing.T) {
	samples := Synthesize(Cue{Frequency: 300, Waveform: WaveSine}, cueDuration)

	wantLen := 2 * int(float64(sampleRate)*cueDuration.Seconds())
	if len(samples) != wantLen {
		t.Fatalf("sample buffer length = %d, want %d", len(samples), wantLen)
	}

	peak := int16(0)
	for i := 0; i+1 < len(samples); i += 2 {
		value := int16(samples[i]) | int16(samples[i+1])<<8
		if value < 0 {
			value = -value
		}
		if value > peak {
			peak = value
		}
	}

	limit := int16(peakGain*math.MaxInt16) + 1
	if peak > limit {
		t.Fatalf("peak amplitude %d exceeds gain limit %d", peak, limit)
	}
	if peak == 0 {
		t.Fatal("synthesized cue is silent")
	}
}

func TestSynthesizeStartsSilent(t *testing.T) {
	samples := Synthesize(Cue{Frequency: 600, Waveform: WaveTriangle}, 200*time.Millisecond)
	if samples[0] != 0 || samples[1] != 0 {
		t.Fatalf("first sample = %d %d, want silence", samples[0], samples[1])
	}
}
