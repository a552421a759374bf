// Package audio plays the weather ambience: a procedurally generated
// rain bed whose level follows the active weather profile.
package audio

import (
	"fmt"
	gomath "math"
	"math/rand"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
)

// DefaultSampleRate is the playback sample rate.
const DefaultSampleRate = beep.SampleRate(44100)

// Ambience owns the speaker and one looping rain-noise streamer.
// Intensity 0 silences the bed without tearing the speaker down, so
// weather transitions never glitch the device.
type Ambience struct {
	mu sync.Mutex

	initialized bool
	sampleRate  beep.SampleRate

	ctrl   *beep.Ctrl
	volume *effects.Volume

	intensity float64
	muted     bool
}

// NewAmbience creates a silent ambience. Call Init before use.
func NewAmbience() *Ambience {
	return &Ambience{}
}

// Init opens the speaker and starts the rain bed at zero intensity.
func (a *Ambience) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.initialized {
		return nil
	}

	a.sampleRate = DefaultSampleRate
	if err := speaker.Init(a.sampleRate, a.sampleRate.N(time.Second/30)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	a.ctrl = &beep.Ctrl{Streamer: newRainStreamer(), Paused: false}
	a.volume = &effects.Volume{
		Streamer: a.ctrl,
		Base:     2,
		Silent:   true,
	}
	speaker.Play(a.volume)

	a.initialized = true
	return nil
}

// IsInitialized reports whether the speaker is open.
func (a *Ambience) IsInitialized() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initialized
}

// SetIntensity sets the rain bed level, 0 to 1.
func (a *Ambience) SetIntensity(v float32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.intensity = clamp(float64(v), 0, 1)
	a.apply()
}

// Intensity returns the current level.
func (a *Ambience) Intensity() float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return float32(a.intensity)
}

// SetMuted pauses or resumes the bed without losing the intensity.
func (a *Ambience) SetMuted(m bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.muted = m
	a.apply()
}

// Muted reports the mute flag.
func (a *Ambience) Muted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.muted
}

// apply pushes intensity and mute onto the live streamer chain.
// Callers hold a.mu.
func (a *Ambience) apply() {
	if !a.initialized {
		return
	}
	speaker.Lock()
	a.ctrl.Paused = a.muted
	if a.intensity <= 0 {
		a.volume.Silent = true
	} else {
		a.volume.Silent = false
		a.volume.Volume = volumeToDb(a.intensity)
	}
	speaker.Unlock()
}

// Close shuts the speaker down. Idempotent.
func (a *Ambience) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.initialized {
		return
	}
	speaker.Clear()
	a.ctrl = nil
	a.volume = nil
	a.initialized = false
}

// volumeToDb converts a 0-1 level to the dB scale effects.Volume uses.
func volumeToDb(vol float64) float64 {
	if vol <= 0 {
		return -100
	}
	return 20 * gomath.Log10(vol)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// rainStreamer generates an endless rain-like bed: low-pass filtered
// white noise with sparse droplet transients.
type rainStreamer struct {
	rng *rand.Rand

	// one-pole low-pass state per channel
	lp [2]float64

	// droplet envelope
	droplet     float64
	dropletPan  float64
	nextDroplet int
	sampleClock int
}

func newRainStreamer() *rainStreamer {
	rs := &rainStreamer{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	rs.scheduleDroplet()
	return rs
}

// scheduleDroplet picks the next droplet 30-250ms out.
func (r *rainStreamer) scheduleDroplet() {
	min := int(DefaultSampleRate) * 30 / 1000
	max := int(DefaultSampleRate) * 250 / 1000
	r.nextDroplet = r.sampleClock + min + r.rng.Intn(max-min)
}

func (r *rainStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	const (
		alpha        = 0.08 // low-pass coefficient, keeps the hiss dull
		bedGain      = 0.35
		dropletGain  = 0.5
		dropletDecay = 0.9992
	)

	for i := range samples {
		for ch := 0; ch < 2; ch++ {
			white := r.rng.Float64()*2 - 1
			r.lp[ch] += alpha * (white - r.lp[ch])
			samples[i][ch] = r.lp[ch] * bedGain
		}

		if r.sampleClock >= r.nextDroplet {
			r.droplet = dropletGain
			r.dropletPan = r.rng.Float64()
			r.scheduleDroplet()
		}
		if r.droplet > 0.001 {
			tick := (r.rng.Float64()*2 - 1) * r.droplet
			samples[i][0] += tick * (1 - r.dropletPan)
			samples[i][1] += tick * r.dropletPan
			r.droplet *= dropletDecay
		}

		r.sampleClock++
	}
	return len(samples), true
}

func (r *rainStreamer) Err() error {
	return nil
}
