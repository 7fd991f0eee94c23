// Package sound plays short synthesized cues for rover actions. Samples are
// rendered once into memory and mixed into a single output stream, so a new
// cue interrupts the previous instance of the same cue instead of overlapping it.
package sound

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/generators"
)

// Sound names
const (
	TURN   = "turn"
	MOVE   = "move"
	WRAP   = "wrap"
	REJECT = "reject"
)

const CommonSampleRate = 44100 // Sample rate all cues are rendered at

type note struct {
	freq float64 // Hz
	dur  time.Duration
}

var tunes = map[string][]note{
	TURN:   {{freq: 660, dur: 40 * time.Millisecond}},
	MOVE:   {{freq: 440, dur: 60 * time.Millisecond}},
	WRAP:   {{freq: 440, dur: 50 * time.Millisecond}, {freq: 880, dur: 70 * time.Millisecond}},
	REJECT: {{freq: 220, dur: 120 * time.Millisecond}, {freq: 165, dur: 160 * time.Millisecond}},
}

// Manager controls synthesis and playback of the cues.
type Manager struct {
	mu           sync.Mutex
	samples      map[string]*beep.Buffer
	ctrl         map[string]*beep.Ctrl
	mix          *beep.Mixer
	format       beep.Format
	muted        bool
	vol          *effects.Volume // master volume
	closeBackend func()
}

// NewManager creates a Manager and attaches it to the platform audio backend.
func NewManager(sampleRate beep.SampleRate) (*Manager, error) {
	mgr := newManager(sampleRate)
	if err := mgr.initBackend(sampleRate.N(time.Second / 10)); err != nil {
		return nil, fmt.Errorf("audio backend: %w", err)
	}
	return mgr, nil
}

func newManager(sampleRate beep.SampleRate) *Manager {
	mgr := &Manager{
		samples: make(map[string]*beep.Buffer),
		ctrl:    make(map[string]*beep.Ctrl),
		mix:     &beep.Mixer{},
		format:  beep.Format{SampleRate: sampleRate, NumChannels: 1, Precision: 2},
	}
	mgr.vol = &effects.Volume{
		Streamer: mgr.mix,
		Base:     2,
		Volume:   0, // 0 dB
	}
	return mgr
}

// LoadSamples renders every cue into memory.
func (mgr *Manager) LoadSamples() error {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	for name, notes := range tunes {
		buf, err := synthesize(mgr.format, notes)
		if err != nil {
			return fmt.Errorf("sample %s: %w", name, err)
		}
		mgr.samples[name] = buf
	}
	return nil
}

// synthesize renders notes back to back into a replayable buffer.
func synthesize(format beep.Format, notes []note) (*beep.Buffer, error) {
	buf := beep.NewBuffer(format)
	for _, n := range notes {
		tone, err := generators.SineTone(format.SampleRate, n.freq)
		if err != nil {
			return nil, fmt.Errorf("%.0f Hz tone: %w", n.freq, err)
		}
		buf.Append(&effects.Volume{
			Streamer: beep.Take(format.SampleRate.N(n.dur), tone),
			Base:     2,
			Volume:   -2,
		})
	}
	return buf, nil
}

// Play stops current playback of the cue (if any) and plays it from the start.
// Playing on a nil Manager is a no-op so callers without audio need no checks.
func (mgr *Manager) Play(name string) error {
	if mgr == nil {
		return nil
	}
	mgr.mu.Lock()
	defer mgr.mu.Unlock()

	buf, ok := mgr.samples[name]
	if !ok {
		return errors.New("sample not loaded: " + name)
	}

	// Interrupt previous if exists
	if ctrl, exists := mgr.ctrl[name]; exists {
		ctrl.Streamer = nil
	}
	if mgr.muted {
		delete(mgr.ctrl, name)
		return nil
	}

	ctrl := &beep.Ctrl{Streamer: buf.Streamer(0, buf.Len())}
	mgr.mix.Add(ctrl)
	mgr.ctrl[name] = ctrl
	return nil
}

// SetMasterVolume sets the output volume in dB relative to the rendered cues.
func (mgr *Manager) SetMasterVolume(db float64) {
	if mgr == nil {
		return
	}
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	mgr.vol.Volume = db
}

// Mute disables all audio output.
func (mgr *Manager) Mute() {
	if mgr == nil {
		return
	}
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	mgr.muted = true
	mgr.vol.Silent = true
}

// Unmute enables audio output.
func (mgr *Manager) Unmute() {
	if mgr == nil {
		return
	}
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	mgr.muted = false
	mgr.vol.Silent = false
}

// Muted reports whether output is disabled. A nil Manager is always muted.
func (mgr *Manager) Muted() bool {
	if mgr == nil {
		return true
	}
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	return mgr.muted
}

// stream feeds the backend. It holds the manager lock so Play can add
// streamers while the backend is pulling samples.
func (mgr *Manager) stream(samples [][2]float64) (int, bool) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	return mgr.vol.Stream(samples)
}

// Close stops the backend and frees resources.
func (mgr *Manager) Close() {
	if mgr == nil || mgr.closeBackend == nil {
		return
	}
	mgr.closeBackend()
}
