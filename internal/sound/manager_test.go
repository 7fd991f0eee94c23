package sound

import (
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
)

// The tests never open an audio device: they pull samples straight from the
// mixer the backend would read.

func loadedManager(t *testing.T) *Manager {
	t.Helper()
	mgr := newManager(beep.SampleRate(CommonSampleRate))
	if err := mgr.LoadSamples(); err != nil {
		t.Fatalf("LoadSamples() error = %v", err)
	}
	return mgr
}

func peak(samples [][2]float64) float64 {
	var max float64
	for _, s := range samples {
		if v := s[0]; v > max {
			max = v
		} else if -v > max {
			max = -v
		}
	}
	return max
}

func TestLoadSamples_Lengths(t *testing.T) {
	mgr := loadedManager(t)
	sr := beep.SampleRate(CommonSampleRate)
	for name, notes := range tunes {
		var want int
		for _, n := range notes {
			want += sr.N(n.dur)
		}
		buf, ok := mgr.samples[name]
		if !ok {
			t.Errorf("sample %s not loaded", name)
			continue
		}
		if buf.Len() != want {
			t.Errorf("sample %s length = %d, want %d", name, buf.Len(), want)
		}
	}
}

func TestSynthesize_AboveNyquist(t *testing.T) {
	format := beep.Format{SampleRate: 8000, NumChannels: 1, Precision: 2}
	if _, err := synthesize(format, []note{{freq: 5000, dur: time.Millisecond}}); err == nil {
		t.Error("synthesize() should fail for a tone above half the sample rate")
	}
}

func TestPlay_Mixes(t *testing.T) {
	mgr := loadedManager(t)
	if err := mgr.Play(MOVE); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	buf := make([][2]float64, 1024)
	n, ok := mgr.stream(buf)
	if !ok || n != len(buf) {
		t.Fatalf("stream() = %d, %v", n, ok)
	}
	if peak(buf) == 0 {
		t.Error("expected audible samples after Play")
	}
}

func TestPlay_Muted(t *testing.T) {
	mgr := loadedManager(t)
	mgr.Mute()
	if !mgr.Muted() {
		t.Fatal("Muted() = false after Mute")
	}
	if err := mgr.Play(TURN); err != nil {
		t.Fatalf("Play() error = %v", err)
	}
	buf := make([][2]float64, 512)
	mgr.stream(buf)
	if peak(buf) != 0 {
		t.Error("muted manager produced sound")
	}

	mgr.Unmute()
	if mgr.Muted() {
		t.Error("Muted() = true after Unmute")
	}
}

func TestPlay_Unknown(t *testing.T) {
	mgr := loadedManager(t)
	if err := mgr.Play("horn"); err == nil {
		t.Error("Play() of an unknown sample should fail")
	}
}

func TestPlay_RestartsSameCue(t *testing.T) {
	mgr := loadedManager(t)
	mgr.Play(REJECT)
	first := mgr.ctrl[REJECT]
	mgr.Play(REJECT)
	if first.Streamer != nil {
		t.Error("replaying a cue should drain the previous instance")
	}
	if mgr.ctrl[REJECT] == first {
		t.Error("replaying a cue should start a new instance")
	}
}

func TestNilManager(t *testing.T) {
	var mgr *Manager
	if err := mgr.Play(MOVE); err != nil {
		t.Errorf("nil Play() error = %v", err)
	}
	if !mgr.Muted() {
		t.Error("nil manager should report muted")
	}
	mgr.Mute()
	mgr.Unmute()
	mgr.SetMasterVolume(-3)
	mgr.Close()
}
