//go:build linux

package sound

import (
	"github.com/gopxl/beep/v2"
	"github.com/jfreymuth/pulse"
)

// beepToFloat32Func returns a func([]float32) (int, error) that pulls from a beep.Streamer
func beepToFloat32Func(s beep.Streamer, channels int) func([]float32) (int, error) {
	buf := make([][2]float64, 512)
	return func(out []float32) (int, error) {
		frames := len(out) / channels
		if frames > len(buf) {
			frames = len(buf)
		}
		n, ok := s.Stream(buf[:frames])
		if !ok {
			return 0, pulse.EndOfData
		}
		idx := 0
		for i := 0; i < n; i++ {
			for ch := 0; ch < channels; ch++ {
				out[idx] = float32(buf[i][ch])
				idx++
			}
		}
		return idx, nil
	}
}

// initBackend plays through PulseAudio instead of beep/speaker.
func (mgr *Manager) initBackend(bufferSize int) error {
	client, err := pulse.NewClient(pulse.ClientApplicationName("marsrover"))
	if err != nil {
		return err
	}

	latency := float64(bufferSize) / float64(mgr.format.SampleRate)
	stream, err := client.NewPlayback(
		pulse.Float32Reader(beepToFloat32Func(beep.StreamerFunc(mgr.stream), mgr.format.NumChannels)),
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(int(mgr.format.SampleRate)),
		pulse.PlaybackLatency(latency),
	)
	if err != nil {
		client.Close()
		return err
	}
	stream.Start()

	mgr.closeBackend = func() {
		stream.Stop()
		stream.Close()
		client.Close()
	}
	return nil
}
