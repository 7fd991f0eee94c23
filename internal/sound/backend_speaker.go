//go:build !linux

package sound

import (
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// initBackend initializes the default beep speaker backend.
func (mgr *Manager) initBackend(bufferSize int) error {
	if err := speaker.Init(mgr.format.SampleRate, bufferSize); err != nil {
		return err
	}
	speaker.Play(beep.StreamerFunc(mgr.stream))
	mgr.closeBackend = speaker.Clear
	return nil
}
