package session

import (
	"fmt"
	"time"

	"github.com/avhold/capnode/internal/caps"
	"github.com/avhold/capnode/internal/format"
	"github.com/avhold/capnode/internal/graph"
)

// Format properties live on a stage's elementary-stream output and are
// only readable or writable while that output is disconnected. Every
// accessor below therefore refuses to run during a capture, tears the
// wired sub-graphs back to the skeleton before touching the block, and
// rebuilds whatever was wanted before returning, so the session looks
// the same from the outside across the call.

// withVideoConfig runs fn against the disconnected video format
// accessor, then restores the wiring the session had before the call.
// Callers hold s.mu.
func (s *Session) withVideoConfig(fn func(graph.StreamConfig) error) error {
	if s.state == StateCapturing {
		return ErrCapturing
	}
	if err := s.buildSkeleton(); err != nil {
		return err
	}
	if s.videoCfg == nil {
		return ErrNoStreamConfig
	}
	if err := s.unwire(); err != nil {
		return err
	}
	return s.restoreWiring(fn(s.videoCfg))
}

// withAudioConfig is the audio counterpart of withVideoConfig. Callers
// hold s.mu.
func (s *Session) withAudioConfig(fn func(graph.StreamConfig) error) error {
	if s.state == StateCapturing {
		return ErrCapturing
	}
	if err := s.buildSkeleton(); err != nil {
		return err
	}
	if s.audioCfg == nil {
		return ErrNoStreamConfig
	}
	if err := s.unwire(); err != nil {
		return err
	}
	return s.restoreWiring(fn(s.audioCfg))
}

// restoreWiring rebuilds the sub-graphs recorded in the wanted flags and
// resumes a preview-only assembly. The format access error, if any,
// takes precedence over a rebuild failure. Callers hold s.mu.
func (s *Session) restoreWiring(accessErr error) error {
	wireErr := s.wire()
	if wireErr == nil {
		wireErr = s.startPreviewIfNeeded()
	}
	if accessErr != nil {
		if wireErr != nil {
			s.log.Warn("rewire after format access failed", "error", wireErr)
		}
		return accessErr
	}
	return wireErr
}

// FrameRate returns the video frame rate in frames per second.
func (s *Session) FrameRate() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var fps float64
	err := s.withVideoConfig(func(sc graph.StreamConfig) error {
		b, err := sc.Format()
		if err != nil {
			return fmt.Errorf("session: read video format: %w", err)
		}
		ivl, err := b.FrameInterval()
		if err != nil {
			return err
		}
		if ivl > 0 {
			fps = float64(time.Second) / float64(ivl)
		}
		return nil
	})
	return fps, err
}

// SetFrameRate sets the video frame rate in frames per second.
func (s *Session) SetFrameRate(fps float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fps <= 0 {
		return fmt.Errorf("session: frame rate must be positive, got %g", fps)
	}
	return s.withVideoConfig(func(sc graph.StreamConfig) error {
		return s.mutateFormat(sc, func(b *format.Block) error {
			return b.SetFrameInterval(time.Duration(float64(time.Second) / fps))
		})
	})
}

// FrameSize returns the video frame geometry in pixels.
func (s *Session) FrameSize() (width, height int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err = s.withVideoConfig(func(sc graph.StreamConfig) error {
		b, err := sc.Format()
		if err != nil {
			return fmt.Errorf("session: read video format: %w", err)
		}
		width, height, err = b.FrameSize()
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	return width, height, nil
}

// SetFrameSize sets the video frame geometry in pixels.
func (s *Session) SetFrameSize(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if width <= 0 || height <= 0 {
		return fmt.Errorf("session: frame size must be positive, got %dx%d", width, height)
	}
	return s.withVideoConfig(func(sc graph.StreamConfig) error {
		return s.mutateFormat(sc, func(b *format.Block) error {
			return b.SetFrameSize(width, height)
		})
	})
}

// Channels returns the audio channel count.
func (s *Session) Channels() (int, error) {
	return s.readAudio(func(b *format.Block) (int, error) { return b.Channels() })
}

// SetChannels sets the audio channel count.
func (s *Session) SetChannels(n int) error {
	return s.writeAudio(func(b *format.Block) error { return b.SetChannels(n) })
}

// SampleRate returns the audio sampling rate in Hz.
func (s *Session) SampleRate() (int, error) {
	return s.readAudio(func(b *format.Block) (int, error) { return b.SampleRate() })
}

// SetSampleRate sets the audio sampling rate in Hz.
func (s *Session) SetSampleRate(hz int) error {
	return s.writeAudio(func(b *format.Block) error { return b.SetSampleRate(hz) })
}

// SampleSize returns the audio sample size in bits.
func (s *Session) SampleSize() (int, error) {
	return s.readAudio(func(b *format.Block) (int, error) { return b.SampleSize() })
}

// SetSampleSize sets the audio sample size in bits.
func (s *Session) SetSampleSize(bits int) error {
	return s.writeAudio(func(b *format.Block) error { return b.SetSampleSize(bits) })
}

// readAudio reads one field out of the audio format block under the
// guarded-access protocol.
func (s *Session) readAudio(get func(*format.Block) (int, error)) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var v int
	err := s.withAudioConfig(func(sc graph.StreamConfig) error {
		b, err := sc.Format()
		if err != nil {
			return fmt.Errorf("session: read audio format: %w", err)
		}
		v, err = get(&b)
		return err
	})
	return v, err
}

// writeAudio mutates the audio format block under the guarded-access
// protocol.
func (s *Session) writeAudio(set func(*format.Block) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withAudioConfig(func(sc graph.StreamConfig) error {
		return s.mutateFormat(sc, set)
	})
}

// mutateFormat applies a read-modify-write cycle against a disconnected
// stream config.
func (s *Session) mutateFormat(sc graph.StreamConfig, fn func(*format.Block) error) error {
	b, err := sc.Format()
	if err != nil {
		return fmt.Errorf("session: read format: %w", err)
	}
	if err := fn(&b); err != nil {
		return err
	}
	if err := sc.SetFormat(b); err != nil {
		return fmt.Errorf("session: write format: %w", err)
	}
	return nil
}

// VideoCaps returns the video capability descriptor, reading and caching
// it on first use.
func (s *Session) VideoCaps() (*caps.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.videoCaps != nil {
		return s.videoCaps, nil
	}
	err := s.withVideoConfig(func(sc graph.StreamConfig) error {
		v, err := caps.VideoFrom(sc)
		if err != nil {
			return err
		}
		s.videoCaps = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.videoCaps, nil
}

// AudioCaps returns the audio capability descriptor, reading and caching
// it on first use.
func (s *Session) AudioCaps() (*caps.Audio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.audioCaps != nil {
		return s.audioCaps, nil
	}
	err := s.withAudioConfig(func(sc graph.StreamConfig) error {
		a, err := caps.AudioFrom(sc)
		if err != nil {
			return err
		}
		s.audioCaps = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.audioCaps, nil
}

// SetOutputPath points the capture at a new target file. A wired capture
// sub-graph is torn down so the next Start binds the new path.
func (s *Session) SetOutputPath(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateCapturing {
		return ErrCapturing
	}
	if path == "" {
		return ErrNoOutputPath
	}
	if s.builtCapture {
		if err := s.unwire(); err != nil {
			return err
		}
	}
	s.outputPath = path
	return nil
}
