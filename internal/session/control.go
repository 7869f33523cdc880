package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/avhold/capnode/internal/events"
	"github.com/avhold/capnode/internal/graph"
)

// Cue wires the capture sub-graph and pauses the assembly so a later
// Start begins writing with minimal latency. Optional; Start cues
// implicitly when needed.
func (s *Session) Cue() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateCapturing {
		return ErrCapturing
	}

	s.wantCapture = true
	if err := s.wire(); err != nil {
		return err
	}
	if err := s.ctrl.Pause(); err != nil {
		return fmt.Errorf("session: cue: %w", err)
	}
	return nil
}

// Start wires the capture sub-graph if needed and runs the assembly.
// Frames flow to the output file until Stop.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateCapturing {
		return ErrCapturing
	}

	s.wantCapture = true
	if err := s.wire(); err != nil {
		return err
	}
	if err := s.ctrl.Run(); err != nil {
		return fmt.Errorf("session: start capture: %w", err)
	}

	from := s.state
	s.state = StateCapturing
	s.captureStart = time.Now()
	s.log.Info("capture started", "output", s.outputPath)
	if s.cfg.EventBus != nil {
		s.cfg.EventBus.Publish(events.CaptureStartedEvent{
			OutputPath: s.outputPath,
			Timestamp:  time.Now().Format(time.RFC3339),
		})
	}
	s.publishState(from)
	s.checkInvariant()
	return nil
}

// Stop halts a running capture. Stop itself cannot fail: once the
// assembly is halted, the rewire that removes the capture stream and the
// preview restart are attempted but their failures are only logged.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wantCapture = false
	if s.ctrl != nil {
		if err := s.ctrl.Stop(); err != nil {
			s.log.Warn("halt failed", "error", err)
		}
	}
	if s.state == StateCapturing {
		from := s.state
		s.state = StateWired
		s.finishCapture()
		s.publishState(from)
	}

	// Drop the capture stream and, when a preview is wanted, bring it
	// back up. Best effort from here on.
	if err := s.wire(); err != nil {
		s.log.Warn("rewire after stop failed", "error", err)
	}
	if err := s.startPreviewIfNeeded(); err != nil {
		s.log.Warn("preview restart after stop failed", "error", err)
	}
	s.checkInvariant()
	return nil
}

// finishCapture accounts for the end of one capture run: completion
// event, duration metric and the registered callback, which fires once
// per run and stays registered for the next. Callers hold s.mu and
// have already left the capturing state.
func (s *Session) finishCapture() {
	if !s.captureStart.IsZero() {
		if s.cfg.Metrics != nil {
			s.cfg.Metrics.CaptureDone(time.Since(s.captureStart))
		}
		s.captureStart = time.Time{}
	}
	s.log.Info("capture complete", "output", s.outputPath)
	if s.cfg.EventBus != nil {
		s.cfg.EventBus.Publish(events.CaptureCompleteEvent{
			OutputPath: s.outputPath,
			Timestamp:  time.Now().Format(time.RFC3339),
		})
	}
	if s.onComplete != nil {
		s.onComplete()
	}
}

// startPreviewIfNeeded runs the assembly when a preview is connected and
// no capture is wanted. A preview-only run does not enter the capturing
// state. Callers hold s.mu.
func (s *Session) startPreviewIfNeeded() error {
	if !s.builtPreview || s.wantCapture {
		return nil
	}
	if err := s.ctrl.Run(); err != nil {
		return fmt.Errorf("session: run preview: %w", err)
	}
	return nil
}

// Close tears the session down completely: any capture is stopped, the
// sub-graphs are disconnected, and every stage and handle is released.
// The session is unusable afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wantCapture = false
	s.wantPreview = false
	s.previewHost = nil

	s.transitioning.Store(true)
	defer s.transitioning.Store(false)
	s.unwireLocked()

	from := s.state
	if s.topo != nil {
		for _, st := range []graph.Stage{s.videoDev, s.audioDev, s.videoEnc, s.audioEnc} {
			if st == nil {
				continue
			}
			if err := s.topo.Remove(st); err != nil && !errors.Is(err, graph.ErrNotInGraph) {
				s.log.Warn("remove on close failed", "stage", st.Name(), "error", err)
			}
		}
	}
	s.videoDev, s.audioDev, s.videoEnc, s.audioEnc = nil, nil, nil, nil
	s.videoCfg, s.audioCfg, s.tunerCtl = nil, nil, nil
	s.videoCaps, s.audioCaps = nil, nil
	s.videoSources, s.audioSources = nil, nil
	s.tun = nil

	var errBuilder, errTopo error
	if s.builder != nil {
		errBuilder = s.builder.Close()
		s.builder = nil
	}
	if s.topo != nil {
		errTopo = s.topo.Close()
		s.topo = nil
	}
	s.ctrl = nil

	s.state = StateEmpty
	s.publishState(from)
	if errBuilder != nil {
		return fmt.Errorf("session: close builder: %w", errBuilder)
	}
	if errTopo != nil {
		return fmt.Errorf("session: close topology: %w", errTopo)
	}
	return nil
}
