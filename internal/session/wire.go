package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/avhold/capnode/internal/events"
	"github.com/avhold/capnode/internal/graph"
	"github.com/avhold/capnode/internal/source"
	"github.com/avhold/capnode/internal/tuner"
)

const previewStyle = graph.StyleChild | graph.StyleClipSiblings | graph.StyleBorderless

// buildSkeleton creates the topology, inserts the device and encoder
// stages and locates the per-device control surfaces. No route is
// connected yet; the resulting skeleton is exactly what source discovery
// and format access need. Callers hold s.mu.
func (s *Session) buildSkeleton() error {
	if s.state >= StateSkeleton {
		return nil
	}
	from := s.state

	g, err := s.cfg.Provider.NewGraph()
	if err != nil {
		return fmt.Errorf("session: create topology: %w", err)
	}
	b, err := s.cfg.Provider.NewBuilder(g)
	if err != nil {
		g.Close()
		return fmt.Errorf("session: create builder: %w", err)
	}
	s.topo, s.builder = g, b
	s.ctrl = g.Controller()

	if s.cfg.VideoDevice != "" {
		if s.videoDev, err = s.addStage(s.cfg.VideoDevice); err != nil {
			return err
		}
	}
	if s.cfg.AudioDevice != "" {
		if s.audioDev, err = s.addStage(s.cfg.AudioDevice); err != nil {
			return err
		}
	}
	if s.cfg.VideoEncoder != "" {
		if s.videoEnc, err = s.addStage(s.cfg.VideoEncoder); err != nil {
			return err
		}
	}
	if s.cfg.AudioEncoder != "" {
		if s.audioEnc, err = s.addStage(s.cfg.AudioEncoder); err != nil {
			return err
		}
	}

	// Control surfaces are optional per device; absence is recorded as a
	// nil slot and surfaces later as ErrNoStreamConfig / ErrNoTuner.
	if s.videoDev != nil {
		s.videoCfg = s.findStreamConfig(s.videoDev, graph.RouteVideo)
		s.tunerCtl = s.findTuner(s.videoDev, graph.RouteVideo)
	}
	if s.audioDev != nil {
		s.audioCfg = s.findStreamConfig(s.audioDev, graph.RouteAudio)
	}

	s.state = StateSkeleton
	s.log.Debug("skeleton built",
		"video", s.cfg.VideoDevice, "audio", s.cfg.AudioDevice)
	s.publishState(from)
	return nil
}

// addStage instantiates a stage and inserts it into the topology.
func (s *Session) addStage(id string) (graph.Stage, error) {
	st, err := s.cfg.Provider.NewStage(id)
	if err != nil {
		return nil, fmt.Errorf("session: instantiate %q: %w", id, err)
	}
	if err := s.topo.Add(st); err != nil {
		return nil, fmt.Errorf("session: insert %q: %w", id, err)
	}
	return st, nil
}

// findStreamConfig locates a device's format accessor, preferring an
// interleaved route and falling back to the elementary route for kind.
func (s *Session) findStreamConfig(st graph.Stage, kind graph.RouteKind) graph.StreamConfig {
	sc, err := s.builder.StreamConfig(graph.CategoryCapture, graph.RouteInterleaved, st)
	if err == nil {
		return sc
	}
	sc, err = s.builder.StreamConfig(graph.CategoryCapture, kind, st)
	if err == nil {
		return sc
	}
	if !errors.Is(err, graph.ErrNoInterface) {
		s.log.Warn("stream config lookup failed", "error", err)
	}
	return nil
}

// findTuner locates a tuner control with the same interleaved-first
// route preference as findStreamConfig.
func (s *Session) findTuner(st graph.Stage, kind graph.RouteKind) graph.TunerControl {
	ctl, err := s.builder.Tuner(graph.RouteInterleaved, st)
	if err == nil {
		return ctl
	}
	ctl, err = s.builder.Tuner(kind, st)
	if err == nil {
		return ctl
	}
	if !errors.Is(err, graph.ErrNoInterface) {
		s.log.Warn("tuner lookup failed", "error", err)
	}
	return nil
}

// wire brings the connected sub-graphs in line with the wanted flags. A
// topology already matching the wants is left alone; a partially matching
// one is torn back to the skeleton and reconnected. Callers hold s.mu.
func (s *Session) wire() error {
	if s.state == StateCapturing {
		return ErrCapturing
	}
	if err := s.buildSkeleton(); err != nil {
		return err
	}
	if s.builtCapture == s.wantCapture && s.builtPreview == s.wantPreview {
		return nil
	}

	s.transitioning.Store(true)
	defer s.transitioning.Store(false)
	start := time.Now()

	if s.state == StateWired {
		s.unwireLocked()
	}

	from := s.state
	if s.wantCapture {
		if err := s.renderCapture(); err != nil {
			return err
		}
		s.builtCapture = true
	}
	if s.wantPreview {
		if err := s.renderPreview(); err != nil {
			return err
		}
		s.builtPreview = true
	}
	if s.builtCapture || s.builtPreview {
		s.state = StateWired
		s.publishState(from)
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.WireDone("wire", time.Since(start))
	}
	s.checkInvariant()
	return nil
}

// renderCapture connects device outputs through the encoders into a
// freshly bound multiplexer/sink pair. Callers hold s.mu.
func (s *Session) renderCapture() error {
	if s.outputPath == "" {
		return ErrNoOutputPath
	}
	mux, sink, err := s.builder.BindOutput(s.outputPath)
	if err != nil {
		return fmt.Errorf("session: bind output %q: %w", s.outputPath, err)
	}
	s.mux, s.sink = mux, sink

	if s.videoDev != nil {
		if err := s.renderVideo(graph.CategoryCapture, s.videoEnc, mux); err != nil {
			return err
		}
	}
	if s.audioDev != nil {
		if err := s.builder.Render(graph.CategoryCapture, graph.RouteAudio, s.audioDev, s.audioEnc, mux); err != nil {
			return s.mapBusy("Audio device", err, "session: render audio capture")
		}
	}
	return nil
}

// renderPreview connects the video device's preview route to a
// framework-supplied renderer and binds the resulting surface to the
// preview host. Callers hold s.mu.
func (s *Session) renderPreview() error {
	if s.videoDev == nil {
		return ErrNoVideoDevice
	}
	if err := s.renderVideo(graph.CategoryPreview, nil, nil); err != nil {
		return err
	}

	surface, err := s.topo.Surface()
	if err != nil {
		return fmt.Errorf("session: locate video surface: %w", err)
	}
	s.surface = surface

	host := s.previewHost
	if err := surface.SetOwner(host.Handle()); err != nil {
		return fmt.Errorf("session: claim preview surface: %w", err)
	}
	if err := surface.SetStyle(previewStyle); err != nil {
		return fmt.Errorf("session: style preview surface: %w", err)
	}
	w, h := host.ClientSize()
	if err := surface.SetPosition(0, 0, w, h); err != nil {
		return fmt.Errorf("session: position preview surface: %w", err)
	}
	if err := surface.SetVisible(true); err != nil {
		return fmt.Errorf("session: show preview surface: %w", err)
	}
	s.cancelResize = host.OnResize(s.onPreviewResize)
	return nil
}

// renderVideo connects the video device's route of the given category,
// trying the interleaved route first and falling back to the elementary
// video route.
func (s *Session) renderVideo(cat graph.PinCategory, via, dst graph.Stage) error {
	err := s.builder.Render(cat, graph.RouteInterleaved, s.videoDev, via, dst)
	if err == nil {
		return nil
	}
	if err = s.builder.Render(cat, graph.RouteVideo, s.videoDev, via, dst); err != nil {
		return s.mapBusy("Video device", err, "session: render video")
	}
	return nil
}

// mapBusy converts a resource-busy failure into a DeviceInUseError,
// publishing the contention so observers see it.
func (s *Session) mapBusy(device string, err error, msg string) error {
	if !errors.Is(err, graph.ErrResourceBusy) {
		return fmt.Errorf("%s: %w", msg, err)
	}
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.DeviceBusy()
	}
	if s.cfg.EventBus != nil {
		s.cfg.EventBus.Publish(events.DeviceInUseEvent{
			Device:    device,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
	return &DeviceInUseError{Device: device, Err: err}
}

// unwire tears the connected sub-graphs back to the skeleton.
func (s *Session) unwire() error {
	s.transitioning.Store(true)
	defer s.transitioning.Store(false)
	s.unwireLocked()
	return nil
}

// unwireLocked is the teardown body; callers hold s.mu and have set the
// transitioning guard.
func (s *Session) unwireLocked() {
	if s.state < StateWired {
		return
	}
	from := s.state
	start := time.Now()

	if s.ctrl != nil {
		if err := s.ctrl.Stop(); err != nil {
			s.log.Warn("stop before teardown failed", "error", err)
		}
	}
	if from == StateCapturing {
		s.finishCapture()
	}
	s.detachSurface()

	// Disconnect everything downstream of the devices. Encoder stages are
	// disconnected but stay inserted so a later rewire reuses them.
	if s.videoDev != nil {
		s.removeDownstream(s.videoDev)
	}
	if s.audioDev != nil {
		s.removeDownstream(s.audioDev)
	}
	s.mux, s.sink = nil, nil

	s.builtCapture = false
	s.builtPreview = false
	s.state = StateSkeleton
	s.publishState(from)
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.WireDone("unwire", time.Since(start))
	}
}

// removeDownstream severs and removes every stage downstream of st,
// depth-first so sinks go before intermediaries. Teardown is best effort:
// a stage that refuses to leave is logged and skipped, never fatal.
func (s *Session) removeDownstream(st graph.Stage) {
	for _, c := range s.topo.Downstream(st) {
		s.removeDownstream(c.To)
		if err := s.topo.Sever(c); err != nil {
			s.log.Warn("sever failed", "from", c.From.Name(), "to", c.To.Name(), "error", err)
		}
		if c.To == s.videoEnc || c.To == s.audioEnc {
			continue
		}
		if err := s.topo.Remove(c.To); err != nil && !errors.Is(err, graph.ErrNotInGraph) {
			s.log.Warn("remove failed", "stage", c.To.Name(), "error", err)
		}
	}
}

// detachSurface releases the preview surface binding. Failures are
// ignored: the surface dies with the topology regardless.
func (s *Session) detachSurface() {
	if s.cancelResize != nil {
		s.cancelResize()
		s.cancelResize = nil
	}
	if s.surface == nil {
		return
	}
	s.surface.SetVisible(false)
	s.surface.ClearOwner()
	s.surface = nil
}

// VideoSources returns the video input registry, discovering it on first
// use against the skeleton.
func (s *Session) VideoSources() (*source.Registry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.videoSources != nil {
		return s.videoSources, nil
	}
	if s.videoDev == nil {
		return nil, ErrNoVideoDevice
	}
	if err := s.buildSkeleton(); err != nil {
		return nil, err
	}
	reg, err := source.Discover(s.videoDev, s.builder, graph.KindVideo)
	if err != nil {
		return nil, err
	}
	s.videoSources = reg
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.SourcesDiscovered("video", reg.Len())
	}
	return reg, nil
}

// AudioSources returns the audio input registry, discovering it on first
// use against the skeleton.
func (s *Session) AudioSources() (*source.Registry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.audioSources != nil {
		return s.audioSources, nil
	}
	if s.audioDev == nil {
		return nil, ErrNoAudioDevice
	}
	if err := s.buildSkeleton(); err != nil {
		return nil, err
	}
	reg, err := source.Discover(s.audioDev, s.builder, graph.KindAudio)
	if err != nil {
		return nil, err
	}
	s.audioSources = reg
	if s.cfg.Metrics != nil {
		s.cfg.Metrics.SourcesDiscovered("audio", reg.Len())
	}
	return reg, nil
}

// SelectSource makes src the current input of its registry and publishes
// the change.
func (s *Session) SelectSource(reg *source.Registry, src *source.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := reg.Select(src); err != nil {
		return err
	}
	if s.cfg.EventBus != nil {
		name := ""
		if src != nil {
			name = src.Name()
		}
		s.cfg.EventBus.Publish(events.SourceSelectedEvent{
			Kind:      reg.Kind().String(),
			Source:    name,
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
	return nil
}

// Tuner returns the device tuner, or ErrNoTuner when the hardware has
// none.
func (s *Session) Tuner() (*tuner.Tuner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tun != nil {
		return s.tun, nil
	}
	if err := s.buildSkeleton(); err != nil {
		return nil, err
	}
	if s.tunerCtl == nil {
		return nil, ErrNoTuner
	}
	s.tun = tuner.New(s.tunerCtl)
	return s.tun, nil
}
