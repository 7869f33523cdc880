// Package session owns the lifecycle of one capture pipeline: it creates
// the stage skeleton, connects and disconnects the capture and preview
// sub-graphs, runs and stops the assembly, and mediates every format
// property access through the framework's disconnect-first protocol.
//
// All operations execute synchronously on the caller's goroutine. The one
// externally triggered re-entry, the preview host's resize notification,
// is fenced off from in-progress transitions by a reentrancy guard.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/avhold/capnode/internal/caps"
	"github.com/avhold/capnode/internal/events"
	"github.com/avhold/capnode/internal/graph"
	"github.com/avhold/capnode/internal/logging"
	"github.com/avhold/capnode/internal/source"
	"github.com/avhold/capnode/internal/tuner"
)

// PreviewHost is the caller-supplied display surface that hosts a preview.
// OnResize delivers resize notifications; the returned cancel removes the
// subscription.
type PreviewHost interface {
	Handle() graph.WindowHandle
	ClientSize() (width, height int)
	OnResize(fn func()) (cancel func())
}

// Metrics receives session instrumentation. *metrics.Recorder satisfies
// it; a nil Metrics disables instrumentation.
type Metrics interface {
	Transition(from, to string)
	CaptureDone(d time.Duration)
	WireDone(op string, d time.Duration)
	SourcesDiscovered(kind string, n int)
	DeviceBusy()
}

// Config configures a new session. Provider is required, as is at least
// one of VideoDevice/AudioDevice. Changing devices requires a new session.
type Config struct {
	Provider graph.Provider

	VideoDevice  string
	AudioDevice  string
	VideoEncoder string
	AudioEncoder string

	OutputPath string

	EventBus *events.Bus
	Metrics  Metrics
	Logger   logging.Logger
}

// Session is the capture pipeline state machine. Methods are safe for
// concurrent use; internally everything runs under one lock, matching the
// single-logical-thread model of the underlying framework.
type Session struct {
	mu  sync.Mutex
	cfg Config

	state State

	// Wanted vs built, per sub-graph.
	wantCapture  bool
	wantPreview  bool
	builtCapture bool
	builtPreview bool

	outputPath string

	topo    graph.Graph
	builder graph.Builder
	ctrl    graph.Controller

	// Stage ownership slots. Teardown releases every populated slot
	// exactly once, regardless of which transition triggered it.
	videoDev graph.Stage
	audioDev graph.Stage
	videoEnc graph.Stage
	audioEnc graph.Stage
	mux      graph.Stage
	sink     graph.Stage

	videoCfg graph.StreamConfig
	audioCfg graph.StreamConfig
	tunerCtl graph.TunerControl

	// Caches invalidated on skeleton rebuild.
	videoCaps    *caps.Video
	audioCaps    *caps.Audio
	videoSources *source.Registry
	audioSources *source.Registry
	tun          *tuner.Tuner

	previewHost  PreviewHost
	surface      graph.VideoSurface
	cancelResize func()

	// transitioning fences the resize notification out of in-progress
	// wire/unwire work.
	transitioning atomic.Bool

	captureStart time.Time
	onComplete   func()

	log logging.Logger
}

// New creates a session over the given devices. The topology is not built
// until the first operation needs it.
func New(cfg Config) (*Session, error) {
	if cfg.VideoDevice == "" && cfg.AudioDevice == "" {
		return nil, ErrNoDevice
	}
	log := cfg.Logger
	if log == nil {
		log = logging.GetLogger("session")
	}
	return &Session{
		cfg:        cfg,
		outputPath: cfg.OutputPath,
		log:        log,
	}, nil
}

// OnCaptureComplete registers a callback fired each time the session
// leaves the capturing state, once per capture run. The callback stays
// registered across runs; passing nil clears it.
func (s *Session) OnCaptureComplete(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onComplete = fn
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Built reports which sub-graphs are currently connected.
func (s *Session) Built() (capture, preview bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.builtCapture, s.builtPreview
}

// OutputPath returns the target capture file path.
func (s *Session) OutputPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outputPath
}

// HasVideo reports whether the session was built with a video device.
func (s *Session) HasVideo() bool { return s.cfg.VideoDevice != "" }

// HasAudio reports whether the session was built with an audio device.
func (s *Session) HasAudio() bool { return s.cfg.AudioDevice != "" }

// publishState emits a state-change event and transition metric.
func (s *Session) publishState(from State) {
	if s.cfg.Metrics != nil && from != s.state {
		s.cfg.Metrics.Transition(from.String(), s.state.String())
	}
	if s.cfg.EventBus == nil {
		return
	}
	s.cfg.EventBus.Publish(events.SessionStateEvent{
		From:         from.String(),
		To:           s.state.String(),
		BuiltCapture: s.builtCapture,
		BuiltPreview: s.builtPreview,
		Timestamp:    time.Now().Format(time.RFC3339),
	})
}

// checkInvariant panics when a built flag disagrees with the lifecycle
// state. The invariant is structural: every transition re-establishes it,
// so a violation is a programming error, not an environment failure.
func (s *Session) checkInvariant() {
	if s.builtCapture && (s.state < StateWired || !s.wantCapture) {
		panic("session: built-capture flag without wired state and wanted-capture")
	}
	if s.builtPreview && (s.state < StateWired || !s.wantPreview) {
		panic("session: built-preview flag without wired state and wanted-preview")
	}
}
