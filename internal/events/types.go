package events

// Event type constants for kelindar/event.
const (
	TypeSessionState uint32 = iota + 1
	TypeCaptureStarted
	TypeCaptureComplete
	TypeDeviceInUse
	TypeSourceSelected
	TypePreviewResized
	TypeLogEntry
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// SessionStateEvent is published on every session lifecycle transition.
type SessionStateEvent struct {
	From         string `json:"from" example:"skeleton" doc:"Previous lifecycle state"`
	To           string `json:"to" example:"wired" doc:"New lifecycle state"`
	BuiltCapture bool   `json:"built_capture" doc:"Whether the capture sub-graph is connected"`
	BuiltPreview bool   `json:"built_preview" doc:"Whether the preview sub-graph is connected"`
	Timestamp    string `json:"timestamp" example:"2026-01-27T10:30:00Z" doc:"Transition timestamp"`
}

// Type returns the event type identifier for SessionStateEvent.
func (e SessionStateEvent) Type() uint32 { return TypeSessionState }

// CaptureStartedEvent is published when a capture run begins.
type CaptureStartedEvent struct {
	OutputPath string `json:"output_path" example:"/var/lib/capnode/out.avi" doc:"Target output file"`
	Timestamp  string `json:"timestamp" doc:"Start timestamp"`
}

// Type returns the event type identifier for CaptureStartedEvent.
func (e CaptureStartedEvent) Type() uint32 { return TypeCaptureStarted }

// CaptureCompleteEvent is published exactly once per capture run, when the
// session transitions out of the capturing state.
type CaptureCompleteEvent struct {
	OutputPath string `json:"output_path" doc:"File the capture was written to"`
	Timestamp  string `json:"timestamp" doc:"Completion timestamp"`
}

// Type returns the event type identifier for CaptureCompleteEvent.
func (e CaptureCompleteEvent) Type() uint32 { return TypeCaptureComplete }

// DeviceInUseEvent is published when wiring fails because a device's
// output is claimed by another consumer.
type DeviceInUseEvent struct {
	Device    string `json:"device" example:"Video device" doc:"Display name of the contended device"`
	Timestamp string `json:"timestamp" doc:"Failure timestamp"`
}

// Type returns the event type identifier for DeviceInUseEvent.
func (e DeviceInUseEvent) Type() uint32 { return TypeDeviceInUse }

// SourceSelectedEvent is published when the current physical input of a
// device changes.
type SourceSelectedEvent struct {
	Kind      string `json:"kind" example:"video" doc:"Media kind of the source registry"`
	Source    string `json:"source" example:"Video Composite" doc:"Display name of the selected source, empty when all disabled"`
	Timestamp string `json:"timestamp" doc:"Selection timestamp"`
}

// Type returns the event type identifier for SourceSelectedEvent.
func (e SourceSelectedEvent) Type() uint32 { return TypeSourceSelected }

// PreviewResizedEvent is published after the preview surface is
// repositioned to cover a resized host.
type PreviewResizedEvent struct {
	Width     int    `json:"width" doc:"New surface width in pixels"`
	Height    int    `json:"height" doc:"New surface height in pixels"`
	Timestamp string `json:"timestamp" doc:"Resize timestamp"`
}

// Type returns the event type identifier for PreviewResizedEvent.
func (e PreviewResizedEvent) Type() uint32 { return TypePreviewResized }

// LogEntryEvent carries one log record for SSE streaming.
type LogEntryEvent struct {
	Seq        uint64         `json:"seq" example:"42" doc:"Monotonic sequence number for deduplication"`
	Timestamp  string         `json:"timestamp" doc:"Log timestamp"`
	Level      string         `json:"level" example:"info" doc:"Log level"`
	Module     string         `json:"module" example:"session" doc:"Source module"`
	Message    string         `json:"message" doc:"Log message"`
	Attributes map[string]any `json:"attributes,omitempty" doc:"Structured log attributes"`
}

// Type returns the event type identifier for LogEntryEvent.
func (e LogEntryEvent) Type() uint32 { return TypeLogEntry }
