package graph

import "github.com/avhold/capnode/internal/format"

// WindowHandle is an opaque display-surface handle supplied by the caller
// hosting a preview.
type WindowHandle uintptr

// Device describes one installed device or codec as reported by a Provider.
type Device struct {
	ID   string
	Name string
	Kind MediaKind
}

// Pin is one connection point on a stage.
type Pin interface {
	Name() string
	Direction() Direction
}

// AudioInput is a pin that carries a mixer-style enable flag. Audio capture
// hardware without a routing stage exposes its physical inputs this way.
type AudioInput interface {
	Pin
	Enabled() (bool, error)
	SetEnabled(on bool) error
}

// Stage is one processing unit in the pipeline: device, encoder,
// multiplexer, sink or renderer. Stages are reference-counted native
// resources owned by whoever inserted them into a Graph.
type Stage interface {
	Name() string
	Pins() []Pin
}

// Connection is one established link between an output pin and a
// downstream input pin, as seen through a Graph's adjacency view.
type Connection struct {
	From    Stage
	FromPin string
	To      Stage
	ToPin   string
}

// Graph is the mutable stage topology.
type Graph interface {
	// Add inserts a stage into the topology.
	Add(st Stage) error

	// Remove disconnects and removes a stage. ErrNotInGraph if absent.
	Remove(st Stage) error

	// Downstream returns the connections leaving st's output pins.
	Downstream(st Stage) []Connection

	// Sever breaks one connection at both ends, leaving both stages in
	// the topology.
	Sever(c Connection) error

	// Controller returns the playback controller for this topology.
	Controller() Controller

	// Surface returns the rendering-surface binder for the topology's
	// video output. Valid once a preview sub-graph is connected.
	Surface() (VideoSurface, error)

	// Close releases the topology handle. Stages still inserted are
	// released with it.
	Close() error
}

// Controller runs, pauses and stops the assembled topology. Calls are
// synchronous and either complete or fail immediately; there is no
// asynchronous completion to wait on.
type Controller interface {
	Run() error
	Pause() error
	Stop() error
}

// VideoSurface binds the topology's video output to a caller-supplied
// display surface.
type VideoSurface interface {
	SetOwner(h WindowHandle) error
	ClearOwner() error
	SetStyle(style WindowStyle) error
	SetPosition(x, y, width, height int) error
	SetVisible(visible bool) error
}

// StreamConfig is the format-block accessor located on a stage's
// elementary-stream output. Reads and writes are only valid while the
// output pin is disconnected; the session guarantees that ordering.
type StreamConfig interface {
	// Format reads the stage's current format block.
	Format() (format.Block, error)

	// SetFormat writes a format block back to the stage. A changed format
	// invalidates any previously built downstream wiring.
	SetFormat(b format.Block) error

	// Capabilities reports the number of capability structures the stage
	// offers and the byte size of each.
	Capabilities() (count, size int, err error)

	// CapabilityAt returns the i'th capability structure.
	CapabilityAt(i int) (Capability, error)
}

// TunerControl is the channel/frequency control surface of a tuner-capable
// device. Pure pass-through; no state is kept on this side.
type TunerControl interface {
	Channel() (int, error)
	SetChannel(ch int) error
	Frequency() (hz int, err error)
	SignalPresent() (bool, error)
}

// Crossbar is a routing stage: it switches which input route feeds a given
// output route. Route indexes are dense, 0..count-1. Routing one input to
// an output implicitly unroutes any competing input on that same output;
// the framework manages that, not the caller. Routing input -1 disables
// the output.
type Crossbar interface {
	Stage
	Counts() (outputs, inputs int, err error)
	CanRoute(out, in int) (bool, error)
	Route(out, in int) error
	// RoutedTo returns the input currently feeding out, or -1.
	RoutedTo(out int) (int, error)
	ConnectorOf(in int) (ConnectorType, error)
}

// Builder is the pipeline-construction helper bound to one Graph.
type Builder interface {
	// Render connects src's route of the given category and classification,
	// through the optional via stage, into dst. A nil dst lets the
	// framework supply and insert a default renderer (preview).
	// Stages connected before a failure are not rolled back.
	Render(cat PinCategory, kind RouteKind, src, via, dst Stage) error

	// BindOutput instantiates a multiplexer/sink pair bound to the target
	// file path and inserts both into the topology.
	BindOutput(path string) (mux, sink Stage, err error)

	// StreamConfig locates a format-block accessor reachable from st via
	// the given route classification. ErrNoInterface when absent.
	StreamConfig(cat PinCategory, kind RouteKind, st Stage) (StreamConfig, error)

	// Tuner locates a tuner control reachable from st via the given route
	// classification. ErrNoInterface when absent.
	Tuner(kind RouteKind, st Stage) (TunerControl, error)

	// UpstreamRouter returns the nearest routing-capable stage upstream of
	// from, inserting it into the topology if the framework had not
	// already. ErrNoInterface when no further router exists.
	UpstreamRouter(from Stage) (Crossbar, error)

	// Close releases the helper.
	Close() error
}

// Provider instantiates graphs and stages and enumerates what is installed.
type Provider interface {
	// Devices lists the installed capture devices of one kind.
	Devices(kind MediaKind) ([]Device, error)

	// Codecs lists the installed encoder stages of one kind.
	Codecs(kind MediaKind) ([]Device, error)

	// NewGraph creates an empty topology.
	NewGraph() (Graph, error)

	// NewBuilder creates a construction helper bound to g.
	NewBuilder(g Graph) (Builder, error)

	// NewStage instantiates the stage behind a device or codec identifier.
	NewStage(id string) (Stage, error)
}
