package memgraph

import (
	"fmt"
	"sync"

	"github.com/avhold/capnode/internal/format"
	"github.com/avhold/capnode/internal/graph"
)

// memBuilder is the construction helper over one in-memory topology.
type memBuilder struct {
	g      *memGraph
	closed bool
}

// Render connects src's route of the given kind, through via when given,
// into dst. A nil dst stands in for a framework-picked renderer: one is
// created, inserted and wired, and the topology gains a video surface.
func (b *memBuilder) Render(cat graph.PinCategory, kind graph.RouteKind, src, via, dst graph.Stage) error {
	if b.closed {
		return fmt.Errorf("memgraph: builder closed")
	}
	dev, ok := src.(*deviceStage)
	if !ok {
		return fmt.Errorf("memgraph: render source %q is not a device", src.Name())
	}
	if !dev.provides(kind) {
		return fmt.Errorf("%w: %s offers no %s route", graph.ErrUnsupported, dev.Name(), kind)
	}
	if dev.spec.Busy {
		return fmt.Errorf("%w: %s", graph.ErrResourceBusy, dev.Name())
	}

	b.g.mu.Lock()
	defer b.g.mu.Unlock()

	if dst == nil {
		r := &rendererStage{}
		b.g.stages = append(b.g.stages, r)
		if b.g.surface == nil {
			b.g.surface = &memSurface{}
		}
		dst = r
	}

	srcPin := fmt.Sprintf("%s-%s", cat, kind)
	if via != nil {
		if err := b.g.connect(src, srcPin, via, "in"); err != nil {
			return err
		}
		return b.g.connect(via, "out", dst, inPinOf(dst, kind))
	}
	return b.g.connect(src, srcPin, dst, inPinOf(dst, kind))
}

// inPinOf picks the destination input pin name for a route kind.
func inPinOf(dst graph.Stage, kind graph.RouteKind) string {
	if _, ok := dst.(*muxStage); ok && kind == graph.RouteAudio {
		return "audio-in"
	}
	if _, ok := dst.(*muxStage); ok {
		return "video-in"
	}
	return "in"
}

// BindOutput creates a multiplexer/sink pair bound to the target path and
// inserts both.
func (b *memBuilder) BindOutput(path string) (mux, sink graph.Stage, err error) {
	if b.closed {
		return nil, nil, fmt.Errorf("memgraph: builder closed")
	}
	if path == "" {
		return nil, nil, fmt.Errorf("memgraph: empty output path")
	}
	b.g.mu.Lock()
	defer b.g.mu.Unlock()
	m := &muxStage{path: path}
	s := &sinkStage{path: path}
	b.g.stages = append(b.g.stages, m, s)
	if err := b.g.connect(m, "out", s, "in"); err != nil {
		return nil, nil, err
	}
	return m, s, nil
}

// StreamConfig locates the format accessor behind a device's route of the
// given kind.
func (b *memBuilder) StreamConfig(cat graph.PinCategory, kind graph.RouteKind, st graph.Stage) (graph.StreamConfig, error) {
	dev, ok := st.(*deviceStage)
	if !ok || dev.spec.Format.Kind() == format.KindUnknown {
		return nil, graph.ErrNoInterface
	}
	if !dev.provides(kind) {
		return nil, graph.ErrNoInterface
	}
	return &memStreamConfig{g: b.g, dev: dev}, nil
}

// Tuner locates the tuner control behind a device's route of the given
// kind.
func (b *memBuilder) Tuner(kind graph.RouteKind, st graph.Stage) (graph.TunerControl, error) {
	dev, ok := st.(*deviceStage)
	if !ok || !dev.spec.HasTuner {
		return nil, graph.ErrNoInterface
	}
	if !dev.provides(kind) {
		return nil, graph.ErrNoInterface
	}
	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.tuner == nil {
		dev.tuner = newMemTuner()
	}
	return dev.tuner, nil
}

// UpstreamRouter returns the next routing stage above from, inserting it
// into the topology on first sight.
func (b *memBuilder) UpstreamRouter(from graph.Stage) (graph.Crossbar, error) {
	var chain []*crossbarStage
	var next int
	switch st := from.(type) {
	case *deviceStage:
		chain = st.routers()
		next = 0
	case *crossbarStage:
		dev := b.deviceOwning(st)
		if dev == nil {
			return nil, graph.ErrNoInterface
		}
		chain = dev.routers()
		for i, x := range chain {
			if x == st {
				next = i + 1
				break
			}
		}
	default:
		return nil, graph.ErrNoInterface
	}
	if next >= len(chain) {
		return nil, graph.ErrNoInterface
	}
	x := chain[next]
	b.g.mu.Lock()
	defer b.g.mu.Unlock()
	if b.g.indexOf(x) < 0 {
		b.g.stages = append(b.g.stages, x)
	}
	return x, nil
}

// deviceOwning finds the device whose router chain contains x.
func (b *memBuilder) deviceOwning(x *crossbarStage) *deviceStage {
	b.g.mu.Lock()
	defer b.g.mu.Unlock()
	for _, st := range b.g.stages {
		dev, ok := st.(*deviceStage)
		if !ok {
			continue
		}
		for _, have := range dev.routers() {
			if have == x {
				return dev
			}
		}
	}
	return nil
}

func (b *memBuilder) Close() error {
	b.closed = true
	return nil
}

// memStreamConfig is the format accessor over a device fixture. Access is
// refused while the device's outputs are connected, the way the real
// control behaves.
type memStreamConfig struct {
	g   *memGraph
	dev *deviceStage
}

func (c *memStreamConfig) checkDisconnected() error {
	c.g.mu.Lock()
	defer c.g.mu.Unlock()
	if c.g.connectedFrom(c.dev) {
		return fmt.Errorf("memgraph: %s output is connected, format is locked", c.dev.Name())
	}
	return nil
}

func (c *memStreamConfig) Format() (format.Block, error) {
	if err := c.checkDisconnected(); err != nil {
		return format.Block{}, err
	}
	c.dev.mu.Lock()
	defer c.dev.mu.Unlock()
	return c.dev.spec.Format, nil
}

func (c *memStreamConfig) SetFormat(b format.Block) error {
	if err := c.checkDisconnected(); err != nil {
		return err
	}
	c.dev.mu.Lock()
	defer c.dev.mu.Unlock()
	if b.Kind() != c.dev.spec.Format.Kind() {
		return fmt.Errorf("%w: device carries %s, got %s",
			graph.ErrUnsupported, c.dev.spec.Format.Kind(), b.Kind())
	}
	c.dev.spec.Format = b
	return nil
}

func (c *memStreamConfig) Capabilities() (count, size int, err error) {
	spec := c.dev.spec
	if spec.Caps == nil {
		return 0, 0, nil
	}
	count = spec.CapCount
	if count == 0 {
		count = 1
	}
	size = spec.CapSize
	if size == 0 {
		if spec.Caps.Video != nil {
			size = graph.VideoCapabilitySize
		} else {
			size = graph.AudioCapabilitySize
		}
	}
	return count, size, nil
}

func (c *memStreamConfig) CapabilityAt(i int) (graph.Capability, error) {
	spec := c.dev.spec
	if spec.Caps == nil || i != 0 {
		return graph.Capability{}, fmt.Errorf("memgraph: no capability at index %d", i)
	}
	return *spec.Caps, nil
}

// memTuner is a simulated tuner: channels map linearly onto a VHF-style
// frequency plan and odd channels carry signal.
type memTuner struct {
	mu      sync.Mutex
	channel int
}

func newMemTuner() *memTuner {
	return &memTuner{channel: 2}
}

func (t *memTuner) Channel() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.channel, nil
}

func (t *memTuner) SetChannel(ch int) error {
	if ch < 1 || ch > 99 {
		return fmt.Errorf("memgraph: channel %d out of range 1..99", ch)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.channel = ch
	return nil
}

func (t *memTuner) Frequency() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return 55250000 + (t.channel-2)*6000000, nil
}

func (t *memTuner) SignalPresent() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.channel%2 == 1, nil
}
