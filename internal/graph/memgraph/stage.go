package memgraph

import (
	"fmt"
	"sync"

	"github.com/avhold/capnode/internal/graph"
)

type memPin struct {
	name string
	dir  graph.Direction
}

func (p *memPin) Name() string               { return p.name }
func (p *memPin) Direction() graph.Direction { return p.dir }

// memAudioInput is a mixer-controlled input pin on an audio device.
type memAudioInput struct {
	memPin
	mu      sync.Mutex
	enabled bool
}

func (p *memAudioInput) Enabled() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled, nil
}

func (p *memAudioInput) SetEnabled(on bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = on
	return nil
}

// deviceStage is a simulated capture device. The upstream router chain is
// instantiated once, on first demand, and shared by later walks.
type deviceStage struct {
	spec *DeviceSpec
	pins []graph.Pin

	mu    sync.Mutex
	xbars []*crossbarStage
	tuner *memTuner
}

func newDeviceStage(spec *DeviceSpec) *deviceStage {
	d := &deviceStage{spec: spec}
	for _, r := range spec.Provides {
		d.pins = append(d.pins, &memPin{name: r.String() + "-out", dir: graph.DirOutput})
	}
	for i, name := range spec.MixerPins {
		d.pins = append(d.pins, &memAudioInput{
			memPin:  memPin{name: name, dir: graph.DirInput},
			enabled: i == 0,
		})
	}
	return d
}

func (d *deviceStage) Name() string      { return d.spec.Name }
func (d *deviceStage) Pins() []graph.Pin { return d.pins }

// provides reports whether the device offers a route of the given kind.
func (d *deviceStage) provides(kind graph.RouteKind) bool {
	for _, r := range d.spec.Provides {
		if r == kind {
			return true
		}
	}
	return false
}

// routers returns the device's router chain, building it on first use.
func (d *deviceStage) routers() []*crossbarStage {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.xbars == nil {
		for i := range d.spec.Crossbars {
			d.xbars = append(d.xbars, newCrossbarStage(&d.spec.Crossbars[i]))
		}
	}
	return d.xbars
}

type codecStage struct {
	name string
	kind graph.MediaKind
}

func (c *codecStage) Name() string { return c.name }
func (c *codecStage) Pins() []graph.Pin {
	return []graph.Pin{
		&memPin{name: "in", dir: graph.DirInput},
		&memPin{name: "out", dir: graph.DirOutput},
	}
}

type muxStage struct{ path string }

func (m *muxStage) Name() string { return "Multiplexer" }
func (m *muxStage) Pins() []graph.Pin {
	return []graph.Pin{
		&memPin{name: "video-in", dir: graph.DirInput},
		&memPin{name: "audio-in", dir: graph.DirInput},
		&memPin{name: "out", dir: graph.DirOutput},
	}
}

type sinkStage struct{ path string }

func (s *sinkStage) Name() string { return "File Writer" }
func (s *sinkStage) Pins() []graph.Pin {
	return []graph.Pin{&memPin{name: "in", dir: graph.DirInput}}
}

type rendererStage struct{}

func (r *rendererStage) Name() string { return "Video Renderer" }
func (r *rendererStage) Pins() []graph.Pin {
	return []graph.Pin{&memPin{name: "in", dir: graph.DirInput}}
}

// crossbarStage is a simulated routing stage. Each output starts routed
// to its first routable input, matching hardware that powers up with a
// default route.
type crossbarStage struct {
	spec *CrossbarSpec

	mu     sync.Mutex
	routed map[int]int
}

func newCrossbarStage(spec *CrossbarSpec) *crossbarStage {
	x := &crossbarStage{spec: spec, routed: make(map[int]int, len(spec.Outputs))}
	for out := range spec.Outputs {
		x.routed[out] = -1
		for in := range spec.Inputs {
			if x.canRoute(out, in) {
				x.routed[out] = in
				break
			}
		}
	}
	return x
}

func (x *crossbarStage) Name() string {
	if x.spec.Name != "" {
		return x.spec.Name
	}
	return "Crossbar"
}

func (x *crossbarStage) Pins() []graph.Pin {
	var pins []graph.Pin
	for i, c := range x.spec.Inputs {
		pins = append(pins, &memPin{name: fmt.Sprintf("in%d-%s", i, c), dir: graph.DirInput})
	}
	for i := range x.spec.Outputs {
		pins = append(pins, &memPin{name: fmt.Sprintf("out%d", i), dir: graph.DirOutput})
	}
	return pins
}

func (x *crossbarStage) Counts() (outputs, inputs int, err error) {
	return len(x.spec.Outputs), len(x.spec.Inputs), nil
}

// canRoute applies the kind-match rule minus the deny list.
func (x *crossbarStage) canRoute(out, in int) bool {
	if x.spec.Inputs[in].Kind() != x.spec.Outputs[out] {
		return false
	}
	for _, d := range x.spec.Deny {
		if d[0] == out && d[1] == in {
			return false
		}
	}
	return true
}

func (x *crossbarStage) CanRoute(out, in int) (bool, error) {
	if err := x.checkOut(out); err != nil {
		return false, err
	}
	if in < 0 || in >= len(x.spec.Inputs) {
		return false, fmt.Errorf("memgraph: input route %d out of range", in)
	}
	return x.canRoute(out, in), nil
}

func (x *crossbarStage) Route(out, in int) error {
	if err := x.checkOut(out); err != nil {
		return err
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if in == -1 {
		x.routed[out] = -1
		return nil
	}
	if in < 0 || in >= len(x.spec.Inputs) || !x.canRoute(out, in) {
		return fmt.Errorf("memgraph: cannot route input %d to output %d", in, out)
	}
	x.routed[out] = in
	return nil
}

func (x *crossbarStage) RoutedTo(out int) (int, error) {
	if err := x.checkOut(out); err != nil {
		return -1, err
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.routed[out], nil
}

func (x *crossbarStage) ConnectorOf(in int) (graph.ConnectorType, error) {
	if in < 0 || in >= len(x.spec.Inputs) {
		return 0, fmt.Errorf("memgraph: input route %d out of range", in)
	}
	return x.spec.Inputs[in], nil
}

func (x *crossbarStage) checkOut(out int) error {
	if out < 0 || out >= len(x.spec.Outputs) {
		return fmt.Errorf("memgraph: output route %d out of range", out)
	}
	return nil
}
