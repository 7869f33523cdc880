package gst

import (
	"fmt"
	"sync"

	"github.com/tinyzimmer/go-gst/gst"

	"github.com/avhold/capnode/internal/format"
	"github.com/avhold/capnode/internal/graph"
	"github.com/avhold/capnode/internal/logging"
)

type stageKind int

const (
	stageSource stageKind = iota
	stageEncoder
	stageMux
	stageSink
	stageHelper
)

// gstStage wraps one GStreamer element. Sources carry the format block
// the session negotiates through their stream config; it is turned into a
// capsfilter when the stage is rendered.
type gstStage struct {
	el    *gst.Element
	kind  stageKind
	media graph.MediaKind

	mu         sync.Mutex
	wantFormat format.Block
}

func (s *gstStage) Name() string { return s.el.GetName() }

func (s *gstStage) Pins() []graph.Pin {
	var pins []graph.Pin
	if s.kind != stageSource {
		pins = append(pins, gstPin{name: "sink", dir: graph.DirInput})
	}
	if s.kind != stageSink {
		pins = append(pins, gstPin{name: "src", dir: graph.DirOutput})
	}
	return pins
}

type gstPin struct {
	name string
	dir  graph.Direction
}

func (p gstPin) Name() string               { return p.name }
func (p gstPin) Direction() graph.Direction { return p.dir }

// gstGraph owns one gst.Pipeline plus the connection bookkeeping the
// session's teardown walk needs; GStreamer itself has no queryable
// link-by-link adjacency at this level.
type gstGraph struct {
	pipeline *gst.Pipeline
	log      logging.Logger

	mu    sync.Mutex
	conns []graph.Connection
}

func (g *gstGraph) Add(st graph.Stage) error {
	gs, ok := st.(*gstStage)
	if !ok {
		return fmt.Errorf("gst: foreign stage %T", st)
	}
	if err := g.pipeline.Add(gs.el); err != nil {
		return fmt.Errorf("gst: add %s: %w", gs.Name(), err)
	}
	return nil
}

func (g *gstGraph) Remove(st graph.Stage) error {
	gs, ok := st.(*gstStage)
	if !ok {
		return fmt.Errorf("gst: foreign stage %T", st)
	}
	if err := gs.el.SetState(gst.StateNull); err != nil {
		g.log.Warn("null state before removal failed", "stage", gs.Name(), "error", err)
	}
	if err := g.pipeline.Remove(gs.el); err != nil {
		return graph.ErrNotInGraph
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	kept := g.conns[:0]
	for _, c := range g.conns {
		if c.From != st && c.To != st {
			kept = append(kept, c)
		}
	}
	g.conns = kept
	return nil
}

func (g *gstGraph) Downstream(st graph.Stage) []graph.Connection {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []graph.Connection
	for _, c := range g.conns {
		if c.From == st {
			out = append(out, c)
		}
	}
	return out
}

func (g *gstGraph) Sever(c graph.Connection) error {
	from, okF := c.From.(*gstStage)
	to, okT := c.To.(*gstStage)
	if !okF || !okT {
		return fmt.Errorf("gst: foreign connection")
	}
	from.el.Unlink(to.el)
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, have := range g.conns {
		if have == c {
			g.conns = append(g.conns[:i], g.conns[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("gst: connection %s -> %s not tracked", from.Name(), to.Name())
}

func (g *gstGraph) Controller() graph.Controller { return (*gstController)(g) }

// Surface is unsupported: this backend runs headless and has no
// embeddable rendering surface.
func (g *gstGraph) Surface() (graph.VideoSurface, error) {
	return nil, graph.ErrNoInterface
}

func (g *gstGraph) Close() error {
	if err := g.pipeline.SetState(gst.StateNull); err != nil {
		return fmt.Errorf("gst: release pipeline: %w", err)
	}
	g.mu.Lock()
	g.conns = nil
	g.mu.Unlock()
	return nil
}

// track records a link made by the builder.
func (g *gstGraph) track(from graph.Stage, fromPin string, to graph.Stage, toPin string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.conns = append(g.conns, graph.Connection{From: from, FromPin: fromPin, To: to, ToPin: toPin})
}

// gstController maps playback calls onto pipeline states.
type gstController gstGraph

func (c *gstController) Run() error {
	if err := c.pipeline.SetState(gst.StatePlaying); err != nil {
		return fmt.Errorf("gst: set playing: %w", err)
	}
	return nil
}

func (c *gstController) Pause() error {
	if err := c.pipeline.SetState(gst.StatePaused); err != nil {
		return fmt.Errorf("gst: set paused: %w", err)
	}
	return nil
}

func (c *gstController) Stop() error {
	if err := c.pipeline.SetState(gst.StateNull); err != nil {
		return fmt.Errorf("gst: set null: %w", err)
	}
	return nil
}
