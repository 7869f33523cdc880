package memgraph

import (
	"fmt"
	"sync"

	"github.com/avhold/capnode/internal/graph"
)

// runState is the playback state of a topology.
type runState int

const (
	stateStopped runState = iota
	statePaused
	stateRunning
)

// memGraph is the in-memory topology: a stage set plus an ordered
// connection list.
type memGraph struct {
	provider *Provider

	mu      sync.Mutex
	stages  []graph.Stage
	conns   []graph.Connection
	state   runState
	surface *memSurface
	closed  bool
}

func (g *memGraph) Add(st graph.Stage) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return fmt.Errorf("memgraph: topology closed")
	}
	if g.indexOf(st) >= 0 {
		return fmt.Errorf("memgraph: stage %q already inserted", st.Name())
	}
	g.stages = append(g.stages, st)
	return nil
}

func (g *memGraph) Remove(st graph.Stage) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := g.indexOf(st)
	if i < 0 {
		return graph.ErrNotInGraph
	}
	kept := g.conns[:0]
	for _, c := range g.conns {
		if c.From != st && c.To != st {
			kept = append(kept, c)
		}
	}
	g.conns = kept
	g.stages = append(g.stages[:i], g.stages[i+1:]...)
	return nil
}

func (g *memGraph) Downstream(st graph.Stage) []graph.Connection {
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

func (g *memGraph) Sever(c graph.Connection) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, have := range g.conns {
		if have == c {
			g.conns = append(g.conns[:i], g.conns[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("memgraph: connection %s/%s -> %s/%s not present",
		c.From.Name(), c.FromPin, c.To.Name(), c.ToPin)
}

func (g *memGraph) Controller() graph.Controller { return (*memController)(g) }

func (g *memGraph) Surface() (graph.VideoSurface, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.surface == nil {
		return nil, graph.ErrNoInterface
	}
	return g.surface, nil
}

func (g *memGraph) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	g.stages = nil
	g.conns = nil
	g.surface = nil
	g.state = stateStopped
	return nil
}

// indexOf returns the stage's index, or -1. Callers hold g.mu.
func (g *memGraph) indexOf(st graph.Stage) int {
	for i, have := range g.stages {
		if have == st {
			return i
		}
	}
	return -1
}

// connect records a link between two stages. Callers hold g.mu.
func (g *memGraph) connect(from graph.Stage, fromPin string, to graph.Stage, toPin string) error {
	if g.indexOf(from) < 0 || g.indexOf(to) < 0 {
		return graph.ErrNotInGraph
	}
	for _, c := range g.conns {
		if c.From == from && c.FromPin == fromPin {
			return fmt.Errorf("memgraph: pin %s/%s already connected", from.Name(), fromPin)
		}
	}
	g.conns = append(g.conns, graph.Connection{From: from, FromPin: fromPin, To: to, ToPin: toPin})
	return nil
}

// connectedFrom reports whether any output of st is connected. Callers
// hold g.mu.
func (g *memGraph) connectedFrom(st graph.Stage) bool {
	for _, c := range g.conns {
		if c.From == st {
			return true
		}
	}
	return false
}

// memController maps playback calls onto the topology's run state.
type memController memGraph

func (c *memController) Run() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("memgraph: topology closed")
	}
	if len(c.conns) == 0 {
		return fmt.Errorf("memgraph: nothing connected to run")
	}
	c.state = stateRunning
	return nil
}

func (c *memController) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("memgraph: topology closed")
	}
	c.state = statePaused
	return nil
}

func (c *memController) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = stateStopped
	return nil
}

// Running reports whether the topology is in the running state. Test
// hook; real backends have no equivalent.
func (g *memGraph) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == stateRunning
}

// memSurface records the binding calls a session makes against the
// preview surface.
type memSurface struct {
	mu      sync.Mutex
	owner   graph.WindowHandle
	style   graph.WindowStyle
	x, y    int
	w, h    int
	visible bool
}

func (s *memSurface) SetOwner(h graph.WindowHandle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owner = h
	return nil
}

func (s *memSurface) ClearOwner() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owner = 0
	return nil
}

func (s *memSurface) SetStyle(style graph.WindowStyle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.style = style
	return nil
}

func (s *memSurface) SetPosition(x, y, width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.x, s.y, s.w, s.h = x, y, width, height
	return nil
}

func (s *memSurface) SetVisible(visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = visible
	return nil
}

// Bounds returns the last position set on the surface. Test hook.
func (s *memSurface) Bounds() (x, y, w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.x, s.y, s.w, s.h
}

// Visible reports the surface's visibility. Test hook.
func (s *memSurface) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}
