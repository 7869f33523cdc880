// Package source models the routable physical inputs of a capture device
// and the topology-discovery that enumerates them. A source is either one
// routable (output, input) pair on an upstream routing stage, or one
// mixer-controlled input pin on the device itself. Enabled state is never
// cached: it is queried live from the owning stage on every read.
package source

import (
	"errors"
	"fmt"

	"github.com/avhold/capnode/internal/graph"
)

// ErrForeignSource is returned when a source from a different registry is
// passed to Select.
var ErrForeignSource = errors.New("source: descriptor does not belong to this registry")

// Source is one routable physical input. The routing-stage reference is a
// non-owning back-reference into the session's topology; a Source must not
// outlive the session that produced it.
type Source struct {
	name string
	kind graph.MediaKind

	// Crossbar variant.
	xbar graph.Crossbar
	out  int
	in   int

	// Mixer variant.
	pin graph.AudioInput
}

// Name returns the display name of the physical input.
func (s *Source) Name() string { return s.name }

// Kind returns the media kind of the input.
func (s *Source) Kind() graph.MediaKind { return s.kind }

// Route returns the (output, input) route pair of a crossbar source. The
// second result is false for mixer sources.
func (s *Source) Route() (out, in int, ok bool) {
	if s.xbar == nil {
		return 0, 0, false
	}
	return s.out, s.in, true
}

// Enabled queries the owning stage for whether this input currently feeds
// its output route. Never cached.
func (s *Source) Enabled() (bool, error) {
	if s.xbar != nil {
		routed, err := s.xbar.RoutedTo(s.out)
		if err != nil {
			return false, fmt.Errorf("source: query route: %w", err)
		}
		return routed == s.in, nil
	}
	return s.pin.Enabled()
}

func (s *Source) enable() error {
	if s.xbar != nil {
		return s.xbar.Route(s.out, s.in)
	}
	return s.pin.SetEnabled(true)
}

func (s *Source) disable() error {
	if s.xbar != nil {
		routed, err := s.xbar.RoutedTo(s.out)
		if err != nil {
			return err
		}
		if routed != s.in {
			// Another input owns the output; nothing to undo.
			return nil
		}
		return s.xbar.Route(s.out, -1)
	}
	return s.pin.SetEnabled(false)
}

// Registry is the ordered set of sources discovered for one device. Built
// once against a skeleton topology and cached by the session; invalidated
// whenever the skeleton is rebuilt.
type Registry struct {
	kind    graph.MediaKind
	sources []*Source
	routers []graph.Crossbar
}

// Kind returns the media kind this registry was filtered to.
func (r *Registry) Kind() graph.MediaKind { return r.kind }

// Sources returns the discovered sources in discovery order.
func (r *Registry) Sources() []*Source { return r.sources }

// Len returns the number of discovered sources.
func (r *Registry) Len() int { return len(r.sources) }

// Routers returns the routing stages the discovery walk found. The session
// owns their lifetime and removes them on teardown.
func (r *Registry) Routers() []graph.Crossbar { return r.routers }

// ByName returns the source with the given display name, or nil.
func (r *Registry) ByName(name string) *Source {
	for _, s := range r.sources {
		if s.name == name {
			return s
		}
	}
	return nil
}

// Current returns the first enabled source, or nil when none is enabled.
func (r *Registry) Current() (*Source, error) {
	for _, s := range r.sources {
		on, err := s.Enabled()
		if err != nil {
			return nil, err
		}
		if on {
			return s, nil
		}
	}
	return nil, nil
}

// Select makes the given source the current one. A nil source disables
// every descriptor. For a crossbar source a single route call suffices:
// the framework unroutes competing inputs on the same output and leaves
// other outputs alone. For a mixer source every descriptor is disabled
// first, then the given one enabled.
func (r *Registry) Select(src *Source) error {
	if src == nil {
		for _, s := range r.sources {
			if err := s.disable(); err != nil {
				return err
			}
		}
		return nil
	}
	if !r.owns(src) {
		return ErrForeignSource
	}
	if src.xbar != nil {
		return src.enable()
	}
	for _, s := range r.sources {
		if s == src {
			continue
		}
		if err := s.disable(); err != nil {
			return err
		}
	}
	return src.enable()
}

func (r *Registry) owns(src *Source) bool {
	for _, s := range r.sources {
		if s == src {
			return true
		}
	}
	return false
}
