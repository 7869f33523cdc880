package source

import (
	"errors"
	"fmt"

	"github.com/avhold/capnode/internal/graph"
)

// Discover enumerates the routable inputs of a device stage against a
// built skeleton, filtered to the device's declared media kind.
//
// The walk asks the construction helper for the nearest upstream routing
// stage, repeatedly, until none is found; combined hardware typically
// yields one video and one audio router. Every routable (output, input)
// pair on each router becomes a candidate, classified by the physical
// connector behind its input. Candidates whose output route offers no
// alternative input are degenerate (a router with no real choice) and are
// dropped. Devices with no router at all fall back to mixer-style input
// pins on the device itself.
func Discover(dev graph.Stage, b graph.Builder, kind graph.MediaKind) (*Registry, error) {
	r := &Registry{kind: kind}

	// Walk upstream collecting routing stages.
	from := dev
	for {
		xb, err := b.UpstreamRouter(from)
		if errors.Is(err, graph.ErrNoInterface) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("source: walk upstream: %w", err)
		}
		r.routers = append(r.routers, xb)
		from = xb
	}

	if len(r.routers) == 0 {
		return discoverMixer(dev, kind, r)
	}

	for _, xb := range r.routers {
		outs, ins, err := xb.Counts()
		if err != nil {
			return nil, fmt.Errorf("source: route counts: %w", err)
		}
		for out := 0; out < outs; out++ {
			for in := 0; in < ins; in++ {
				ok, err := xb.CanRoute(out, in)
				if err != nil {
					return nil, fmt.Errorf("source: can-route %d,%d: %w", out, in, err)
				}
				if !ok {
					continue
				}
				conn, err := xb.ConnectorOf(in)
				if err != nil {
					return nil, fmt.Errorf("source: connector of input %d: %w", in, err)
				}
				if conn.Kind() != kind {
					continue
				}
				r.sources = append(r.sources, &Source{
					name: conn.String(),
					kind: kind,
					xbar: xb,
					out:  out,
					in:   in,
				})
			}
		}
	}

	r.sources = dropDegenerate(r.sources)
	return r, nil
}

// dropDegenerate discards sources whose output route is not shared with at
// least one other surviving source. A router where every input maps 1:1 to
// a distinct output offers no user-meaningful choice.
func dropDegenerate(srcs []*Source) []*Source {
	type routeKey struct {
		xbar graph.Crossbar
		out  int
	}
	shared := make(map[routeKey]int, len(srcs))
	for _, s := range srcs {
		shared[routeKey{s.xbar, s.out}]++
	}
	kept := srcs[:0]
	for _, s := range srcs {
		if shared[routeKey{s.xbar, s.out}] > 1 {
			kept = append(kept, s)
		}
	}
	return kept
}

// discoverMixer handles hardware that exposes a simple input mixer instead
// of a routing stage: one source per input-direction pin carrying mixer
// control. A single resulting source is discarded, since an only,
// already-active input is not a choice.
func discoverMixer(dev graph.Stage, kind graph.MediaKind, r *Registry) (*Registry, error) {
	if kind != graph.KindAudio {
		return r, nil
	}
	for _, p := range dev.Pins() {
		if p.Direction() != graph.DirInput {
			continue
		}
		ai, ok := p.(graph.AudioInput)
		if !ok {
			continue
		}
		r.sources = append(r.sources, &Source{
			name: p.Name(),
			kind: graph.KindAudio,
			pin:  ai,
		})
	}
	if len(r.sources) == 1 {
		r.sources = nil
	}
	return r, nil
}
