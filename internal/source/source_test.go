package source

import (
	"errors"
	"testing"

	"github.com/avhold/capnode/internal/graph"
	"github.com/avhold/capnode/internal/graph/memgraph"
)

// buildFixture instantiates a device fixture and the skeleton it needs for
// discovery: a topology holding the device and a builder bound to it.
func buildFixture(t *testing.T, spec memgraph.DeviceSpec) (graph.Stage, graph.Builder) {
	t.Helper()
	p := memgraph.New()
	p.AddDevice(spec)

	dev, err := p.NewStage(spec.ID)
	if err != nil {
		t.Fatalf("NewStage failed: %v", err)
	}
	g, err := p.NewGraph()
	if err != nil {
		t.Fatalf("NewGraph failed: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	if err := g.Add(dev); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	b, err := p.NewBuilder(g)
	if err != nil {
		t.Fatalf("NewBuilder failed: %v", err)
	}
	return dev, b
}

func TestDiscoverCrossbar(t *testing.T) {
	dev, b := buildFixture(t, memgraph.DeviceSpec{
		ID:       "dev0",
		Name:     "Tuner Card",
		Kind:     graph.KindVideo,
		Provides: []graph.RouteKind{graph.RouteVideo},
		Crossbars: []memgraph.CrossbarSpec{{
			Name:    "Crossbar",
			Outputs: []graph.MediaKind{graph.KindVideo, graph.KindAudio},
			Inputs: []graph.ConnectorType{
				graph.ConnVideoTuner,
				graph.ConnVideoComposite,
				graph.ConnAudioTuner,
				graph.ConnAudioLine,
			},
		}},
	})

	reg, err := Discover(dev, b, graph.KindVideo)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("video source count = %d, want 2", reg.Len())
	}
	want := []string{"Video Tuner", "Video Composite"}
	for i, src := range reg.Sources() {
		if src.Name() != want[i] {
			t.Errorf("source %d = %q, want %q", i, src.Name(), want[i])
		}
		if src.Kind() != graph.KindVideo {
			t.Errorf("source %d kind = %v, want video", i, src.Kind())
		}
	}
	if len(reg.Routers()) != 1 {
		t.Errorf("router count = %d, want 1", len(reg.Routers()))
	}
}

func TestDiscoverKindFilter(t *testing.T) {
	dev, b := buildFixture(t, memgraph.DeviceSpec{
		ID:       "dev0",
		Name:     "Combined Card",
		Kind:     graph.KindVideo,
		Provides: []graph.RouteKind{graph.RouteVideo},
		Crossbars: []memgraph.CrossbarSpec{{
			Outputs: []graph.MediaKind{graph.KindVideo, graph.KindAudio},
			Inputs: []graph.ConnectorType{
				graph.ConnVideoComposite,
				graph.ConnVideoSVideo,
				graph.ConnAudioTuner,
				graph.ConnAudioLine,
			},
		}},
	})

	reg, err := Discover(dev, b, graph.KindAudio)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("audio source count = %d, want 2", reg.Len())
	}
	for _, src := range reg.Sources() {
		if src.Kind() != graph.KindAudio {
			t.Errorf("source %q kind = %v, want audio", src.Name(), src.Kind())
		}
	}
}

func TestDiscoverDropsDegenerateRoutes(t *testing.T) {
	// Two outputs, each routable from exactly one input: the router offers
	// no real choice and must yield nothing.
	dev, b := buildFixture(t, memgraph.DeviceSpec{
		ID:       "dev0",
		Name:     "Fixed Router Card",
		Kind:     graph.KindVideo,
		Provides: []graph.RouteKind{graph.RouteVideo},
		Crossbars: []memgraph.CrossbarSpec{{
			Outputs: []graph.MediaKind{graph.KindVideo, graph.KindVideo},
			Inputs: []graph.ConnectorType{
				graph.ConnVideoComposite,
				graph.ConnVideoSVideo,
			},
			Deny: [][2]int{{0, 1}, {1, 0}},
		}},
	})

	reg, err := Discover(dev, b, graph.KindVideo)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if reg.Len() != 0 {
		t.Fatalf("degenerate source count = %d, want 0", reg.Len())
	}
}

func TestDiscoverChainedRouters(t *testing.T) {
	dev, b := buildFixture(t, memgraph.DeviceSpec{
		ID:       "dev0",
		Name:     "Chained Card",
		Kind:     graph.KindVideo,
		Provides: []graph.RouteKind{graph.RouteVideo},
		Crossbars: []memgraph.CrossbarSpec{
			{
				Name:    "Inner",
				Outputs: []graph.MediaKind{graph.KindVideo},
				Inputs:  []graph.ConnectorType{graph.ConnVideoDecoder, graph.ConnVideoComposite},
			},
			{
				Name:    "Outer",
				Outputs: []graph.MediaKind{graph.KindVideo},
				Inputs:  []graph.ConnectorType{graph.ConnVideoTuner, graph.ConnVideoSVideo},
			},
		},
	})

	reg, err := Discover(dev, b, graph.KindVideo)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(reg.Routers()) != 2 {
		t.Fatalf("router count = %d, want 2", len(reg.Routers()))
	}
	if reg.Len() != 4 {
		t.Fatalf("source count = %d, want 4", reg.Len())
	}
}

func TestDiscoverMixerPins(t *testing.T) {
	dev, b := buildFixture(t, memgraph.DeviceSpec{
		ID:        "audio0",
		Name:      "Sound Card",
		Kind:      graph.KindAudio,
		Provides:  []graph.RouteKind{graph.RouteAudio},
		MixerPins: []string{"Line In", "Microphone"},
	})

	reg, err := Discover(dev, b, graph.KindAudio)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("mixer source count = %d, want 2", reg.Len())
	}
	if reg.ByName("Microphone") == nil {
		t.Error("Microphone pin not discovered")
	}
}

func TestDiscoverMixerSinglePinDiscarded(t *testing.T) {
	dev, b := buildFixture(t, memgraph.DeviceSpec{
		ID:        "audio0",
		Name:      "Sound Card",
		Kind:      graph.KindAudio,
		Provides:  []graph.RouteKind{graph.RouteAudio},
		MixerPins: []string{"Line In"},
	})

	reg, err := Discover(dev, b, graph.KindAudio)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if reg.Len() != 0 {
		t.Fatalf("single mixer pin yielded %d sources, want 0", reg.Len())
	}
}

func TestSelectCrossbarExclusive(t *testing.T) {
	dev, b := buildFixture(t, memgraph.DeviceSpec{
		ID:       "dev0",
		Name:     "Tuner Card",
		Kind:     graph.KindVideo,
		Provides: []graph.RouteKind{graph.RouteVideo},
		Crossbars: []memgraph.CrossbarSpec{{
			Outputs: []graph.MediaKind{graph.KindVideo},
			Inputs:  []graph.ConnectorType{graph.ConnVideoTuner, graph.ConnVideoComposite},
		}},
	})

	reg, err := Discover(dev, b, graph.KindVideo)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	composite := reg.ByName("Video Composite")
	if err := reg.Select(composite); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	on, err := composite.Enabled()
	if err != nil || !on {
		t.Fatalf("composite enabled = %v, %v, want true", on, err)
	}
	tuner := reg.ByName("Video Tuner")
	on, err = tuner.Enabled()
	if err != nil || on {
		t.Fatalf("tuner enabled = %v, %v, want false", on, err)
	}

	// Switching back routes the output away from composite.
	if err := reg.Select(tuner); err != nil {
		t.Fatalf("Select back failed: %v", err)
	}
	on, _ = composite.Enabled()
	if on {
		t.Error("composite still enabled after switching away")
	}
}

func TestSelectCrossbarMultiOutput(t *testing.T) {
	dev, b := buildFixture(t, memgraph.DeviceSpec{
		ID:       "dev0",
		Name:     "Dual Output Card",
		Kind:     graph.KindVideo,
		Provides: []graph.RouteKind{graph.RouteVideo},
		Crossbars: []memgraph.CrossbarSpec{{
			Outputs: []graph.MediaKind{graph.KindVideo, graph.KindVideo},
			Inputs:  []graph.ConnectorType{graph.ConnVideoTuner, graph.ConnVideoComposite},
		}},
	})

	reg, err := Discover(dev, b, graph.KindVideo)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if reg.Len() != 4 {
		t.Fatalf("source count = %d, want 4", reg.Len())
	}

	srcAt := func(out, in int) *Source {
		t.Helper()
		for _, s := range reg.Sources() {
			if o, i, ok := s.Route(); ok && o == out && i == in {
				return s
			}
		}
		t.Fatalf("no source for route %d<-%d", out, in)
		return nil
	}
	enabled := func(s *Source) bool {
		t.Helper()
		on, err := s.Enabled()
		if err != nil {
			t.Fatalf("Enabled failed: %v", err)
		}
		return on
	}

	// Hardware powers up with every output routed to the first input.
	if !enabled(srcAt(0, 0)) || !enabled(srcAt(1, 0)) {
		t.Fatal("outputs not initially routed to the first input")
	}

	// Selecting on one output switches that output only.
	if err := reg.Select(srcAt(1, 1)); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if !enabled(srcAt(1, 1)) {
		t.Error("selected source not enabled")
	}
	if enabled(srcAt(1, 0)) {
		t.Error("competing input on the same output still enabled")
	}
	if !enabled(srcAt(0, 0)) {
		t.Error("selection on output 1 disturbed the route on output 0")
	}

	// nil disables every descriptor on every output.
	if err := reg.Select(nil); err != nil {
		t.Fatalf("Select(nil) failed: %v", err)
	}
	for _, s := range reg.Sources() {
		if enabled(s) {
			out, in, _ := s.Route()
			t.Errorf("source %d<-%d still enabled after disable-all", out, in)
		}
	}
	current, err := reg.Current()
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if current != nil {
		t.Errorf("current after disable-all = %v, want nil", current)
	}
}

func TestSelectForeignSource(t *testing.T) {
	spec := memgraph.DeviceSpec{
		ID:       "dev0",
		Name:     "Tuner Card",
		Kind:     graph.KindVideo,
		Provides: []graph.RouteKind{graph.RouteVideo},
		Crossbars: []memgraph.CrossbarSpec{{
			Outputs: []graph.MediaKind{graph.KindVideo},
			Inputs:  []graph.ConnectorType{graph.ConnVideoTuner, graph.ConnVideoComposite},
		}},
	}

	devA, bA := buildFixture(t, spec)
	regA, err := Discover(devA, bA, graph.KindVideo)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	devB, bB := buildFixture(t, spec)
	regB, err := Discover(devB, bB, graph.KindVideo)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}

	if err := regA.Select(regB.Sources()[0]); !errors.Is(err, ErrForeignSource) {
		t.Fatalf("cross-registry Select = %v, want ErrForeignSource", err)
	}
}
