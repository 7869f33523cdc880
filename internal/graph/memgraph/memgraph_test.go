package memgraph

import (
	"errors"
	"testing"

	"github.com/avhold/capnode/internal/format"
	"github.com/avhold/capnode/internal/graph"
)

func buildDefault(t *testing.T) (*Provider, *memGraph, *memBuilder, graph.Stage) {
	t.Helper()
	p := Default()
	g, err := p.NewGraph()
	if err != nil {
		t.Fatalf("NewGraph failed: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	b, err := p.NewBuilder(g)
	if err != nil {
		t.Fatalf("NewBuilder failed: %v", err)
	}
	dev, err := p.NewStage("mem-video0")
	if err != nil {
		t.Fatalf("NewStage failed: %v", err)
	}
	if err := g.Add(dev); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	return p, g.(*memGraph), b.(*memBuilder), dev
}

func TestNewStageUnknownID(t *testing.T) {
	p := Default()
	if _, err := p.NewStage("no-such-device"); err == nil {
		t.Fatal("NewStage on unknown id succeeded, want error")
	}
}

func TestRenderBusyDevice(t *testing.T) {
	p := New()
	p.AddDevice(DeviceSpec{
		ID:       "busy0",
		Name:     "Contended",
		Kind:     graph.KindVideo,
		Provides: []graph.RouteKind{graph.RouteVideo},
		Busy:     true,
	})
	g, _ := p.NewGraph()
	defer g.Close()
	b, _ := p.NewBuilder(g)
	dev, _ := p.NewStage("busy0")
	g.Add(dev)

	err := b.Render(graph.CategoryCapture, graph.RouteVideo, dev, nil, nil)
	if !errors.Is(err, graph.ErrResourceBusy) {
		t.Fatalf("Render on busy device = %v, want ErrResourceBusy", err)
	}
}

func TestRenderUnsupportedRoute(t *testing.T) {
	_, _, b, dev := buildDefault(t)
	err := b.Render(graph.CategoryCapture, graph.RouteInterleaved, dev, nil, nil)
	if !errors.Is(err, graph.ErrUnsupported) {
		t.Fatalf("Render on absent route = %v, want ErrUnsupported", err)
	}
}

func TestFormatLockedWhileConnected(t *testing.T) {
	_, g, b, dev := buildDefault(t)

	sc, err := b.StreamConfig(graph.CategoryCapture, graph.RouteVideo, dev)
	if err != nil {
		t.Fatalf("StreamConfig failed: %v", err)
	}
	if _, err := sc.Format(); err != nil {
		t.Fatalf("Format on disconnected device failed: %v", err)
	}

	// Connect the device output and verify format access is refused.
	if err := b.Render(graph.CategoryCapture, graph.RouteVideo, dev, nil, nil); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if _, err := sc.Format(); err == nil {
		t.Fatal("Format on connected device succeeded, want error")
	}
	if err := sc.SetFormat(format.NewVideoInfo(format.VideoInfo{Width: 320, Height: 240})); err == nil {
		t.Fatal("SetFormat on connected device succeeded, want error")
	}

	// Severing the connection restores access.
	for _, c := range g.Downstream(dev) {
		if err := g.Sever(c); err != nil {
			t.Fatalf("Sever failed: %v", err)
		}
	}
	if _, err := sc.Format(); err != nil {
		t.Fatalf("Format after disconnect failed: %v", err)
	}
}

func TestSetFormatKindMismatch(t *testing.T) {
	_, _, b, dev := buildDefault(t)
	sc, err := b.StreamConfig(graph.CategoryCapture, graph.RouteVideo, dev)
	if err != nil {
		t.Fatalf("StreamConfig failed: %v", err)
	}
	err = sc.SetFormat(format.NewWaveAudio(format.WaveAudio{Channels: 2}))
	if !errors.Is(err, graph.ErrUnsupported) {
		t.Fatalf("SetFormat with audio block on video device = %v, want ErrUnsupported", err)
	}
}

func TestTunerRouteKind(t *testing.T) {
	_, _, b, dev := buildDefault(t)

	// mem-video0 exposes only an elementary video route.
	if _, err := b.Tuner(graph.RouteInterleaved, dev); !errors.Is(err, graph.ErrNoInterface) {
		t.Fatalf("Tuner on unprovided route = %v, want ErrNoInterface", err)
	}
	if _, err := b.Tuner(graph.RouteVideo, dev); err != nil {
		t.Fatalf("Tuner on video route failed: %v", err)
	}
}

func TestControllerNeedsConnections(t *testing.T) {
	_, g, b, dev := buildDefault(t)

	c := g.Controller()
	if err := c.Run(); err == nil {
		t.Fatal("Run on empty topology succeeded, want error")
	}

	if err := b.Render(graph.CategoryCapture, graph.RouteVideo, dev, nil, nil); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if err := c.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !g.Running() {
		t.Error("topology not running after Run")
	}
	if err := c.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if g.Running() {
		t.Error("topology still running after Stop")
	}
}

func TestCrossbarDenyList(t *testing.T) {
	x := newCrossbarStage(&CrossbarSpec{
		Outputs: []graph.MediaKind{graph.KindVideo},
		Inputs:  []graph.ConnectorType{graph.ConnVideoTuner, graph.ConnVideoComposite},
		Deny:    [][2]int{{0, 0}},
	})

	ok, err := x.CanRoute(0, 0)
	if err != nil || ok {
		t.Errorf("CanRoute(0,0) = %v, %v, want false", ok, err)
	}
	ok, err = x.CanRoute(0, 1)
	if err != nil || !ok {
		t.Errorf("CanRoute(0,1) = %v, %v, want true", ok, err)
	}

	// The default route skips the denied input.
	routed, err := x.RoutedTo(0)
	if err != nil {
		t.Fatalf("RoutedTo failed: %v", err)
	}
	if routed != 1 {
		t.Errorf("default route = %d, want 1", routed)
	}

	if err := x.Route(0, 0); err == nil {
		t.Error("Route to denied input succeeded, want error")
	}
	if err := x.Route(0, -1); err != nil {
		t.Errorf("Route(-1) failed: %v", err)
	}
	routed, _ = x.RoutedTo(0)
	if routed != -1 {
		t.Errorf("route after disable = %d, want -1", routed)
	}
}

func TestRemoveDropsConnections(t *testing.T) {
	_, g, b, dev := buildDefault(t)
	if err := b.Render(graph.CategoryCapture, graph.RouteVideo, dev, nil, nil); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(g.Downstream(dev)) != 1 {
		t.Fatalf("downstream count = %d, want 1", len(g.Downstream(dev)))
	}
	if err := g.Remove(dev); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := g.Remove(dev); !errors.Is(err, graph.ErrNotInGraph) {
		t.Fatalf("second Remove = %v, want ErrNotInGraph", err)
	}
}
