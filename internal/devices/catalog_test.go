package devices

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/avhold/capnode/internal/graph"
)

// countingProvider serves canned device lists and counts enumerations.
type countingProvider struct {
	deviceCalls int
	codecCalls  int
	fail        bool
}

func (p *countingProvider) Devices(kind graph.MediaKind) ([]graph.Device, error) {
	p.deviceCalls++
	if p.fail {
		return nil, errors.New("enumeration failed")
	}
	if kind == graph.KindVideo {
		return []graph.Device{{ID: "video0", Name: "Capture Card", Kind: kind}}, nil
	}
	return []graph.Device{{ID: "audio0", Name: "Sound Card", Kind: kind}}, nil
}

func (p *countingProvider) Codecs(kind graph.MediaKind) ([]graph.Device, error) {
	p.codecCalls++
	if kind == graph.KindVideo {
		return []graph.Device{{ID: "venc", Name: "Video Encoder", Kind: kind}}, nil
	}
	return nil, nil
}

func (p *countingProvider) NewGraph() (graph.Graph, error) {
	return nil, errors.New("not implemented")
}

func (p *countingProvider) NewBuilder(graph.Graph) (graph.Builder, error) {
	return nil, errors.New("not implemented")
}

func (p *countingProvider) NewStage(string) (graph.Stage, error) {
	return nil, errors.New("not implemented")
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCatalogCachesWithinTTL(t *testing.T) {
	p := &countingProvider{}
	c := NewCatalog(p, quietLogger())

	first, err := c.Devices(graph.KindVideo)
	if err != nil {
		t.Fatalf("Devices failed: %v", err)
	}
	if len(first) != 1 || first[0].ID != "video0" {
		t.Fatalf("Devices = %v, want [video0]", first)
	}

	if _, err := c.Devices(graph.KindVideo); err != nil {
		t.Fatalf("second Devices failed: %v", err)
	}
	if p.deviceCalls != 1 {
		t.Errorf("provider probed %d times, want 1 (cached)", p.deviceCalls)
	}

	// A different kind is a separate cache entry.
	if _, err := c.Devices(graph.KindAudio); err != nil {
		t.Fatalf("audio Devices failed: %v", err)
	}
	if p.deviceCalls != 2 {
		t.Errorf("provider probed %d times, want 2", p.deviceCalls)
	}
}

func TestCatalogCodecsCachedSeparately(t *testing.T) {
	p := &countingProvider{}
	c := NewCatalog(p, quietLogger())

	if _, err := c.Devices(graph.KindVideo); err != nil {
		t.Fatalf("Devices failed: %v", err)
	}
	codecs, err := c.Codecs(graph.KindVideo)
	if err != nil {
		t.Fatalf("Codecs failed: %v", err)
	}
	if len(codecs) != 1 || codecs[0].ID != "venc" {
		t.Fatalf("Codecs = %v, want [venc]", codecs)
	}
	if p.deviceCalls != 1 || p.codecCalls != 1 {
		t.Errorf("probes = %d devices, %d codecs, want 1 and 1", p.deviceCalls, p.codecCalls)
	}
}

func TestCatalogFind(t *testing.T) {
	c := NewCatalog(&countingProvider{}, quietLogger())

	tests := []struct {
		id    string
		found bool
		name  string
	}{
		{"video0", true, "Capture Card"},
		{"audio0", true, "Sound Card"},
		{"venc", true, "Video Encoder"},
		{"missing", false, ""},
	}
	for _, tt := range tests {
		d, ok := c.Find(tt.id)
		if ok != tt.found {
			t.Errorf("Find(%q) found = %v, want %v", tt.id, ok, tt.found)
			continue
		}
		if ok && d.Name != tt.name {
			t.Errorf("Find(%q).Name = %q, want %q", tt.id, d.Name, tt.name)
		}
	}
}

func TestCatalogPropagatesErrors(t *testing.T) {
	c := NewCatalog(&countingProvider{fail: true}, quietLogger())
	if _, err := c.Devices(graph.KindVideo); err == nil {
		t.Fatal("Devices on failing provider succeeded, want error")
	}
}
