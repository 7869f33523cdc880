// Package memgraph is an in-memory pipeline backend. It implements the
// full graph.Provider surface over plain data structures: device fixtures
// declare which routes, control surfaces and upstream routers they have,
// and the backend behaves accordingly. The daemon runs on it when no real
// capture stack is wanted, and the session tests drive it directly.
package memgraph

import (
	"fmt"
	"sync"

	"github.com/avhold/capnode/internal/format"
	"github.com/avhold/capnode/internal/graph"
)

// CrossbarSpec declares one routing stage upstream of a device. Inputs
// are classified by physical connector; outputs carry one media kind
// each. An input can feed an output when their kinds match, unless the
// pair is listed in Deny.
type CrossbarSpec struct {
	Name    string
	Outputs []graph.MediaKind
	Inputs  []graph.ConnectorType
	Deny    [][2]int
}

// DeviceSpec declares one simulated capture device.
type DeviceSpec struct {
	ID   string
	Name string
	Kind graph.MediaKind

	// Provides lists the routes the device offers for connection.
	Provides []graph.RouteKind

	// Busy makes every connect attempt on this device fail the way
	// contended hardware does.
	Busy bool

	// Format is the device's current format block. A zero block means the
	// device exposes no format accessor.
	Format format.Block

	// Caps is the capability structure behind the format accessor.
	// CapCount and CapSize override the reported count and byte size when
	// non-zero; their defaults are 1 and the recognized layout size.
	Caps     *graph.Capability
	CapCount int
	CapSize  int

	// Crossbars is the upstream router chain, nearest first.
	Crossbars []CrossbarSpec

	// MixerPins declares mixer-style input pins on the device itself, for
	// audio hardware without a routing stage.
	MixerPins []string

	// HasTuner exposes a tuner control on the device.
	HasTuner bool
}

// CodecSpec declares one simulated encoder.
type CodecSpec struct {
	ID   string
	Name string
	Kind graph.MediaKind
}

// Provider is the in-memory backend root. Fixtures are registered up
// front; every NewGraph shares them.
type Provider struct {
	mu      sync.Mutex
	devices []*DeviceSpec
	codecs  []CodecSpec
}

var _ graph.Provider = (*Provider)(nil)

// New creates an empty provider. Register fixtures with AddDevice and
// AddCodec before handing it to a session.
func New() *Provider {
	return &Provider{}
}

// AddDevice registers a device fixture.
func (p *Provider) AddDevice(spec DeviceSpec) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := spec
	p.devices = append(p.devices, &s)
}

// AddCodec registers an encoder fixture.
func (p *Provider) AddCodec(spec CodecSpec) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.codecs = append(p.codecs, spec)
}

// Devices lists the registered device fixtures of one kind.
func (p *Provider) Devices(kind graph.MediaKind) ([]graph.Device, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []graph.Device
	for _, d := range p.devices {
		if d.Kind == kind {
			out = append(out, graph.Device{ID: d.ID, Name: d.Name, Kind: d.Kind})
		}
	}
	return out, nil
}

// Codecs lists the registered encoder fixtures of one kind.
func (p *Provider) Codecs(kind graph.MediaKind) ([]graph.Device, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []graph.Device
	for _, c := range p.codecs {
		if c.Kind == kind {
			out = append(out, graph.Device{ID: c.ID, Name: c.Name, Kind: c.Kind})
		}
	}
	return out, nil
}

// NewGraph creates an empty in-memory topology.
func (p *Provider) NewGraph() (graph.Graph, error) {
	return &memGraph{provider: p}, nil
}

// NewBuilder creates a construction helper bound to g.
func (p *Provider) NewBuilder(g graph.Graph) (graph.Builder, error) {
	mg, ok := g.(*memGraph)
	if !ok {
		return nil, fmt.Errorf("memgraph: builder bound to foreign topology %T", g)
	}
	return &memBuilder{g: mg}, nil
}

// NewStage instantiates the stage behind a registered fixture identifier.
func (p *Provider) NewStage(id string) (graph.Stage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, d := range p.devices {
		if d.ID == id {
			return newDeviceStage(d), nil
		}
	}
	for _, c := range p.codecs {
		if c.ID == id {
			return &codecStage{name: c.Name, kind: c.Kind}, nil
		}
	}
	return nil, fmt.Errorf("memgraph: no fixture registered for %q", id)
}

// Default returns the provider used by the daemon's simulated backend:
// one tuner card with a three-input video crossbar and a paired audio
// router, one mixer-style audio device, and stock encoders.
func Default() *Provider {
	p := New()
	p.AddDevice(DeviceSpec{
		ID:       "mem-video0",
		Name:     "Simulated Tuner Card",
		Kind:     graph.KindVideo,
		Provides: []graph.RouteKind{graph.RouteVideo},
		Format: format.NewVideoInfo(format.VideoInfo{
			Width: 640, Height: 480,
			FrameInterval: 33333333, // ~30 fps
			BitRate:       147456000,
		}),
		Caps: &graph.Capability{Video: &graph.VideoCapability{
			InputWidth: 640, InputHeight: 480,
			MinWidth: 160, MinHeight: 120,
			MaxWidth: 720, MaxHeight: 576,
			GranularityX: 8, GranularityY: 8,
			MinFrameInterval: 16666666,  // 60 fps
			MaxFrameInterval: 200000000, // 5 fps
		}},
		HasTuner: true,
		Crossbars: []CrossbarSpec{{
			Name:    "Simulated Crossbar",
			Outputs: []graph.MediaKind{graph.KindVideo, graph.KindAudio},
			Inputs: []graph.ConnectorType{
				graph.ConnVideoTuner,
				graph.ConnVideoComposite,
				graph.ConnVideoSVideo,
				graph.ConnAudioTuner,
				graph.ConnAudioLine,
			},
		}},
	})
	p.AddDevice(DeviceSpec{
		ID:       "mem-audio0",
		Name:     "Simulated Sound Card",
		Kind:     graph.KindAudio,
		Provides: []graph.RouteKind{graph.RouteAudio},
		Format: format.NewWaveAudio(format.WaveAudio{
			Channels: 2, SamplesPerSec: 44100, BitsPerSample: 16,
			BlockAlign: 4, AvgBytesPerSec: 176400,
		}),
		Caps: &graph.Capability{Audio: &graph.AudioCapability{
			MinChannels: 1, MaxChannels: 2, ChannelsGranularity: 1,
			MinSampleRate: 8000, MaxSampleRate: 48000, SampleRateGranularity: 1,
			MinSampleBits: 8, MaxSampleBits: 16, SampleBitsGranularity: 8,
		}},
		MixerPins: []string{"Line In", "Microphone", "CD Audio"},
	})
	p.AddCodec(CodecSpec{ID: "mem-venc", Name: "Simulated Video Encoder", Kind: graph.KindVideo})
	p.AddCodec(CodecSpec{ID: "mem-aenc", Name: "Simulated Audio Encoder", Kind: graph.KindAudio})
	return p
}
