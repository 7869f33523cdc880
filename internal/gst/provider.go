// Package gst is the GStreamer pipeline backend. It maps the stage
// topology onto a gst.Pipeline: devices become v4l2src/alsasrc elements,
// encoders become encoder elements, and the bound output becomes a
// matroskamux feeding a filesink.
//
// The backend covers the capture path. Hardware routing stages, tuners
// and embeddable preview surfaces have no GStreamer equivalent here and
// report ErrNoInterface, so source discovery yields an empty registry and
// previews are refused.
package gst

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tinyzimmer/go-gst/gst"

	"github.com/avhold/capnode/internal/graph"
	"github.com/avhold/capnode/internal/logging"
)

// Device identifier prefixes. The part after the colon is the element
// device property.
const (
	videoPrefix = "v4l2:"
	audioPrefix = "alsa:"
	codecPrefix = "enc:"
)

// videoEncoders maps codec identifiers to GStreamer element factories.
var videoEncoders = map[string]string{
	"x264":  "x264enc",
	"mjpeg": "avenc_mjpeg",
}

var audioEncoders = map[string]string{
	"aac":    "voaacenc",
	"vorbis": "vorbisenc",
}

// Provider is the GStreamer backend root.
type Provider struct {
	log logging.Logger
}

var _ graph.Provider = (*Provider)(nil)

// NewProvider initializes GStreamer and returns the backend. Init is safe
// to call more than once.
func NewProvider() *Provider {
	gst.Init(nil)
	return &Provider{log: logging.GetLogger("gst")}
}

// Devices enumerates capture hardware. Video devices come from the
// video4linux class in sysfs; audio falls back to the default ALSA
// source.
func (p *Provider) Devices(kind graph.MediaKind) ([]graph.Device, error) {
	if kind == graph.KindAudio {
		return []graph.Device{{
			ID:   audioPrefix + "default",
			Name: "Default ALSA Source",
			Kind: graph.KindAudio,
		}}, nil
	}

	entries, err := os.ReadDir("/sys/class/video4linux")
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("gst: enumerate video4linux: %w", err)
	}
	var out []graph.Device
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), "video") {
			continue
		}
		name := e.Name()
		if b, err := os.ReadFile(filepath.Join("/sys/class/video4linux", e.Name(), "name")); err == nil {
			name = strings.TrimSpace(string(b))
		}
		out = append(out, graph.Device{
			ID:   videoPrefix + "/dev/" + e.Name(),
			Name: name,
			Kind: graph.KindVideo,
		})
	}
	return out, nil
}

// Codecs lists the encoder elements this backend knows how to build.
func (p *Provider) Codecs(kind graph.MediaKind) ([]graph.Device, error) {
	table := videoEncoders
	if kind == graph.KindAudio {
		table = audioEncoders
	}
	var out []graph.Device
	for id, factory := range table {
		out = append(out, graph.Device{
			ID:   codecPrefix + id,
			Name: factory,
			Kind: kind,
		})
	}
	return out, nil
}

// NewGraph creates an empty pipeline.
func (p *Provider) NewGraph() (graph.Graph, error) {
	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return nil, fmt.Errorf("gst: create pipeline: %w", err)
	}
	return &gstGraph{pipeline: pipeline, log: p.log}, nil
}

// NewBuilder creates a construction helper bound to g.
func (p *Provider) NewBuilder(g graph.Graph) (graph.Builder, error) {
	gg, ok := g.(*gstGraph)
	if !ok {
		return nil, fmt.Errorf("gst: builder bound to foreign topology %T", g)
	}
	return &gstBuilder{g: gg, log: p.log}, nil
}

// NewStage instantiates the element behind a device or codec identifier.
func (p *Provider) NewStage(id string) (graph.Stage, error) {
	switch {
	case strings.HasPrefix(id, videoPrefix):
		el, err := gst.NewElement("v4l2src")
		if err != nil {
			return nil, fmt.Errorf("gst: create v4l2src: %w", err)
		}
		el.SetProperty("device", strings.TrimPrefix(id, videoPrefix))
		return &gstStage{el: el, kind: stageSource, media: graph.KindVideo}, nil

	case strings.HasPrefix(id, audioPrefix):
		el, err := gst.NewElement("alsasrc")
		if err != nil {
			return nil, fmt.Errorf("gst: create alsasrc: %w", err)
		}
		if dev := strings.TrimPrefix(id, audioPrefix); dev != "default" {
			el.SetProperty("device", dev)
		}
		return &gstStage{el: el, kind: stageSource, media: graph.KindAudio}, nil

	case strings.HasPrefix(id, codecPrefix):
		name := strings.TrimPrefix(id, codecPrefix)
		factory, media := videoEncoders[name], graph.KindVideo
		if factory == "" {
			factory, media = audioEncoders[name], graph.KindAudio
		}
		if factory == "" {
			return nil, fmt.Errorf("gst: unknown encoder %q", name)
		}
		el, err := gst.NewElement(factory)
		if err != nil {
			return nil, fmt.Errorf("gst: create %s: %w", factory, err)
		}
		return &gstStage{el: el, kind: stageEncoder, media: media}, nil
	}
	return nil, fmt.Errorf("gst: unrecognized stage identifier %q", id)
}

// Conservative capability bounds advertised for v4l2 sources. The real
// per-device ranges are negotiated by GStreamer at link time; these are
// the caps window the backend is willing to request.
var videoCapability = graph.VideoCapability{
	InputWidth:       1280,
	InputHeight:      720,
	MinWidth:         160,
	MinHeight:        120,
	MaxWidth:         1920,
	MaxHeight:        1080,
	GranularityX:     2,
	GranularityY:     2,
	MinFrameInterval: time.Second / 60,
	MaxFrameInterval: time.Second / 5,
}

var audioCapability = graph.AudioCapability{
	MinChannels:           1,
	MaxChannels:           2,
	ChannelsGranularity:   1,
	MinSampleRate:         8000,
	MaxSampleRate:         48000,
	SampleRateGranularity: 1,
	MinSampleBits:         16,
	MaxSampleBits:         16,
}
