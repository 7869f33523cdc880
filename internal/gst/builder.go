package gst

import (
	"fmt"
	"time"

	"github.com/tinyzimmer/go-gst/gst"

	"github.com/avhold/capnode/internal/format"
	"github.com/avhold/capnode/internal/graph"
	"github.com/avhold/capnode/internal/logging"
)

// gstBuilder is the construction helper over one pipeline.
type gstBuilder struct {
	g   *gstGraph
	log logging.Logger
}

// Render links src through the optional encoder into dst. Video paths get
// a capsfilter carrying the negotiated format and a videoconvert in front
// of the encoder; audio paths get an audioconvert. Preview rendering is
// unsupported on this backend.
func (b *gstBuilder) Render(cat graph.PinCategory, kind graph.RouteKind, src, via, dst graph.Stage) error {
	if cat == graph.CategoryPreview || dst == nil {
		return fmt.Errorf("%w: headless backend has no preview path", graph.ErrUnsupported)
	}
	if kind == graph.RouteInterleaved {
		return fmt.Errorf("%w: no interleaved routes", graph.ErrUnsupported)
	}
	source, ok := src.(*gstStage)
	if !ok || source.kind != stageSource {
		return fmt.Errorf("gst: render source %q is not a device", src.Name())
	}

	chain := []graph.Stage{src}
	helpers, err := b.helperChain(source, kind)
	if err != nil {
		return err
	}
	chain = append(chain, helpers...)
	if via != nil {
		chain = append(chain, via)
	}
	chain = append(chain, dst)

	elems := make([]*gst.Element, 0, len(chain))
	for _, st := range chain {
		elems = append(elems, st.(*gstStage).el)
	}
	if err := gst.ElementLinkMany(elems...); err != nil {
		return fmt.Errorf("gst: link %s chain: %w", kind, err)
	}
	for i := 0; i+1 < len(chain); i++ {
		b.g.track(chain[i], "src", chain[i+1], "sink")
	}
	return nil
}

// helperChain builds and inserts the conversion elements between a source
// and its consumer.
func (b *gstBuilder) helperChain(src *gstStage, kind graph.RouteKind) ([]graph.Stage, error) {
	var out []graph.Stage
	add := func(factory string) (*gstStage, error) {
		el, err := gst.NewElement(factory)
		if err != nil {
			return nil, fmt.Errorf("gst: create %s: %w", factory, err)
		}
		st := &gstStage{el: el, kind: stageHelper, media: src.media}
		if err := b.g.pipeline.Add(el); err != nil {
			return nil, fmt.Errorf("gst: add %s: %w", factory, err)
		}
		out = append(out, st)
		return st, nil
	}

	if kind == graph.RouteVideo {
		filter, err := add("capsfilter")
		if err != nil {
			return nil, err
		}
		src.mu.Lock()
		block := src.wantFormat
		src.mu.Unlock()
		if s := videoCapsString(block); s != "" {
			filter.el.SetProperty("caps", gst.NewCapsFromString(s))
		}
		if _, err := add("videoconvert"); err != nil {
			return nil, err
		}
		return out, nil
	}
	if _, err := add("audioconvert"); err != nil {
		return nil, err
	}
	return out, nil
}

// videoCapsString renders a format block as a raw-video caps string, or
// "" when the block constrains nothing.
func videoCapsString(b format.Block) string {
	w, h, err := b.FrameSize()
	if err != nil || w == 0 || h == 0 {
		return ""
	}
	s := fmt.Sprintf("video/x-raw,width=%d,height=%d", w, h)
	if ivl, err := b.FrameInterval(); err == nil && ivl > 0 {
		s += fmt.Sprintf(",framerate=%d/1", int(time.Second/ivl))
	}
	return s
}

// BindOutput creates a matroskamux/filesink pair bound to path.
func (b *gstBuilder) BindOutput(path string) (mux, sink graph.Stage, err error) {
	if path == "" {
		return nil, nil, fmt.Errorf("gst: empty output path")
	}
	muxEl, err := gst.NewElement("matroskamux")
	if err != nil {
		return nil, nil, fmt.Errorf("gst: create matroskamux: %w", err)
	}
	sinkEl, err := gst.NewElement("filesink")
	if err != nil {
		return nil, nil, fmt.Errorf("gst: create filesink: %w", err)
	}
	sinkEl.SetProperty("location", path)

	m := &gstStage{el: muxEl, kind: stageMux}
	s := &gstStage{el: sinkEl, kind: stageSink}
	b.g.pipeline.AddMany(muxEl, sinkEl)
	if err := muxEl.Link(sinkEl); err != nil {
		return nil, nil, fmt.Errorf("gst: link mux to sink: %w", err)
	}
	b.g.track(m, "src", s, "sink")
	return m, s, nil
}

// StreamConfig returns the format accessor of a source stage.
func (b *gstBuilder) StreamConfig(cat graph.PinCategory, kind graph.RouteKind, st graph.Stage) (graph.StreamConfig, error) {
	gs, ok := st.(*gstStage)
	if !ok || gs.kind != stageSource || kind == graph.RouteInterleaved {
		return nil, graph.ErrNoInterface
	}
	if (kind == graph.RouteVideo) != (gs.media == graph.KindVideo) {
		return nil, graph.ErrNoInterface
	}
	return &gstStreamConfig{stage: gs}, nil
}

// Tuner is unsupported: no tuner hardware is reachable through this
// backend.
func (b *gstBuilder) Tuner(kind graph.RouteKind, st graph.Stage) (graph.TunerControl, error) {
	return nil, graph.ErrNoInterface
}

// UpstreamRouter is unsupported: v4l2 and ALSA sources have no routing
// stage above them, so discovery sees no physical-input choice.
func (b *gstBuilder) UpstreamRouter(from graph.Stage) (graph.Crossbar, error) {
	return nil, graph.ErrNoInterface
}

func (b *gstBuilder) Close() error { return nil }

// gstStreamConfig stores the negotiated format on its stage; Render turns
// it into a capsfilter. Capabilities advertise the fixed request window
// the backend is willing to put into caps.
type gstStreamConfig struct {
	stage *gstStage
}

func (c *gstStreamConfig) Format() (format.Block, error) {
	c.stage.mu.Lock()
	defer c.stage.mu.Unlock()
	if c.stage.wantFormat.Kind() == format.KindUnknown {
		c.stage.wantFormat = defaultFormat(c.stage.media)
	}
	return c.stage.wantFormat, nil
}

func (c *gstStreamConfig) SetFormat(b format.Block) error {
	want := format.KindWaveAudio
	if c.stage.media == graph.KindVideo {
		want = format.KindVideoInfo
	}
	if b.Kind() != want && !(want == format.KindVideoInfo && b.Kind() == format.KindVideoInfoExt) {
		return fmt.Errorf("%w: stage carries %s, got %s", graph.ErrUnsupported, want, b.Kind())
	}
	c.stage.mu.Lock()
	defer c.stage.mu.Unlock()
	c.stage.wantFormat = b
	return nil
}

func (c *gstStreamConfig) Capabilities() (count, size int, err error) {
	if c.stage.media == graph.KindVideo {
		return 1, graph.VideoCapabilitySize, nil
	}
	return 1, graph.AudioCapabilitySize, nil
}

func (c *gstStreamConfig) CapabilityAt(i int) (graph.Capability, error) {
	if i != 0 {
		return graph.Capability{}, fmt.Errorf("gst: no capability at index %d", i)
	}
	if c.stage.media == graph.KindVideo {
		v := videoCapability
		return graph.Capability{Video: &v}, nil
	}
	a := audioCapability
	return graph.Capability{Audio: &a}, nil
}

// defaultFormat is the starting format handed out before the session
// negotiates one.
func defaultFormat(kind graph.MediaKind) format.Block {
	if kind == graph.KindVideo {
		return format.NewVideoInfo(format.VideoInfo{
			Width: 640, Height: 480,
			FrameInterval: time.Second / 30,
		})
	}
	return format.NewWaveAudio(format.WaveAudio{
		Channels: 2, SamplesPerSec: 44100, BitsPerSample: 16,
		BlockAlign: 4, AvgBytesPerSec: 176400,
	})
}
