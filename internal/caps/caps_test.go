package caps

import (
	"errors"
	"testing"
	"time"

	"github.com/avhold/capnode/internal/format"
	"github.com/avhold/capnode/internal/graph"
)

// stubConfig is a StreamConfig returning canned capability reports.
type stubConfig struct {
	count int
	size  int
	cap   graph.Capability
}

func (s *stubConfig) Format() (format.Block, error)  { return format.Block{}, nil }
func (s *stubConfig) SetFormat(format.Block) error   { return nil }
func (s *stubConfig) Capabilities() (int, int, error) { return s.count, s.size, nil }
func (s *stubConfig) CapabilityAt(int) (graph.Capability, error) {
	return s.cap, nil
}

func videoStub() *stubConfig {
	return &stubConfig{
		count: 1,
		size:  graph.VideoCapabilitySize,
		cap: graph.Capability{Video: &graph.VideoCapability{
			InputWidth: 640, InputHeight: 480,
			MinWidth: 160, MinHeight: 120,
			MaxWidth: 720, MaxHeight: 576,
			GranularityX: 8, GranularityY: 8,
			MinFrameInterval: 16666666 * time.Nanosecond,
			MaxFrameInterval: 200 * time.Millisecond,
		}},
	}
}

func TestVideoFrom(t *testing.T) {
	v, err := VideoFrom(videoStub())
	if err != nil {
		t.Fatalf("VideoFrom failed: %v", err)
	}
	if v.MinWidth != 160 || v.MaxWidth != 720 {
		t.Errorf("width range = %d..%d, want 160..720", v.MinWidth, v.MaxWidth)
	}
	// The longest interval is the slowest rate.
	if v.MinFrameRate != 5 {
		t.Errorf("MinFrameRate = %g, want 5", v.MinFrameRate)
	}
	if v.MaxFrameRate < 59.9 || v.MaxFrameRate > 60.1 {
		t.Errorf("MaxFrameRate = %g, want ~60", v.MaxFrameRate)
	}
}

func TestVideoFromNoCapabilities(t *testing.T) {
	sc := videoStub()
	sc.count = 0
	if _, err := VideoFrom(sc); !errors.Is(err, ErrNoCapabilities) {
		t.Fatalf("VideoFrom with zero count = %v, want ErrNoCapabilities", err)
	}
}

func TestVideoFromUnknownLayout(t *testing.T) {
	sc := videoStub()
	sc.size = graph.VideoCapabilitySize + 16
	if _, err := VideoFrom(sc); !errors.Is(err, ErrUnknownLayout) {
		t.Fatalf("VideoFrom with oversized layout = %v, want ErrUnknownLayout", err)
	}
}

func TestVideoFromExtraStructuresTolerated(t *testing.T) {
	sc := videoStub()
	sc.count = 3
	if _, err := VideoFrom(sc); err != nil {
		t.Fatalf("VideoFrom with count 3 = %v, want nil", err)
	}
}

func TestVideoFromWrongKind(t *testing.T) {
	sc := videoStub()
	sc.cap = graph.Capability{Audio: &graph.AudioCapability{}}
	if _, err := VideoFrom(sc); !errors.Is(err, ErrWrongKind) {
		t.Fatalf("VideoFrom over audio capability = %v, want ErrWrongKind", err)
	}
}

func TestAudioFrom(t *testing.T) {
	sc := &stubConfig{
		count: 1,
		size:  graph.AudioCapabilitySize,
		cap: graph.Capability{Audio: &graph.AudioCapability{
			MinChannels: 1, MaxChannels: 2, ChannelsGranularity: 1,
			MinSampleRate: 8000, MaxSampleRate: 48000, SampleRateGranularity: 1,
			MinSampleBits: 8, MaxSampleBits: 16, SampleBitsGranularity: 8,
		}},
	}
	a, err := AudioFrom(sc)
	if err != nil {
		t.Fatalf("AudioFrom failed: %v", err)
	}
	if a.MaxChannels != 2 || a.MaxSampleRate != 48000 || a.MaxSampleSize != 16 {
		t.Errorf("descriptor = %+v, want limits 2/48000/16", a)
	}
}
