package format

import (
	"errors"
	"testing"
	"time"
)

func TestZeroBlockIsUnknown(t *testing.T) {
	var b Block
	if b.Kind() != KindUnknown {
		t.Fatalf("zero block kind = %v, want KindUnknown", b.Kind())
	}
	if _, err := b.FrameInterval(); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("FrameInterval on zero block = %v, want ErrUnknownKind", err)
	}
	if err := b.SetFrameSize(640, 480); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("SetFrameSize on zero block = %v, want ErrUnknownKind", err)
	}
	if _, err := b.Channels(); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Channels on zero block = %v, want ErrUnknownKind", err)
	}
}

func TestVideoFields(t *testing.T) {
	b := NewVideoInfo(VideoInfo{Width: 640, Height: 480, FrameInterval: 33 * time.Millisecond})

	w, h, err := b.FrameSize()
	if err != nil {
		t.Fatalf("FrameSize failed: %v", err)
	}
	if w != 640 || h != 480 {
		t.Errorf("FrameSize = %dx%d, want 640x480", w, h)
	}

	if err := b.SetFrameInterval(40 * time.Millisecond); err != nil {
		t.Fatalf("SetFrameInterval failed: %v", err)
	}
	ivl, err := b.FrameInterval()
	if err != nil {
		t.Fatalf("FrameInterval failed: %v", err)
	}
	if ivl != 40*time.Millisecond {
		t.Errorf("FrameInterval = %v, want 40ms", ivl)
	}

	// Audio fields do not exist on a video layout.
	if _, err := b.Channels(); !errors.Is(err, ErrNoField) {
		t.Errorf("Channels on video block = %v, want ErrNoField", err)
	}
	if err := b.SetSampleRate(44100); !errors.Is(err, ErrNoField) {
		t.Errorf("SetSampleRate on video block = %v, want ErrNoField", err)
	}
}

func TestVideoExtFields(t *testing.T) {
	b := NewVideoInfoExt(VideoInfoExt{
		VideoInfo: VideoInfo{Width: 720, Height: 576, FrameInterval: 20 * time.Millisecond},
		AspectX:   16, AspectY: 9,
	})

	w, h, err := b.FrameSize()
	if err != nil {
		t.Fatalf("FrameSize failed: %v", err)
	}
	if w != 720 || h != 576 {
		t.Errorf("FrameSize = %dx%d, want 720x576", w, h)
	}

	if err := b.SetFrameSize(704, 480); err != nil {
		t.Fatalf("SetFrameSize failed: %v", err)
	}
	ext, ok := b.VideoInfoExt()
	if !ok {
		t.Fatal("VideoInfoExt not recoverable")
	}
	if ext.Width != 704 || ext.AspectX != 16 {
		t.Errorf("ext = %+v, want width 704 and aspect preserved", ext)
	}
}

func TestAudioFields(t *testing.T) {
	b := NewWaveAudio(WaveAudio{Channels: 2, SamplesPerSec: 44100, BitsPerSample: 16})

	n, err := b.Channels()
	if err != nil || n != 2 {
		t.Errorf("Channels = %d, %v, want 2", n, err)
	}
	if err := b.SetSampleRate(48000); err != nil {
		t.Fatalf("SetSampleRate failed: %v", err)
	}
	hz, err := b.SampleRate()
	if err != nil || hz != 48000 {
		t.Errorf("SampleRate = %d, %v, want 48000", hz, err)
	}

	if _, _, err := b.FrameSize(); !errors.Is(err, ErrNoField) {
		t.Errorf("FrameSize on audio block = %v, want ErrNoField", err)
	}
}

func TestBlocksAreValues(t *testing.T) {
	original := NewVideoInfo(VideoInfo{Width: 640, Height: 480})
	copied := original
	if err := copied.SetFrameSize(320, 240); err != nil {
		t.Fatalf("SetFrameSize failed: %v", err)
	}
	w, _, err := original.FrameSize()
	if err != nil {
		t.Fatalf("FrameSize failed: %v", err)
	}
	if w != 640 {
		t.Errorf("original mutated through copy: width = %d, want 640", w)
	}
}
