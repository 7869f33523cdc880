// Package format models the opaque, tagged format block a stage exposes for
// its elementary stream. Exactly three layouts are recognized: two video
// variants and one audio variant. The block is a closed tagged union with
// explicit accessors for the handful of fields the session touches; any
// other layout kind is a hard unsupported-capability failure, never a
// silent fallback.
package format

import (
	"errors"
	"fmt"
	"time"
)

// Kind tags the layout of a format block.
type Kind uint32

// Recognized format block layouts.
const (
	KindUnknown Kind = iota
	KindVideoInfo
	KindVideoInfoExt
	KindWaveAudio
)

func (k Kind) String() string {
	switch k {
	case KindVideoInfo:
		return "video-info"
	case KindVideoInfoExt:
		return "video-info-ext"
	case KindWaveAudio:
		return "wave-audio"
	default:
		return fmt.Sprintf("unknown(%d)", uint32(k))
	}
}

// Errors returned by block accessors.
var (
	// ErrUnknownKind is returned when a block carries a layout this
	// subsystem does not recognize.
	ErrUnknownKind = errors.New("format: unrecognized format block kind")

	// ErrNoField is returned when the requested field does not exist in
	// the block's layout (asking an audio block for a frame size).
	ErrNoField = errors.New("format: field not present in format block")
)

// VideoInfo is the basic video stream layout.
type VideoInfo struct {
	Width         int
	Height        int
	FrameInterval time.Duration
	BitRate       int
}

// VideoInfoExt is the extended video layout carrying interlace and aspect
// information alongside the basic fields.
type VideoInfoExt struct {
	VideoInfo
	InterlaceFlags uint32
	AspectX        int
	AspectY        int
}

// WaveAudio is the audio stream layout.
type WaveAudio struct {
	Channels       int
	SamplesPerSec  int
	BitsPerSample  int
	BlockAlign     int
	AvgBytesPerSec int
}

// Block is one format block. The zero value has KindUnknown; construct with
// one of the New functions. Blocks are plain values: mutating a copy does
// not affect the stage until it is written back through its StreamConfig.
type Block struct {
	kind     Kind
	video    VideoInfo
	videoExt VideoInfoExt
	audio    WaveAudio
}

// NewVideoInfo wraps a basic video layout in a block.
func NewVideoInfo(v VideoInfo) Block {
	return Block{kind: KindVideoInfo, video: v}
}

// NewVideoInfoExt wraps an extended video layout in a block.
func NewVideoInfoExt(v VideoInfoExt) Block {
	return Block{kind: KindVideoInfoExt, videoExt: v}
}

// NewWaveAudio wraps an audio layout in a block.
func NewWaveAudio(a WaveAudio) Block {
	return Block{kind: KindWaveAudio, audio: a}
}

// Kind reports the block's declared layout.
func (b Block) Kind() Kind { return b.kind }

// VideoInfo returns the basic video layout. Valid only for KindVideoInfo.
func (b Block) VideoInfo() (VideoInfo, bool) {
	return b.video, b.kind == KindVideoInfo
}

// VideoInfoExt returns the extended video layout. Valid only for
// KindVideoInfoExt.
func (b Block) VideoInfoExt() (VideoInfoExt, bool) {
	return b.videoExt, b.kind == KindVideoInfoExt
}

// WaveAudio returns the audio layout. Valid only for KindWaveAudio.
func (b Block) WaveAudio() (WaveAudio, bool) {
	return b.audio, b.kind == KindWaveAudio
}

// checkKind validates that the block carries a recognized layout.
func (b Block) checkKind() error {
	switch b.kind {
	case KindVideoInfo, KindVideoInfoExt, KindWaveAudio:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKind, b.kind)
	}
}

// FrameInterval returns the average time per frame.
func (b Block) FrameInterval() (time.Duration, error) {
	if err := b.checkKind(); err != nil {
		return 0, err
	}
	switch b.kind {
	case KindVideoInfo:
		return b.video.FrameInterval, nil
	case KindVideoInfoExt:
		return b.videoExt.FrameInterval, nil
	}
	return 0, ErrNoField
}

// SetFrameInterval sets the average time per frame.
func (b *Block) SetFrameInterval(d time.Duration) error {
	if err := b.checkKind(); err != nil {
		return err
	}
	switch b.kind {
	case KindVideoInfo:
		b.video.FrameInterval = d
	case KindVideoInfoExt:
		b.videoExt.FrameInterval = d
	default:
		return ErrNoField
	}
	return nil
}

// FrameSize returns the frame geometry in pixels.
func (b Block) FrameSize() (width, height int, err error) {
	if err := b.checkKind(); err != nil {
		return 0, 0, err
	}
	switch b.kind {
	case KindVideoInfo:
		return b.video.Width, b.video.Height, nil
	case KindVideoInfoExt:
		return b.videoExt.Width, b.videoExt.Height, nil
	}
	return 0, 0, ErrNoField
}

// SetFrameSize sets the frame geometry in pixels.
func (b *Block) SetFrameSize(width, height int) error {
	if err := b.checkKind(); err != nil {
		return err
	}
	switch b.kind {
	case KindVideoInfo:
		b.video.Width, b.video.Height = width, height
	case KindVideoInfoExt:
		b.videoExt.Width, b.videoExt.Height = width, height
	default:
		return ErrNoField
	}
	return nil
}

// Channels returns the channel count of an audio block.
func (b Block) Channels() (int, error) {
	if err := b.checkKind(); err != nil {
		return 0, err
	}
	if b.kind != KindWaveAudio {
		return 0, ErrNoField
	}
	return b.audio.Channels, nil
}

// SetChannels sets the channel count of an audio block.
func (b *Block) SetChannels(n int) error {
	if err := b.checkKind(); err != nil {
		return err
	}
	if b.kind != KindWaveAudio {
		return ErrNoField
	}
	b.audio.Channels = n
	return nil
}

// SampleRate returns the sampling rate of an audio block in Hz.
func (b Block) SampleRate() (int, error) {
	if err := b.checkKind(); err != nil {
		return 0, err
	}
	if b.kind != KindWaveAudio {
		return 0, ErrNoField
	}
	return b.audio.SamplesPerSec, nil
}

// SetSampleRate sets the sampling rate of an audio block in Hz.
func (b *Block) SetSampleRate(hz int) error {
	if err := b.checkKind(); err != nil {
		return err
	}
	if b.kind != KindWaveAudio {
		return ErrNoField
	}
	b.audio.SamplesPerSec = hz
	return nil
}

// SampleSize returns the sample size of an audio block in bits.
func (b Block) SampleSize() (int, error) {
	if err := b.checkKind(); err != nil {
		return 0, err
	}
	if b.kind != KindWaveAudio {
		return 0, ErrNoField
	}
	return b.audio.BitsPerSample, nil
}

// SetSampleSize sets the sample size of an audio block in bits.
func (b *Block) SetSampleSize(bits int) error {
	if err := b.checkKind(); err != nil {
		return err
	}
	if b.kind != KindWaveAudio {
		return ErrNoField
	}
	b.audio.BitsPerSample = bits
	return nil
}
