// Package caps holds the immutable capability descriptors a session caches
// per stage: the numeric and geometric limits the stage reported the first
// time they were asked for. Descriptors are plain snapshots; the session
// clears them whenever the skeleton is rebuilt.
package caps

import (
	"errors"
	"fmt"

	"github.com/avhold/capnode/internal/graph"
)

// Errors reported while reading capability structures.
var (
	// ErrNoCapabilities means the stage reports zero capability structures.
	ErrNoCapabilities = errors.New("caps: stage reports no capability structures")

	// ErrUnknownLayout means the stage reports a capability structure
	// larger than the recognized layout.
	ErrUnknownLayout = errors.New("caps: capability structure layout not recognized")

	// ErrWrongKind means the stage reported a capability of the other
	// media kind than was asked for.
	ErrWrongKind = errors.New("caps: capability kind mismatch")
)

// Video is the capability descriptor of a video stage.
type Video struct {
	InputWidth   int
	InputHeight  int
	MinWidth     int
	MinHeight    int
	MaxWidth     int
	MaxHeight    int
	GranularityX int
	GranularityY int
	MinFrameRate float64
	MaxFrameRate float64
}

// Audio is the capability descriptor of an audio stage.
type Audio struct {
	MinChannels           int
	MaxChannels           int
	ChannelsGranularity   int
	MinSampleRate         int
	MaxSampleRate         int
	SampleRateGranularity int
	MinSampleSize         int
	MaxSampleSize         int
	SampleSizeGranularity int
}

// firstCapability validates the capability report and returns the first
// structure. A count above one is tolerated; only the first is used.
func firstCapability(sc graph.StreamConfig, maxSize int) (graph.Capability, error) {
	count, size, err := sc.Capabilities()
	if err != nil {
		return graph.Capability{}, fmt.Errorf("caps: query capabilities: %w", err)
	}
	if count == 0 {
		return graph.Capability{}, ErrNoCapabilities
	}
	if size > maxSize {
		return graph.Capability{}, fmt.Errorf("%w: %d bytes, expected at most %d", ErrUnknownLayout, size, maxSize)
	}
	return sc.CapabilityAt(0)
}

// VideoFrom reads the video capability descriptor off a stream config.
func VideoFrom(sc graph.StreamConfig) (*Video, error) {
	c, err := firstCapability(sc, graph.VideoCapabilitySize)
	if err != nil {
		return nil, err
	}
	if c.Video == nil {
		return nil, ErrWrongKind
	}
	v := &Video{
		InputWidth:   c.Video.InputWidth,
		InputHeight:  c.Video.InputHeight,
		MinWidth:     c.Video.MinWidth,
		MinHeight:    c.Video.MinHeight,
		MaxWidth:     c.Video.MaxWidth,
		MaxHeight:    c.Video.MaxHeight,
		GranularityX: c.Video.GranularityX,
		GranularityY: c.Video.GranularityY,
	}
	// Frame rate limits invert the reported intervals: the longest
	// interval is the slowest rate.
	if c.Video.MaxFrameInterval > 0 {
		v.MinFrameRate = float64(1e9) / float64(c.Video.MaxFrameInterval.Nanoseconds())
	}
	if c.Video.MinFrameInterval > 0 {
		v.MaxFrameRate = float64(1e9) / float64(c.Video.MinFrameInterval.Nanoseconds())
	}
	return v, nil
}

// AudioFrom reads the audio capability descriptor off a stream config.
func AudioFrom(sc graph.StreamConfig) (*Audio, error) {
	c, err := firstCapability(sc, graph.AudioCapabilitySize)
	if err != nil {
		return nil, err
	}
	if c.Audio == nil {
		return nil, ErrWrongKind
	}
	return &Audio{
		MinChannels:           c.Audio.MinChannels,
		MaxChannels:           c.Audio.MaxChannels,
		ChannelsGranularity:   c.Audio.ChannelsGranularity,
		MinSampleRate:         c.Audio.MinSampleRate,
		MaxSampleRate:         c.Audio.MaxSampleRate,
		SampleRateGranularity: c.Audio.SampleRateGranularity,
		MinSampleSize:         c.Audio.MinSampleBits,
		MaxSampleSize:         c.Audio.MaxSampleBits,
		SampleSizeGranularity: c.Audio.SampleBitsGranularity,
	}, nil
}
