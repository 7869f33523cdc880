package graph

import "time"

// Recognized capability structure sizes in bytes. A backend reporting a
// larger structure speaks a layout revision this subsystem does not know,
// which is an unsupported-capability condition for the caller.
const (
	VideoCapabilitySize = 128
	AudioCapabilitySize = 56
)

// VideoCapability is the raw geometric/temporal limits a video stage
// reports for one capability structure.
type VideoCapability struct {
	InputWidth       int
	InputHeight      int
	MinWidth         int
	MinHeight        int
	MaxWidth         int
	MaxHeight        int
	GranularityX     int
	GranularityY     int
	MinFrameInterval time.Duration
	MaxFrameInterval time.Duration
}

// AudioCapability is the raw numeric limits an audio stage reports for one
// capability structure. Granularity zero means the value is fixed at min.
type AudioCapability struct {
	MinChannels           int
	MaxChannels           int
	ChannelsGranularity   int
	MinSampleRate         int
	MaxSampleRate         int
	SampleRateGranularity int
	MinSampleBits         int
	MaxSampleBits         int
	SampleBitsGranularity int
}

// Capability is one capability structure: exactly one member is set,
// matching the owning stream's media kind.
type Capability struct {
	Video *VideoCapability
	Audio *AudioCapability
}
