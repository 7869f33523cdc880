package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// AudioFormatResponse is the negotiated audio format.
type AudioFormatResponse struct {
	Body AudioFormatData
}

// AudioFormatData carries the audio format fields.
type AudioFormatData struct {
	Channels   int `json:"channels" example:"2" doc:"Channel count"`
	SampleRate int `json:"sample_rate" example:"44100" doc:"Sampling rate in Hz"`
	SampleSize int `json:"sample_size" example:"16" doc:"Sample size in bits"`
}

// AudioFormatRequest updates audio format fields. Zero values are left
// unchanged.
type AudioFormatRequest struct {
	Body struct {
		Channels   int `json:"channels,omitempty" example:"1" doc:"Channel count, 0 to keep"`
		SampleRate int `json:"sample_rate,omitempty" example:"48000" doc:"Sampling rate in Hz, 0 to keep"`
		SampleSize int `json:"sample_size,omitempty" example:"16" doc:"Sample size in bits, 0 to keep"`
	}
}

// AudioCapsResponse is the audio capability descriptor.
type AudioCapsResponse struct {
	Body AudioCapsData
}

// AudioCapsData mirrors the cached audio capability descriptor.
type AudioCapsData struct {
	MinChannels           int `json:"min_channels" doc:"Minimum channel count"`
	MaxChannels           int `json:"max_channels" doc:"Maximum channel count"`
	ChannelsGranularity   int `json:"channels_granularity" doc:"Channel count step size"`
	MinSampleRate         int `json:"min_sample_rate" doc:"Minimum sampling rate in Hz"`
	MaxSampleRate         int `json:"max_sample_rate" doc:"Maximum sampling rate in Hz"`
	SampleRateGranularity int `json:"sample_rate_granularity" doc:"Sampling rate step size"`
	MinSampleSize         int `json:"min_sample_size" doc:"Minimum sample size in bits"`
	MaxSampleSize         int `json:"max_sample_size" doc:"Maximum sample size in bits"`
	SampleSizeGranularity int `json:"sample_size_granularity" doc:"Sample size step"`
}

// registerAudioRoutes registers audio format and capability routes.
func (s *Server) registerAudioRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-audio-format",
		Method:      http.MethodGet,
		Path:        "/api/audio/format",
		Summary:     "Get Audio Format",
		Description: "Read the audio device's current format. Unwires the pipeline; refused while capturing.",
		Tags:        []string{"audio"},
		Security:    withAuth(),
		Errors:      []int{401, 404, 409, 500},
	}, func(ctx context.Context, input *struct{}) (*AudioFormatResponse, error) {
		channels, err := s.session.Channels()
		if err != nil {
			return nil, mapSessionError(err)
		}
		rate, err := s.session.SampleRate()
		if err != nil {
			return nil, mapSessionError(err)
		}
		size, err := s.session.SampleSize()
		if err != nil {
			return nil, mapSessionError(err)
		}
		return &AudioFormatResponse{Body: AudioFormatData{
			Channels:   channels,
			SampleRate: rate,
			SampleSize: size,
		}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-audio-format",
		Method:      http.MethodPut,
		Path:        "/api/audio/format",
		Summary:     "Set Audio Format",
		Description: "Negotiate the audio device's format. Unwires the pipeline; refused while capturing.",
		Tags:        []string{"audio"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 404, 409, 500},
	}, func(ctx context.Context, input *AudioFormatRequest) (*struct{}, error) {
		if input.Body.Channels > 0 {
			if err := s.session.SetChannels(input.Body.Channels); err != nil {
				return nil, mapSessionError(err)
			}
		}
		if input.Body.SampleRate > 0 {
			if err := s.session.SetSampleRate(input.Body.SampleRate); err != nil {
				return nil, mapSessionError(err)
			}
		}
		if input.Body.SampleSize > 0 {
			if err := s.session.SetSampleSize(input.Body.SampleSize); err != nil {
				return nil, mapSessionError(err)
			}
		}
		return &struct{}{}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-audio-capabilities",
		Method:      http.MethodGet,
		Path:        "/api/audio/capabilities",
		Summary:     "Audio Capabilities",
		Description: "Get the audio device's format limits",
		Tags:        []string{"audio"},
		Security:    withAuth(),
		Errors:      []int{401, 404, 409, 500},
	}, func(ctx context.Context, input *struct{}) (*AudioCapsResponse, error) {
		caps, err := s.session.AudioCaps()
		if err != nil {
			return nil, mapSessionError(err)
		}
		return &AudioCapsResponse{Body: AudioCapsData{
			MinChannels:           caps.MinChannels,
			MaxChannels:           caps.MaxChannels,
			ChannelsGranularity:   caps.ChannelsGranularity,
			MinSampleRate:         caps.MinSampleRate,
			MaxSampleRate:         caps.MaxSampleRate,
			SampleRateGranularity: caps.SampleRateGranularity,
			MinSampleSize:         caps.MinSampleSize,
			MaxSampleSize:         caps.MaxSampleSize,
			SampleSizeGranularity: caps.SampleSizeGranularity,
		}}, nil
	})
}
