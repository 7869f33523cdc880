package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// TunerResponse is the tuner status payload.
type TunerResponse struct {
	Body TunerData
}

// TunerData carries the tuner's current state.
type TunerData struct {
	Channel       int  `json:"channel" example:"7" doc:"Currently tuned channel"`
	Frequency     int  `json:"frequency" example:"85250000" doc:"Channel frequency in Hz"`
	SignalPresent bool `json:"signal_present" doc:"Whether a broadcast signal is detected"`
}

// TunerChannelRequest tunes to a channel.
type TunerChannelRequest struct {
	Body struct {
		Channel int `json:"channel" minimum:"1" example:"7" doc:"Channel number to tune to"`
	}
}

// registerTunerRoutes registers tuner control routes.
func (s *Server) registerTunerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-tuner",
		Method:      http.MethodGet,
		Path:        "/api/tuner",
		Summary:     "Tuner Status",
		Description: "Get the tuner's channel, frequency and signal state. 404 when the device has no tuner.",
		Tags:        []string{"tuner"},
		Security:    withAuth(),
		Errors:      []int{401, 404, 500},
	}, func(ctx context.Context, input *struct{}) (*TunerResponse, error) {
		t, err := s.session.Tuner()
		if err != nil {
			return nil, mapSessionError(err)
		}
		channel, err := t.Channel()
		if err != nil {
			return nil, huma.Error500InternalServerError("Tuner read failed", err)
		}
		freq, err := t.Frequency()
		if err != nil {
			return nil, huma.Error500InternalServerError("Tuner read failed", err)
		}
		signal, err := t.SignalPresent()
		if err != nil {
			return nil, huma.Error500InternalServerError("Tuner read failed", err)
		}
		return &TunerResponse{Body: TunerData{
			Channel:       channel,
			Frequency:     freq,
			SignalPresent: signal,
		}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-tuner-channel",
		Method:      http.MethodPut,
		Path:        "/api/tuner/channel",
		Summary:     "Tune Channel",
		Description: "Tune to a channel. 404 when the device has no tuner.",
		Tags:        []string{"tuner"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 404, 500},
	}, func(ctx context.Context, input *TunerChannelRequest) (*struct{}, error) {
		t, err := s.session.Tuner()
		if err != nil {
			return nil, mapSessionError(err)
		}
		if err := t.SetChannel(input.Body.Channel); err != nil {
			return nil, huma.Error400BadRequest("Tune failed", err)
		}
		return &struct{}{}, nil
	})
}
