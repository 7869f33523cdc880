package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// LEDSetRequest switches one board LED.
type LEDSetRequest struct {
	Body struct {
		Type    string `json:"type" example:"record" doc:"Which LED to drive (record, status)"`
		Enabled bool   `json:"enabled" doc:"Turn the LED on or off"`
		Pattern string `json:"pattern,omitempty" example:"blink" doc:"Trigger pattern; empty keeps the current one"`
	}
}

// LEDInfoResponse describes what the board's LED controller can do.
type LEDInfoResponse struct {
	Body struct {
		Types    []string `json:"types" doc:"LED types present on this board"`
		Patterns []string `json:"patterns" doc:"Supported trigger patterns"`
	}
}

// registerLEDRoutes is a no-op on boards without a controller.
func (s *Server) registerLEDRoutes() {
	ctrl := s.options.LEDController
	if ctrl == nil {
		s.logger.Debug("no LED controller, indicator endpoints disabled")
		return
	}

	huma.Register(s.api, huma.Operation{
		OperationID: "control-led",
		Method:      http.MethodPost,
		Path:        "/api/leds",
		Summary:     "Set LED",
		Description: "Switch a board indicator LED and optionally its trigger pattern.",
		Tags:        []string{"leds"},
		Errors:      []int{400, 401, 500},
		Security:    withAuth(),
	}, func(ctx context.Context, input *LEDSetRequest) (*struct{}, error) {
		if err := ctrl.Set(input.Body.Type, input.Body.Enabled, input.Body.Pattern); err != nil {
			return nil, huma.Error400BadRequest("LED update rejected", err)
		}
		return &struct{}{}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-led-capabilities",
		Method:      http.MethodGet,
		Path:        "/api/leds/capabilities",
		Summary:     "LED Capabilities",
		Description: "List the LED types and trigger patterns this board exposes.",
		Tags:        []string{"leds"},
		Errors:      []int{401},
		Security:    withAuth(),
	}, func(ctx context.Context, _ *struct{}) (*LEDInfoResponse, error) {
		resp := &LEDInfoResponse{}
		resp.Body.Types = ctrl.Available()
		resp.Body.Patterns = ctrl.Patterns()
		return resp, nil
	})
}
