package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/avhold/capnode/internal/graph"
)

// DeviceKindInput selects the media kind of a device listing.
type DeviceKindInput struct {
	Kind string `path:"kind" enum:"video,audio" doc:"Media kind to list"`
}

// DeviceData describes one installed device or encoder.
type DeviceData struct {
	ID   string `json:"id" example:"v4l2:/dev/video0" doc:"Backend device identifier"`
	Name string `json:"name" example:"USB Capture Card" doc:"Human readable device name"`
}

// DevicesResponse lists installed devices of one kind.
type DevicesResponse struct {
	Body struct {
		Devices []DeviceData `json:"devices" doc:"Installed devices"`
	}
}

// registerDeviceRoutes registers device and encoder enumeration routes.
func (s *Server) registerDeviceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-devices",
		Method:      http.MethodGet,
		Path:        "/api/devices/{kind}",
		Summary:     "List Devices",
		Description: "List installed capture devices of one media kind.",
		Tags:        []string{"devices"},
		Security:    withAuth(),
		Errors:      []int{401, 500},
	}, func(ctx context.Context, input *DeviceKindInput) (*DevicesResponse, error) {
		list, err := s.catalog.Devices(mediaKind(input.Kind))
		if err != nil {
			return nil, huma.Error500InternalServerError("Device enumeration failed", err)
		}
		return deviceResponse(list), nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "list-encoders",
		Method:      http.MethodGet,
		Path:        "/api/encoders/{kind}",
		Summary:     "List Encoders",
		Description: "List installed encoders of one media kind.",
		Tags:        []string{"devices"},
		Security:    withAuth(),
		Errors:      []int{401, 500},
	}, func(ctx context.Context, input *DeviceKindInput) (*DevicesResponse, error) {
		list, err := s.catalog.Codecs(mediaKind(input.Kind))
		if err != nil {
			return nil, huma.Error500InternalServerError("Encoder enumeration failed", err)
		}
		return deviceResponse(list), nil
	})
}

func mediaKind(kind string) graph.MediaKind {
	if kind == "audio" {
		return graph.KindAudio
	}
	return graph.KindVideo
}

func deviceResponse(list []graph.Device) *DevicesResponse {
	resp := &DevicesResponse{}
	resp.Body.Devices = make([]DeviceData, 0, len(list))
	for _, d := range list {
		resp.Body.Devices = append(resp.Body.Devices, DeviceData{ID: d.ID, Name: d.Name})
	}
	return resp
}
