package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// SessionStateResponse describes the session lifecycle.
type SessionStateResponse struct {
	Body SessionStateData
}

// SessionStateData is the session state payload.
type SessionStateData struct {
	State        string `json:"state" example:"wired" doc:"Lifecycle state: empty, skeleton, wired or capturing"`
	BuiltCapture bool   `json:"built_capture" doc:"Whether the capture sub-graph is connected"`
	BuiltPreview bool   `json:"built_preview" doc:"Whether the preview sub-graph is connected"`
	OutputPath   string `json:"output_path" example:"/var/lib/capnode/out.mkv" doc:"Target capture file"`
	HasVideo     bool   `json:"has_video" doc:"Whether the session was built with a video device"`
	HasAudio     bool   `json:"has_audio" doc:"Whether the session was built with an audio device"`
}

// OutputPathRequest sets the capture target file.
type OutputPathRequest struct {
	Body struct {
		Path string `json:"path" example:"/var/lib/capnode/out.mkv" doc:"Target capture file path"`
	}
}

// registerSessionRoutes registers lifecycle and capture-control routes.
func (s *Server) registerSessionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-session",
		Method:      http.MethodGet,
		Path:        "/api/session",
		Summary:     "Session State",
		Description: "Get the capture session's lifecycle state and wiring",
		Tags:        []string{"session"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(ctx context.Context, input *struct{}) (*SessionStateResponse, error) {
		capture, preview := s.session.Built()
		return &SessionStateResponse{Body: SessionStateData{
			State:        s.session.State().String(),
			BuiltCapture: capture,
			BuiltPreview: preview,
			OutputPath:   s.session.OutputPath(),
			HasVideo:     s.session.HasVideo(),
			HasAudio:     s.session.HasAudio(),
		}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "cue-capture",
		Method:      http.MethodPost,
		Path:        "/api/capture/cue",
		Summary:     "Cue Capture",
		Description: "Wire the capture path and pause it, so a later start has minimal latency",
		Tags:        []string{"capture"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 409, 500},
	}, func(ctx context.Context, input *struct{}) (*struct{}, error) {
		if err := s.session.Cue(); err != nil {
			return nil, mapSessionError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "start-capture",
		Method:      http.MethodPost,
		Path:        "/api/capture/start",
		Summary:     "Start Capture",
		Description: "Wire the capture path if needed and start writing to the output file",
		Tags:        []string{"capture"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 409, 500},
	}, func(ctx context.Context, input *struct{}) (*struct{}, error) {
		if err := s.session.Start(); err != nil {
			return nil, mapSessionError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "stop-capture",
		Method:      http.MethodPost,
		Path:        "/api/capture/stop",
		Summary:     "Stop Capture",
		Description: "Stop a running capture. The preview, when attached, keeps running.",
		Tags:        []string{"capture"},
		Security:    withAuth(),
		Errors:      []int{401, 500},
	}, func(ctx context.Context, input *struct{}) (*struct{}, error) {
		if err := s.session.Stop(); err != nil {
			return nil, mapSessionError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-output-path",
		Method:      http.MethodPut,
		Path:        "/api/output",
		Summary:     "Set Output Path",
		Description: "Point the capture at a new target file. Refused while capturing.",
		Tags:        []string{"capture"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 409, 500},
	}, func(ctx context.Context, input *OutputPathRequest) (*struct{}, error) {
		if err := s.session.SetOutputPath(input.Body.Path); err != nil {
			return nil, mapSessionError(err)
		}
		return &struct{}{}, nil
	})
}
