package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// VideoFormatResponse is the negotiated video format.
type VideoFormatResponse struct {
	Body VideoFormatData
}

// VideoFormatData carries the video format fields.
type VideoFormatData struct {
	FrameRate float64 `json:"frame_rate" example:"29.97" doc:"Frames per second"`
	Width     int     `json:"width" example:"640" doc:"Frame width in pixels"`
	Height    int     `json:"height" example:"480" doc:"Frame height in pixels"`
}

// VideoFormatRequest updates video format fields. Zero values are left
// unchanged.
type VideoFormatRequest struct {
	Body struct {
		FrameRate float64 `json:"frame_rate,omitempty" example:"25" doc:"Frames per second, 0 to keep"`
		Width     int     `json:"width,omitempty" example:"320" doc:"Frame width in pixels, 0 to keep"`
		Height    int     `json:"height,omitempty" example:"240" doc:"Frame height in pixels, 0 to keep"`
	}
}

// VideoCapsResponse is the video capability descriptor.
type VideoCapsResponse struct {
	Body VideoCapsData
}

// VideoCapsData mirrors the cached video capability descriptor.
type VideoCapsData struct {
	InputWidth   int     `json:"input_width" doc:"Native analog input width"`
	InputHeight  int     `json:"input_height" doc:"Native analog input height"`
	MinWidth     int     `json:"min_width" doc:"Minimum frame width"`
	MinHeight    int     `json:"min_height" doc:"Minimum frame height"`
	MaxWidth     int     `json:"max_width" doc:"Maximum frame width"`
	MaxHeight    int     `json:"max_height" doc:"Maximum frame height"`
	GranularityX int     `json:"granularity_x" doc:"Width step size"`
	GranularityY int     `json:"granularity_y" doc:"Height step size"`
	MinFrameRate float64 `json:"min_frame_rate" doc:"Slowest supported frame rate"`
	MaxFrameRate float64 `json:"max_frame_rate" doc:"Fastest supported frame rate"`
}

// registerVideoRoutes registers video format and capability routes.
func (s *Server) registerVideoRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-video-format",
		Method:      http.MethodGet,
		Path:        "/api/video/format",
		Summary:     "Get Video Format",
		Description: "Read the video device's current frame rate and size. Unwires the pipeline; refused while capturing.",
		Tags:        []string{"video"},
		Security:    withAuth(),
		Errors:      []int{401, 404, 409, 500},
	}, func(ctx context.Context, input *struct{}) (*VideoFormatResponse, error) {
		rate, err := s.session.FrameRate()
		if err != nil {
			return nil, mapSessionError(err)
		}
		w, h, err := s.session.FrameSize()
		if err != nil {
			return nil, mapSessionError(err)
		}
		return &VideoFormatResponse{Body: VideoFormatData{
			FrameRate: rate,
			Width:     w,
			Height:    h,
		}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-video-format",
		Method:      http.MethodPut,
		Path:        "/api/video/format",
		Summary:     "Set Video Format",
		Description: "Negotiate frame rate and size on the video device. Unwires the pipeline; refused while capturing.",
		Tags:        []string{"video"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 404, 409, 500},
	}, func(ctx context.Context, input *VideoFormatRequest) (*struct{}, error) {
		if input.Body.FrameRate > 0 {
			if err := s.session.SetFrameRate(input.Body.FrameRate); err != nil {
				return nil, mapSessionError(err)
			}
		}
		if input.Body.Width > 0 || input.Body.Height > 0 {
			if input.Body.Width <= 0 || input.Body.Height <= 0 {
				return nil, huma.Error400BadRequest("Width and height must be set together")
			}
			if err := s.session.SetFrameSize(input.Body.Width, input.Body.Height); err != nil {
				return nil, mapSessionError(err)
			}
		}
		return &struct{}{}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-video-capabilities",
		Method:      http.MethodGet,
		Path:        "/api/video/capabilities",
		Summary:     "Video Capabilities",
		Description: "Get the video device's geometric and temporal limits",
		Tags:        []string{"video"},
		Security:    withAuth(),
		Errors:      []int{401, 404, 409, 500},
	}, func(ctx context.Context, input *struct{}) (*VideoCapsResponse, error) {
		caps, err := s.session.VideoCaps()
		if err != nil {
			return nil, mapSessionError(err)
		}
		return &VideoCapsResponse{Body: VideoCapsData{
			InputWidth:   caps.InputWidth,
			InputHeight:  caps.InputHeight,
			MinWidth:     caps.MinWidth,
			MinHeight:    caps.MinHeight,
			MaxWidth:     caps.MaxWidth,
			MaxHeight:    caps.MaxHeight,
			GranularityX: caps.GranularityX,
			GranularityY: caps.GranularityY,
			MinFrameRate: caps.MinFrameRate,
			MaxFrameRate: caps.MaxFrameRate,
		}}, nil
	})
}
