package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/avhold/capnode/internal/graph"
	"github.com/avhold/capnode/internal/source"
)

// SourceKindInput selects the video or audio source registry.
type SourceKindInput struct {
	Kind string `path:"kind" enum:"video,audio" example:"video" doc:"Media kind of the source registry"`
}

// SourceData describes one physical input.
type SourceData struct {
	Name    string `json:"name" example:"Video Composite" doc:"Display name of the physical input"`
	Enabled bool   `json:"enabled" doc:"Whether this input currently feeds the device"`
}

// SourcesResponse lists the physical inputs of a device.
type SourcesResponse struct {
	Body struct {
		Sources []SourceData `json:"sources" doc:"Routable physical inputs, discovery order"`
		Current string       `json:"current,omitempty" example:"Video Composite" doc:"Currently selected input, empty when none"`
	}
}

// SelectSourceInput selects a physical input by name.
type SelectSourceInput struct {
	SourceKindInput
	Body struct {
		Source string `json:"source" example:"Video S-Video" doc:"Input to select; empty disables all inputs"`
	}
}

// registerSourceRoutes registers physical-input discovery and selection.
func (s *Server) registerSourceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-sources",
		Method:      http.MethodGet,
		Path:        "/api/sources/{kind}",
		Summary:     "List Sources",
		Description: "List the routable physical inputs discovered for the device of the given kind",
		Tags:        []string{"sources"},
		Security:    withAuth(),
		Errors:      []int{401, 404, 500},
	}, func(ctx context.Context, input *SourceKindInput) (*SourcesResponse, error) {
		reg, err := s.registry(input.Kind)
		if err != nil {
			return nil, err
		}
		resp := &SourcesResponse{}
		for _, src := range reg.Sources() {
			enabled, err := src.Enabled()
			if err != nil {
				return nil, huma.Error500InternalServerError("Failed to query source state", err)
			}
			resp.Body.Sources = append(resp.Body.Sources, SourceData{
				Name:    src.Name(),
				Enabled: enabled,
			})
			if enabled && resp.Body.Current == "" {
				resp.Body.Current = src.Name()
			}
		}
		return resp, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "select-source",
		Method:      http.MethodPut,
		Path:        "/api/sources/{kind}",
		Summary:     "Select Source",
		Description: "Route the named physical input to the device. An empty name disables every input.",
		Tags:        []string{"sources"},
		Security:    withAuth(),
		Errors:      []int{400, 401, 404, 500},
	}, func(ctx context.Context, input *SelectSourceInput) (*struct{}, error) {
		reg, err := s.registry(input.Kind)
		if err != nil {
			return nil, err
		}
		var src *source.Source
		if input.Body.Source != "" {
			if src = reg.ByName(input.Body.Source); src == nil {
				return nil, huma.Error404NotFound("No such source: " + input.Body.Source)
			}
		}
		if err := s.session.SelectSource(reg, src); err != nil {
			return nil, huma.Error500InternalServerError("Source selection failed", err)
		}
		return &struct{}{}, nil
	})
}

func (s *Server) registry(kind string) (*source.Registry, error) {
	var reg *source.Registry
	var err error
	if kind == graph.KindAudio.String() {
		reg, err = s.session.AudioSources()
	} else {
		reg, err = s.session.VideoSources()
	}
	if err != nil {
		return nil, mapSessionError(err)
	}
	return reg, nil
}
