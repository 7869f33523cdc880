package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2"

	"github.com/avhold/capnode/internal/graph"
	"github.com/avhold/capnode/internal/session"
)

func TestMapSessionError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			"device in use",
			&session.DeviceInUseError{Device: "Video device", Err: graph.ErrResourceBusy},
			http.StatusConflict,
		},
		{"capturing", session.ErrCapturing, http.StatusConflict},
		{"no output path", session.ErrNoOutputPath, http.StatusBadRequest},
		{"no stream config", session.ErrNoStreamConfig, http.StatusNotFound},
		{"no tuner", session.ErrNoTuner, http.StatusNotFound},
		{"no video device", session.ErrNoVideoDevice, http.StatusNotFound},
		{"no audio device", session.ErrNoAudioDevice, http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := mapSessionError(tt.err)
			var se huma.StatusError
			if !errors.As(mapped, &se) {
				t.Fatalf("mapSessionError(%v) returned %T, want a status error", tt.err, mapped)
			}
			if se.GetStatus() != tt.wantStatus {
				t.Errorf("status = %d, want %d", se.GetStatus(), tt.wantStatus)
			}
		})
	}
}

func TestMediaKind(t *testing.T) {
	if got := mediaKind("audio"); got != graph.KindAudio {
		t.Errorf("mediaKind(audio) = %v, want KindAudio", got)
	}
	if got := mediaKind("video"); got != graph.KindVideo {
		t.Errorf("mediaKind(video) = %v, want KindVideo", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	mux := http.NewServeMux()
	defaultCORSPolicy().register(mux)

	req := httptest.NewRequest(http.MethodOptions, "/api/session", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("Allow-Methods header missing")
	}
}
