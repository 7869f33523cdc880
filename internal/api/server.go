// Package api exposes the capture session over HTTP using Huma v2 on the
// standard library mux. All endpoints sit behind basic auth except
// health, version and metrics.
package api

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/avhold/capnode/internal/devices"
	"github.com/avhold/capnode/internal/events"
	"github.com/avhold/capnode/internal/led"
	"github.com/avhold/capnode/internal/logging"
	"github.com/avhold/capnode/internal/session"
	"github.com/avhold/capnode/internal/version"
)

// Options configures the API server.
type Options struct {
	AuthUsername string
	AuthPassword string

	Session  *session.Session
	Catalog  *devices.Catalog
	EventBus *events.Bus

	PrometheusHandler http.Handler
	LEDController     led.Controller
}

// Server is the Huma v2 API server.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	httpServer *http.Server
	session    *session.Session
	catalog    *devices.Catalog
	eventBus   *events.Bus
	options    *Options
	logger     *slog.Logger
}

// NewServer creates the API server and registers every route.
func NewServer(opts *Options) *Server {
	mux := http.NewServeMux()

	cors := defaultCORSPolicy()
	cors.register(mux)

	config := huma.DefaultConfig("Capnode API", version.String())
	config.Info.Description = "Capture pipeline session control API"
	config.Servers = []*huma.Server{}
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"basicAuth": {
			Type:   "http",
			Scheme: "basic",
		},
	}

	api := humago.New(mux, config)

	server := &Server{
		api:      api,
		mux:      mux,
		session:  opts.Session,
		catalog:  opts.Catalog,
		eventBus: opts.EventBus,
		options:  opts,
		logger:   logging.GetLogger("api"),
	}

	api.UseMiddleware(cors.middleware)
	api.UseMiddleware(HTTPLoggingMiddleware)
	if opts.AuthUsername != "" && opts.AuthPassword != "" {
		api.UseMiddleware(server.basicAuthMiddleware(opts.AuthUsername, opts.AuthPassword))
	}

	// Prometheus stays off the Huma API so scrapers skip auth and CORS.
	if opts.PrometheusHandler != nil {
		mux.Handle("GET /metrics", opts.PrometheusHandler)
	}

	server.registerRoutes()
	return server
}

// Start runs the HTTP server on addr. Blocks until the server stops.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting API server", "addr", addr)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}
	return s.httpServer.ListenAndServe()
}

// Stop shuts the server down without waiting for open connections.
func (s *Server) Stop() error {
	s.logger.Info("stopping API server")
	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

// GetAPI returns the Huma API instance, used by tests.
func (s *Server) GetAPI() huma.API {
	return s.api
}

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Description: "Check API health status",
		Tags:        []string{"health"},
		Security:    []map[string][]string{},
	}, func(ctx context.Context, input *struct{}) (*HealthResponse, error) {
		return &HealthResponse{Body: HealthData{Status: "ok"}}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get application version information",
		Tags:        []string{"system"},
		Security:    []map[string][]string{},
	}, func(ctx context.Context, input *struct{}) (*VersionResponse, error) {
		return &VersionResponse{Body: version.Get()}, nil
	})

	s.registerSessionRoutes()
	s.registerVideoRoutes()
	s.registerAudioRoutes()
	s.registerSourceRoutes()
	s.registerTunerRoutes()
	s.registerDeviceRoutes()
	s.registerLEDRoutes()
	s.registerSSERoutes()
	s.registerLogRoutes()
}

// HealthResponse is the health endpoint payload.
type HealthResponse struct {
	Body HealthData
}

// HealthData carries the health status.
type HealthData struct {
	Status string `json:"status" example:"ok" doc:"API health status"`
}

// VersionResponse is the version endpoint payload.
type VersionResponse struct {
	Body version.Info
}

// basicAuthMiddleware enforces HTTP basic auth on operations that declare
// a security requirement. SSE clients that cannot set headers may pass
// base64 credentials in the auth query parameter instead.
func (s *Server) basicAuthMiddleware(username, password string) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		op := ctx.Operation()
		if op != nil && len(op.Security) == 0 {
			next(ctx)
			return
		}

		var credentials string
		if authHeader := ctx.Header("Authorization"); authHeader != "" {
			const prefix = "Basic "
			if !strings.HasPrefix(authHeader, prefix) {
				s.unauthorized(ctx, "Invalid authentication type", nil)
				return
			}
			decoded, err := base64.StdEncoding.DecodeString(authHeader[len(prefix):])
			if err != nil {
				s.unauthorized(ctx, "Invalid credentials format", err)
				return
			}
			credentials = string(decoded)
		} else if queryAuth := ctx.Query("auth"); queryAuth != "" {
			decoded, err := base64.StdEncoding.DecodeString(queryAuth)
			if err != nil {
				s.unauthorized(ctx, "Invalid credentials format", err)
				return
			}
			credentials = string(decoded)
		}

		if credentials == "" {
			s.unauthorized(ctx, "Authentication required", nil)
			return
		}
		parts := strings.SplitN(credentials, ":", 2)
		if len(parts) != 2 || parts[0] != username || parts[1] != password {
			s.unauthorized(ctx, "Invalid credentials", nil)
			return
		}
		next(ctx)
	}
}

func (s *Server) unauthorized(ctx huma.Context, msg string, err error) {
	ctx.SetHeader("WWW-Authenticate", `Basic realm="Capnode API"`)
	if err != nil {
		huma.WriteErr(s.api, ctx, http.StatusUnauthorized, msg, err)
		return
	}
	huma.WriteErr(s.api, ctx, http.StatusUnauthorized, msg)
}

// withAuth returns the security requirement for basic auth.
func withAuth() []map[string][]string {
	return []map[string][]string{
		{"basicAuth": {}},
	}
}

// mapSessionError translates session failures into HTTP errors.
func mapSessionError(err error) error {
	var busy *session.DeviceInUseError
	switch {
	case errors.As(err, &busy):
		return huma.Error409Conflict(busy.Error(), err)
	case errors.Is(err, session.ErrCapturing):
		return huma.Error409Conflict("A capture is running; stop it first", err)
	case errors.Is(err, session.ErrNoOutputPath):
		return huma.Error400BadRequest("No output path configured", err)
	case errors.Is(err, session.ErrNoStreamConfig),
		errors.Is(err, session.ErrNoTuner),
		errors.Is(err, session.ErrNoVideoDevice),
		errors.Is(err, session.ErrNoAudioDevice):
		return huma.Error404NotFound("Capability not present on this device", err)
	default:
		return huma.Error500InternalServerError("Session operation failed", err)
	}
}
