package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/avhold/capnode/internal/events"
)

// registerSSERoutes registers the native Huma SSE endpoint.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time event stream for session transitions, capture results, source changes, and preview updates",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"session-state":    events.SessionStateEvent{},
		"capture-started":  events.CaptureStartedEvent{},
		"capture-complete": events.CaptureCompleteEvent{},
		"device-in-use":    events.DeviceInUseEvent{},
		"source-selected":  events.SourceSelectedEvent{},
		"preview-resized":  events.PreviewResizedEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 10)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.SessionStateEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.CaptureStartedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.CaptureCompleteEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.DeviceInUseEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.SourceSelectedEvent](s.eventBus, eventCh),
			events.SubscribeToChannel[events.PreviewResizedEvent](s.eventBus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		// Initial snapshot so clients see the current state without
		// waiting for a transition.
		capture, preview := s.session.Built()
		state := s.session.State().String()
		if err := send.Data(events.SessionStateEvent{
			From:         state,
			To:           state,
			BuiltCapture: capture,
			BuiltPreview: preview,
			Timestamp:    time.Now().UTC().Format(time.RFC3339),
		}); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
