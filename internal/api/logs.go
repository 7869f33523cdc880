package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/avhold/capnode/internal/events"
	"github.com/avhold/capnode/internal/logging"
)

func (s *Server) registerLogRoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "logs-stream",
		Method:      http.MethodGet,
		Path:        "/api/logs/stream",
		Summary:     "Log Stream",
		Description: "Streams log records over SSE, replaying buffered history before live entries.",
		Tags:        []string{"logs"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"message": events.LogEntryEvent{},
	}, s.streamLogs)
}

func (s *Server) streamLogs(ctx context.Context, _ *struct{}, send sse.Sender) {
	// History first, then subscribe. A record landing in the gap between
	// the two is lost to this client, which is acceptable for a log tail.
	if buf := logging.GetBuffer(); buf != nil {
		for _, entry := range buf.ReadAll() {
			if err := send.Data(logEntryEvent(entry)); err != nil {
				return
			}
		}
	}

	live := make(chan any, 100) // logs burst harder than session events
	defer events.SubscribeToChannel[events.LogEntryEvent](s.eventBus, live)()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-live:
			if err := send.Data(event); err != nil {
				return
			}
		}
	}
}

// logEntryEvent converts a buffered log record into its SSE payload.
func logEntryEvent(entry logging.LogEntry) events.LogEntryEvent {
	return events.LogEntryEvent{
		Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
		Level:      entry.Level,
		Module:     entry.Module,
		Message:    entry.Message,
		Attributes: entry.Attributes,
	}
}
