// Package cmd holds the auxiliary CLI commands and the backend selection
// shared with the server entrypoint.
package cmd

import (
	"fmt"

	"github.com/avhold/capnode/internal/graph"
	"github.com/avhold/capnode/internal/graph/memgraph"
	"github.com/avhold/capnode/internal/gst"
	"github.com/avhold/capnode/internal/logging"
)

// NewBackend creates the pipeline backend named by the --backend flag.
// "gst" drives real hardware through GStreamer; "mem" is the in-memory
// simulation with one video and one audio device.
func NewBackend(name string, log logging.Logger) (graph.Provider, error) {
	switch name {
	case "gst":
		log.Debug("using GStreamer backend")
		return gst.NewProvider(), nil
	case "mem":
		log.Debug("using in-memory backend")
		return memgraph.Default(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want gst or mem)", name)
	}
}
