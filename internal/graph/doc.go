// Package graph defines the boundary to the native media framework that
// supplies the processing stages a capture pipeline is assembled from.
//
// The framework owns the actual frame capture, encoding and muxing work.
// capnode only assembles stages into a topology and drives their lifecycle,
// so this package contains no media logic: it is interfaces (Provider,
// Graph, Builder, Controller, Crossbar, StreamConfig, VideoSurface,
// TunerControl) plus the enums and status errors those interfaces speak.
//
// Backends live in subpackages (memgraph) and sibling packages (gst).
package graph
