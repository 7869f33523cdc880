package graph

import "errors"

// Status errors returned by framework backends. Callers compare with
// errors.Is; backends may wrap them with detail.
var (
	// ErrNoInterface means the requested control interface or route
	// classification is not reachable from the stage. Callers use it to
	// drive the interleaved-to-dedicated route fallback.
	ErrNoInterface = errors.New("graph: no matching interface")

	// ErrResourceBusy is the distinguished contention status reported when
	// a device's output is already claimed by another consumer.
	ErrResourceBusy = errors.New("graph: resource busy")

	// ErrNotInGraph means the stage is not part of the topology.
	ErrNotInGraph = errors.New("graph: stage not in topology")

	// ErrUnsupported means the backend cannot satisfy the operation at all
	// (as opposed to a transient failure).
	ErrUnsupported = errors.New("graph: operation not supported")
)
