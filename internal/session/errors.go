package session

import (
	"errors"
	"fmt"
)

// Precondition errors. Mutating operations reported with one of these have
// had no effect.
var (
	// ErrNoDevice means a session was constructed with neither a video
	// nor an audio device.
	ErrNoDevice = errors.New("session: at least one of video or audio device is required")

	// ErrCapturing means a mutating operation was attempted while a
	// capture run is active.
	ErrCapturing = errors.New("session: operation not allowed while capturing")

	// ErrNoOutputPath means Start or Cue was called without a target
	// output path.
	ErrNoOutputPath = errors.New("session: no output path set")

	// ErrNoStreamConfig means the property's stage exposes no
	// format-block control.
	ErrNoStreamConfig = errors.New("session: stage has no stream configuration interface")

	// ErrNoVideoDevice / ErrNoAudioDevice mean the property belongs to a
	// device this session was not built with.
	ErrNoVideoDevice = errors.New("session: no video device configured")
	ErrNoAudioDevice = errors.New("session: no audio device configured")

	// ErrNoTuner means no tuner control was found on the skeleton.
	ErrNoTuner = errors.New("session: device has no tuner")
)

// DeviceInUseError reports that a device's output is claimed by another
// consumer. It wraps the framework's distinguished contention status.
type DeviceInUseError struct {
	Device string
	Err    error
}

func (e *DeviceInUseError) Error() string {
	return fmt.Sprintf("session: %s is in use by another application", e.Device)
}

func (e *DeviceInUseError) Unwrap() error { return e.Err }
