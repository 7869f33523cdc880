// Package tuner wraps the channel and frequency control of a tuner-capable
// capture device. The wrapper keeps no state of its own; every read goes to
// the device so external channel changes are always visible.
package tuner

import (
	"fmt"

	"github.com/avhold/capnode/internal/graph"
)

// Tuner is the control surface over one device's tuner.
type Tuner struct {
	ctl graph.TunerControl
}

// New wraps a tuner control obtained from a construction helper.
func New(ctl graph.TunerControl) *Tuner {
	return &Tuner{ctl: ctl}
}

// Channel returns the currently tuned channel number.
func (t *Tuner) Channel() (int, error) {
	ch, err := t.ctl.Channel()
	if err != nil {
		return 0, fmt.Errorf("tuner: read channel: %w", err)
	}
	return ch, nil
}

// SetChannel tunes to the given channel number.
func (t *Tuner) SetChannel(ch int) error {
	if err := t.ctl.SetChannel(ch); err != nil {
		return fmt.Errorf("tuner: set channel %d: %w", ch, err)
	}
	return nil
}

// Frequency returns the frequency of the current channel in hertz.
func (t *Tuner) Frequency() (int, error) {
	hz, err := t.ctl.Frequency()
	if err != nil {
		return 0, fmt.Errorf("tuner: read frequency: %w", err)
	}
	return hz, nil
}

// SignalPresent reports whether a broadcast signal is detected on the
// current channel.
func (t *Tuner) SignalPresent() (bool, error) {
	ok, err := t.ctl.SignalPresent()
	if err != nil {
		return false, fmt.Errorf("tuner: read signal: %w", err)
	}
	return ok, nil
}
