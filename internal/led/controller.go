// Package led drives the board's record indicator LED from capture
// events.
package led

import (
	"os"

	"github.com/avhold/capnode/internal/logging"
)

// Controller abstracts LED hardware control across boards.
type Controller interface {
	// Set controls an LED's state and optional pattern. An empty pattern
	// leaves the current trigger alone.
	Set(ledType string, enabled bool, pattern string) error

	// Available returns the LED types this controller supports.
	Available() []string

	// Patterns returns the patterns this controller supports.
	Patterns() []string
}

// New returns a controller for the current board: sysfs when the LED
// class directory exists, a no-op otherwise.
func New(log logging.Logger) Controller {
	if _, err := os.Stat(sysfsLEDPath); err == nil {
		return newSysfs(map[string]string{
			"record": "red:record",
			"status": "green:status",
		})
	}
	log.Debug("no sysfs LED class, LED control is a no-op")
	return noop{}
}

// noop satisfies Controller on boards without controllable LEDs.
type noop struct{}

func (noop) Set(string, bool, string) error { return nil }
func (noop) Available() []string            { return nil }
func (noop) Patterns() []string             { return nil }
