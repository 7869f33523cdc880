package led

import (
	"github.com/avhold/capnode/internal/events"
	"github.com/avhold/capnode/internal/logging"
)

// Manager drives the record LED from capture events: solid while a
// capture runs, blinking while a device is contended, off otherwise.
type Manager struct {
	controller  Controller
	eventBus    *events.Bus
	unsubscribe []func()
	log         logging.Logger
}

// NewManager creates a manager bound to a controller and event bus.
func NewManager(controller Controller, eventBus *events.Bus, log logging.Logger) *Manager {
	return &Manager{controller: controller, eventBus: eventBus, log: log}
}

// Start subscribes to capture events.
func (m *Manager) Start() {
	m.unsubscribe = []func(){
		m.eventBus.Subscribe(func(e events.CaptureStartedEvent) {
			m.set(true, "solid")
		}),
		m.eventBus.Subscribe(func(e events.CaptureCompleteEvent) {
			m.set(false, "")
		}),
		m.eventBus.Subscribe(func(e events.DeviceInUseEvent) {
			m.set(true, "blink")
		}),
	}
	m.log.Info("LED manager started")
}

// Stop unsubscribes and turns the record LED off.
func (m *Manager) Stop() {
	for _, unsub := range m.unsubscribe {
		unsub()
	}
	m.unsubscribe = nil
	m.set(false, "")
	m.log.Info("LED manager stopped")
}

// GetController returns the underlying controller for direct API access.
func (m *Manager) GetController() Controller {
	return m.controller
}

func (m *Manager) set(enabled bool, pattern string) {
	if err := m.controller.Set("record", enabled, pattern); err != nil {
		m.log.Warn("record LED update failed", "enabled", enabled, "pattern", pattern, "error", err)
	}
}
