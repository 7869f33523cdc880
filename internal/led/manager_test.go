package led

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/avhold/capnode/internal/events"
)

// fakeController records Set calls for assertions.
type fakeController struct {
	mu    sync.Mutex
	calls []call
	ch    chan call
}

type call struct {
	ledType string
	enabled bool
	pattern string
}

func newFakeController() *fakeController {
	return &fakeController{ch: make(chan call, 10)}
}

func (f *fakeController) Set(ledType string, enabled bool, pattern string) error {
	f.mu.Lock()
	c := call{ledType: ledType, enabled: enabled, pattern: pattern}
	f.calls = append(f.calls, c)
	f.mu.Unlock()
	select {
	case f.ch <- c:
	default:
	}
	return nil
}

func (f *fakeController) Available() []string { return []string{"record"} }
func (f *fakeController) Patterns() []string  { return []string{"solid", "blink"} }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func waitCall(t *testing.T, f *fakeController) call {
	t.Helper()
	select {
	case c := <-f.ch:
		return c
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for LED update")
		return call{}
	}
}

func TestManagerDrivesRecordLED(t *testing.T) {
	bus := events.New()
	ctrl := newFakeController()
	m := NewManager(ctrl, bus, quietLogger())
	m.Start()

	bus.Publish(events.CaptureStartedEvent{OutputPath: "/tmp/out.avi"})
	c := waitCall(t, ctrl)
	if c.ledType != "record" || !c.enabled || c.pattern != "solid" {
		t.Errorf("capture start LED call = %+v, want record/on/solid", c)
	}

	bus.Publish(events.CaptureCompleteEvent{OutputPath: "/tmp/out.avi"})
	c = waitCall(t, ctrl)
	if c.enabled {
		t.Errorf("capture complete LED call = %+v, want off", c)
	}

	bus.Publish(events.DeviceInUseEvent{Device: "Video device"})
	c = waitCall(t, ctrl)
	if !c.enabled || c.pattern != "blink" {
		t.Errorf("device in use LED call = %+v, want on/blink", c)
	}

	m.Stop()
	c = waitCall(t, ctrl)
	if c.enabled {
		t.Errorf("stop LED call = %+v, want off", c)
	}
}

func TestManagerStopUnsubscribes(t *testing.T) {
	bus := events.New()
	ctrl := newFakeController()
	m := NewManager(ctrl, bus, quietLogger())
	m.Start()
	m.Stop()
	<-ctrl.ch // the off written by Stop

	bus.Publish(events.CaptureStartedEvent{OutputPath: "/tmp/out.avi"})
	select {
	case c := <-ctrl.ch:
		t.Errorf("LED updated after Stop: %+v", c)
	case <-time.After(50 * time.Millisecond):
		// Expected - no update
	}
}

func TestNoopController(t *testing.T) {
	var c Controller = noop{}
	if err := c.Set("record", true, "solid"); err != nil {
		t.Errorf("noop Set returned %v", err)
	}
	if c.Available() != nil {
		t.Errorf("noop Available = %v, want nil", c.Available())
	}
	if c.Patterns() != nil {
		t.Errorf("noop Patterns = %v, want nil", c.Patterns())
	}
}
