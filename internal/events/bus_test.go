package events

import (
	"sync"
	"testing"
	"time"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	received := make(chan CaptureCompleteEvent, 1)

	unsub := bus.Subscribe(func(e CaptureCompleteEvent) {
		received <- e
	})
	defer unsub()

	event := CaptureCompleteEvent{
		OutputPath: "/tmp/out.avi",
		Timestamp:  "2026-01-27T10:30:00Z",
	}
	bus.Publish(event)

	got := <-received
	if got.OutputPath != event.OutputPath {
		t.Errorf("Expected output_path %s, got %s", event.OutputPath, got.OutputPath)
	}
}

func TestBus_MultipleSubscribers(_ *testing.T) {
	bus := New()
	received1 := make(chan SessionStateEvent, 1)
	received2 := make(chan SessionStateEvent, 1)

	unsub1 := bus.Subscribe(func(e SessionStateEvent) {
		received1 <- e
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(e SessionStateEvent) {
		received2 <- e
	})
	defer unsub2()

	bus.Publish(SessionStateEvent{From: "empty", To: "skeleton"})

	<-received1
	<-received2
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()
	received := make(chan DeviceInUseEvent, 1)

	unsub := bus.Subscribe(func(e DeviceInUseEvent) {
		received <- e
	})

	bus.Publish(DeviceInUseEvent{Device: "Video device"})
	<-received

	unsub()

	bus.Publish(DeviceInUseEvent{Device: "Audio device"})
	select {
	case <-received:
		t.Fatal("Should not have received event after unsubscribe")
	case <-time.After(10 * time.Millisecond):
		// Expected - no event
	}
}

func TestBus_TypeSafety(t *testing.T) {
	bus := New()

	stateReceived := make(chan bool, 1)
	sourceReceived := make(chan bool, 1)

	unsub1 := bus.Subscribe(func(_ SessionStateEvent) {
		stateReceived <- true
	})
	defer unsub1()

	unsub2 := bus.Subscribe(func(_ SourceSelectedEvent) {
		sourceReceived <- true
	})
	defer unsub2()

	bus.Publish(SessionStateEvent{From: "empty", To: "skeleton"})
	<-stateReceived

	select {
	case <-sourceReceived:
		t.Fatal("Source subscriber should NOT have received SessionStateEvent")
	case <-time.After(10 * time.Millisecond):
		// Expected
	}

	bus.Publish(SourceSelectedEvent{Kind: "video", Source: "Video Composite"})
	<-sourceReceived

	select {
	case <-stateReceived:
		t.Fatal("State subscriber should NOT have received SourceSelectedEvent")
	case <-time.After(10 * time.Millisecond):
		// Expected
	}
}

func TestBus_ThreadSafety(_ *testing.T) {
	bus := New()
	var wg sync.WaitGroup
	numGoroutines := 10
	eventsPerGoroutine := 100
	expected := numGoroutines * eventsPerGoroutine

	receivedCh := make(chan bool, expected)

	unsub := bus.Subscribe(func(_ PreviewResizedEvent) {
		receivedCh <- true
	})
	defer unsub()

	for range numGoroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range eventsPerGoroutine {
				bus.Publish(PreviewResizedEvent{
					Width:     640,
					Height:    480,
					Timestamp: time.Now().Format(time.RFC3339),
				})
			}
		}()
	}

	wg.Wait()

	for range expected {
		<-receivedCh
	}
}

func TestBus_AllEventTypes(t *testing.T) {
	bus := New()

	tests := []struct {
		name  string
		event Event
	}{
		{"SessionState", SessionStateEvent{From: "empty", To: "skeleton"}},
		{"CaptureStarted", CaptureStartedEvent{OutputPath: "/tmp/out.avi"}},
		{"CaptureComplete", CaptureCompleteEvent{OutputPath: "/tmp/out.avi"}},
		{"DeviceInUse", DeviceInUseEvent{Device: "Video device"}},
		{"SourceSelected", SourceSelectedEvent{Kind: "audio", Source: "Line In"}},
		{"PreviewResized", PreviewResizedEvent{Width: 800, Height: 600}},
		{"LogEntry", LogEntryEvent{Seq: 1, Level: "info", Message: "hello"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(_ *testing.T) {
			received := make(chan Event, 1)

			var unsub func()
			switch tt.event.(type) {
			case SessionStateEvent:
				unsub = bus.Subscribe(func(e SessionStateEvent) { received <- e })
			case CaptureStartedEvent:
				unsub = bus.Subscribe(func(e CaptureStartedEvent) { received <- e })
			case CaptureCompleteEvent:
				unsub = bus.Subscribe(func(e CaptureCompleteEvent) { received <- e })
			case DeviceInUseEvent:
				unsub = bus.Subscribe(func(e DeviceInUseEvent) { received <- e })
			case SourceSelectedEvent:
				unsub = bus.Subscribe(func(e SourceSelectedEvent) { received <- e })
			case PreviewResizedEvent:
				unsub = bus.Subscribe(func(e PreviewResizedEvent) { received <- e })
			case LogEntryEvent:
				unsub = bus.Subscribe(func(e LogEntryEvent) { received <- e })
			}
			defer unsub()

			bus.Publish(tt.event)
			<-received
		})
	}
}

func TestSubscribeToChannel(t *testing.T) {
	bus := New()
	ch := make(chan any, 2)

	unsub := SubscribeToChannel[CaptureStartedEvent](bus, ch)
	defer unsub()

	bus.Publish(CaptureStartedEvent{OutputPath: "/tmp/a.avi"})

	select {
	case got := <-ch:
		e, ok := got.(CaptureStartedEvent)
		if !ok {
			t.Fatalf("Expected CaptureStartedEvent, got %T", got)
		}
		if e.OutputPath != "/tmp/a.avi" {
			t.Errorf("Expected output_path /tmp/a.avi, got %s", e.OutputPath)
		}
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for bridged event")
	}

	// Events published against a full channel are dropped, not blocked on.
	ch <- struct{}{}
	ch <- struct{}{}
	done := make(chan bool, 1)
	go func() {
		bus.Publish(CaptureStartedEvent{OutputPath: "/tmp/b.avi"})
		done <- true
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full bridge channel")
	}
}
