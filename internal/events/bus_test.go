package events

import (
	"sync"
	"testing"
	"time"
)

func TestBusPublishSubscribe(t *testing.T) {
	bus := NewBus(64)
	defer bus.Close()

	var mu sync.Mutex
	var received []Event

	bus.Subscribe(func(e Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
	}, EventTaskComplete)

	bus.Publish(NewTypedEvent(SourceTasks, TaskCompletePayload{TaskID: "t1", Status: "done"}))
	bus.Publish(NewTypedEvent(SourceTasks, TaskSubmittedPayload{TaskID: "t2", Kind: "image"}))

	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if len(received) != 1 {
		t.Fatalf("expected 1 event, got %d", len(received))
	}
	if received[0].Type != EventTaskComplete {
		t.Errorf("expected task:complete, got %s", received[0].Type)
	}
}

func TestBusSubscribeAll(t *testing.T) {
	bus := NewBus(64)
	defer bus.Close()

	var mu sync.Mutex
	count := 0

	bus.Subscribe(func(e Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	bus.Publish(NewTypedEvent(SourceTasks, TaskSubmittedPayload{TaskID: "t1"}))
	bus.Publish(NewTypedEvent(SourceBridge, CanvasReadRequestPayload{RequestID: "r1"}))

	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if count != 2 {
		t.Errorf("expected 2 events, got %d", count)
	}
}

func TestSubscribeChan(t *testing.T) {
	bus := NewBus(64)
	defer bus.Close()

	ch, unsub := bus.SubscribeChan(8, EventCanvasResponse)
	defer unsub()

	bus.Publish(NewTypedEvent(SourceWS, CanvasResponsePayload{RequestID: "r1", Result: `{"nodes":[]}`}))

	select {
	case e := <-ch:
		payload, ok := GetCanvasResponsePayload(e)
		if !ok {
			t.Fatal("failed to extract canvas response payload")
		}
		if payload.RequestID != "r1" {
			t.Errorf("expected r1, got %s", payload.RequestID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus(64)
	defer bus.Close()

	var mu sync.Mutex
	count := 0

	unsub := bus.Subscribe(func(e Event) {
		mu.Lock()
		count++
		mu.Unlock()
	}, EventTaskSubmitted)

	bus.Publish(NewTypedEvent(SourceTasks, TaskSubmittedPayload{TaskID: "t1"}))
	time.Sleep(50 * time.Millisecond)
	unsub()
	bus.Publish(NewTypedEvent(SourceTasks, TaskSubmittedPayload{TaskID: "t2"}))
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	if count != 1 {
		t.Errorf("expected 1 event after unsubscribe, got %d", count)
	}
}

func TestPublishDuringCloseDoesNotPanic(t *testing.T) {
	bus := NewBus(4)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			bus.Publish(NewEvent(EventTaskSubmitted, SourceTasks, nil))
		}
	}()

	time.Sleep(time.Millisecond)
	bus.Close()
	<-done

	// Publishing on a closed bus is a no-op.
	bus.Publish(NewEvent(EventTaskComplete, SourceTasks, nil))
}

func TestRingBuffer(t *testing.T) {
	rb := NewRingBuffer(3)

	for i := 0; i < 5; i++ {
		rb.Add(NewEvent(EventTaskSubmitted, SourceTasks, map[string]any{"i": i}))
	}

	events := rb.Get(10)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
}

func TestHistory(t *testing.T) {
	bus := NewBus(16)
	defer bus.Close()

	bus.Publish(NewTypedEvent(SourceTasks, TaskSubmittedPayload{TaskID: "t1"}))
	bus.Publish(NewTypedEvent(SourceTasks, TaskSubmittedPayload{TaskID: "t2"}))

	time.Sleep(50 * time.Millisecond)

	history := bus.History(10)
	if len(history) != 2 {
		t.Fatalf("expected 2 events in history, got %d", len(history))
	}
}

func TestExtractPayloadRoundTrip(t *testing.T) {
	e := NewTypedEvent(SourceTasks, TaskCompletePayload{
		TaskID:    "t1",
		ProjectID: "p1",
		Kind:      "image",
		Status:    "done",
		Output:    map[string]any{"assetPath": "/a.png"},
		NodeID:    "node-7",
	})

	payload, ok := GetTaskCompletePayload(e)
	if !ok {
		t.Fatal("failed to extract payload")
	}
	if payload.TaskID != "t1" || payload.NodeID != "node-7" {
		t.Errorf("unexpected payload: %+v", payload)
	}
	if payload.Output["assetPath"] != "/a.png" {
		t.Errorf("unexpected output: %+v", payload.Output)
	}
}
