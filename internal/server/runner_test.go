package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sanonone/beams/pkg/frame"
)

func TestRunnerStopsOnCancel(t *testing.T) {
	runner := newTestRunner(t, 2)
	runner.interval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for runner.Stats().Tick < 5 {
		if time.Now().After(deadline) {
			t.Fatal("runner did not tick")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestUpdateOrientationConcurrentPartial(t *testing.T) {
	runner := newTestRunner(t, 0)
	roll, yaw := 1.0, 2.0

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				runner.UpdateOrientation(&roll, nil)
			} else {
				runner.UpdateOrientation(nil, &yaw)
			}
		}()
	}
	wg.Wait()

	if got := runner.Angles(); got.Roll != roll || got.Yaw != yaw {
		t.Errorf("lost update: got %+v", got)
	}
}

func TestSubscribeReceivesFrames(t *testing.T) {
	runner := newTestRunner(t, 2)
	frames, cancel := runner.Subscribe()

	// Fill past the buffer: the runner must never block on a slow client.
	for range subscriberBuffer + 3 {
		runner.Step()
	}
	if got := len(frames); got != subscriberBuffer {
		t.Fatalf("buffered %d frames, want %d", got, subscriberBuffer)
	}

	f, err := frame.Decode(<-frames)
	if err != nil {
		t.Fatal(err)
	}
	if f.Tick != 1 {
		t.Errorf("first buffered frame tick = %d, want 1", f.Tick)
	}

	cancel()
	cancel()
	for range frames {
	}
	if runner.subscriberCount() != 0 {
		t.Error("subscriber not removed")
	}
}

func TestStreamEndpoint(t *testing.T) {
	runner := newTestRunner(t, 3)
	s := NewServer(runner, ":0")
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/stream"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()

	// 1. The current state arrives on connect.
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, msg, err := ws.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	if kind != websocket.BinaryMessage {
		t.Fatalf("expected a binary message, got type %d", kind)
	}
	_, payload, _, err := frame.ReadFrame(strings.NewReader(string(msg)))
	if err != nil {
		t.Fatal(err)
	}
	first, err := frame.Decode(payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Entities) != 3 {
		t.Errorf("expected 3 entities, got %d", len(first.Entities))
	}

	// 2. Every tick is pushed once the client is subscribed.
	deadline := time.Now().Add(2 * time.Second)
	for runner.subscriberCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	runner.Step()
	_, msg, err = ws.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	_, payload, _, err = frame.ReadFrame(strings.NewReader(string(msg)))
	if err != nil {
		t.Fatal(err)
	}
	next, err := frame.Decode(payload)
	if err != nil {
		t.Fatal(err)
	}
	if next.Tick != first.Tick+1 {
		t.Errorf("streamed tick %d, want %d", next.Tick, first.Tick+1)
	}
}
