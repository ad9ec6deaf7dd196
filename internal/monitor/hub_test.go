package monitor

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"ubfuzz/internal/scheduler"
)

func TestHubBroadcastsStepEventsToConnectedClients(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	defer srv.Close()

	wsURL := "ws" + srv.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	// Give the server's registration goroutine a moment to run before the
	// broadcast, since ServeHTTP's own handler returns as soon as it has
	// registered the client and kicked off readUntilClosed.
	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if hub.ClientCount() != 1 {
		t.Fatalf("expected 1 connected client, got %d", hub.ClientCount())
	}

	events := make(chan scheduler.StepEvent, 1)
	hub.Drain(events)
	events <- scheduler.StepEvent{Step: 7, Score: 3, Interesting: true, QueueSize: 5, Strategy: "grow"}
	close(events)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("expected a broadcast message, got error: %v", err)
	}
	if got := string(data); got == "" {
		t.Fatal("expected non-empty broadcast payload")
	}
}

func TestClientCountDropsAfterDisconnect(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeHTTP))
	defer srv.Close()

	wsURL := "ws" + srv.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	conn.Close()

	deadline = time.Now().Add(time.Second)
	for hub.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if hub.ClientCount() != 0 {
		t.Fatalf("expected client count to drop to 0 after disconnect, got %d", hub.ClientCount())
	}
}
