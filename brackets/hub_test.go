package brackets

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHubPublish(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(discardLogger())
	go hub.Run(ctx)

	client := NewClient(hub, nil)
	hub.Register <- client

	if err := hub.Publish(ctx, MessageStandingsUpdated, map[string]int{"match_count": 3}); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	select {
	case raw := <-client.Send:
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]int `json:"payload"`
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if msg.Type != MessageStandingsUpdated || msg.Payload["match_count"] != 3 {
			t.Errorf("got message %+v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for broadcast")
	}

	if got := hub.ClientCount(); got != 1 {
		t.Errorf("ClientCount() = %d; want 1", got)
	}

	hub.Unregister <- client
	if _, ok := <-client.Send; ok {
		t.Error("client send channel still open after unregister")
	}
}

func TestHubStopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(discardLogger())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	err := hub.Publish(context.Background(), MessageStandingsUpdated, nil)
	if !errors.Is(err, ErrHubStopped) {
		t.Errorf("Publish after stop err = %v; want ErrHubStopped", err)
	}
}

func TestHubAttach(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(discardLogger())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	client := NewClient(hub, nil)
	if err := hub.Attach(context.Background(), client); err != nil {
		t.Fatalf("Attach returned error: %v", err)
	}

	cancel()
	<-stopped

	// Run closes every client on the way out.
	if _, ok := <-client.Send; ok {
		t.Error("client send channel still open after hub stopped")
	}
	if err := hub.Attach(context.Background(), NewClient(hub, nil)); !errors.Is(err, ErrHubStopped) {
		t.Errorf("Attach after stop err = %v; want ErrHubStopped", err)
	}
}
