package ws

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"zapdesk/entity"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	go hub.Run()

	client := &Client{hub: hub, send: make(chan []byte, 4)}
	hub.register <- client
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	hub.Publish(entity.Notification{Event: entity.NotifyMessageNew, At: time.Now()})

	select {
	case raw := <-client.send:
		var got entity.Notification
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("unmarshal broadcast: %v", err)
		}
		if got.Event != entity.NotifyMessageNew {
			t.Errorf("event = %q", got.Event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no broadcast received")
	}
}

func TestHubShedsSlowClient(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	go hub.Run()

	slow := &Client{hub: hub, send: make(chan []byte, 1)}
	fast := &Client{hub: hub, send: make(chan []byte, 16)}
	hub.register <- slow
	hub.register <- fast
	waitFor(t, func() bool { return hub.ClientCount() == 2 })

	// The slow client never drains; its one-slot buffer fills on the first
	// event and the second one must drop it.
	hub.Publish(entity.Notification{Event: entity.NotifyMessageNew})
	hub.Publish(entity.Notification{Event: entity.NotifyConversationUpdated})

	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	// The fast client keeps receiving.
	hub.Publish(entity.Notification{Event: entity.NotifyReportReady})
	waitFor(t, func() bool { return len(fast.send) >= 3 })

	// A shed client's channel is closed.
	<-slow.send
	if _, ok := <-slow.send; ok {
		t.Error("slow client channel not closed")
	}
}
