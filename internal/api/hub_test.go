package api

import (
	"context"
	"encoding/json"
	"testing"

	"stockgame/internal/events"
)

func testClient(h *Hub, buffer int) *Client {
	return &Client{ID: "c", hub: h, send: make(chan []byte, buffer)}
}

func TestHubPublishWrapsEvent(t *testing.T) {
	h := NewHub()
	c := testClient(h, 4)
	h.Register(c)

	ev := events.Event{Seq: 7, RunID: "run-1", Name: "game:round", Data: []string{"a"}}
	if err := h.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	var msg map[string]any
	if err := json.Unmarshal(<-c.send, &msg); err != nil {
		t.Fatalf("bad frame: %v", err)
	}
	if msg["type"] != TypeEvent || msg["event"] != "game:round" || msg["seq"] != float64(7) || msg["run_id"] != "run-1" {
		t.Errorf("unexpected frame %v", msg)
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	h := NewHub()
	slow := testClient(h, 1)
	fast := testClient(h, 4)
	h.Register(slow)
	h.Register(fast)

	for seq := int64(1); seq <= 2; seq++ {
		h.Publish(context.Background(), events.Event{Seq: seq, Name: "game:round"})
	}

	if h.Count() != 1 {
		t.Fatalf("expected slow client dropped, have %d clients", h.Count())
	}
	if len(fast.send) != 2 {
		t.Errorf("fast client got %d frames, want 2", len(fast.send))
	}
	// The slow client's channel is closed after its buffered frame
	<-slow.send
	if _, ok := <-slow.send; ok {
		t.Error("slow client channel should be closed")
	}
}

func TestHubUnregisterTwice(t *testing.T) {
	h := NewHub()
	c := testClient(h, 1)
	h.Register(c)
	h.Unregister(c)
	h.Unregister(c)

	if c.reply([]byte("x")) {
		t.Error("reply after unregister should report closed")
	}
}

func TestHubCloseAll(t *testing.T) {
	h := NewHub()
	a, b := testClient(h, 1), testClient(h, 1)
	h.Register(a)
	h.Register(b)

	h.CloseAll()
	if h.Count() != 0 {
		t.Fatalf("expected no clients, have %d", h.Count())
	}
	for _, c := range []*Client{a, b} {
		if _, ok := <-c.send; ok {
			t.Error("send channel should be closed")
		}
	}
}

func TestReplyToFullBufferDropsClient(t *testing.T) {
	h := NewHub()
	c := testClient(h, 1)
	h.Register(c)
	c.send <- []byte("queued")

	if c.reply([]byte("ack")) {
		t.Fatal("reply to a full buffer should report the client gone")
	}
	if h.Count() != 0 {
		t.Fatalf("expected client unregistered, have %d clients", h.Count())
	}
	if got := <-c.send; string(got) != "queued" {
		t.Errorf("unexpected frame %q", got)
	}
	if _, ok := <-c.send; ok {
		t.Error("send channel should be closed")
	}
}

func TestReplyQueuesAck(t *testing.T) {
	h := NewHub()
	c := testClient(h, 1)
	h.Register(c)

	if !c.reply([]byte("ack")) {
		t.Fatal("reply with room in the buffer should succeed")
	}
	if got := <-c.send; string(got) != "ack" {
		t.Errorf("unexpected frame %q", got)
	}
}
