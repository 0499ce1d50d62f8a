package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

type fakeClient struct {
	ch chan Message
}

func (f *fakeClient) queue() chan Message { return f.ch }

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	h := New("test")
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.Done()
	})
	return h, cancel
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("client count: got %d, want %d", h.ClientCount(), n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestHub_BroadcastEvent(t *testing.T) {
	h, _ := startHub(t)

	a := &fakeClient{ch: make(chan Message, 4)}
	b := &fakeClient{ch: make(chan Message, 4)}
	if !h.join(a) || !h.join(b) {
		t.Fatal("join failed on running hub")
	}
	waitForClients(t, h, 2)

	if err := h.BroadcastEvent("job", map[string]string{"id": "42"}); err != nil {
		t.Fatalf("BroadcastEvent: %v", err)
	}

	for name, c := range map[string]*fakeClient{"a": a, "b": b} {
		select {
		case msg := <-c.ch:
			var ev struct {
				Type    string            `json:"type"`
				Payload map[string]string `json:"payload"`
			}
			if err := json.Unmarshal(msg.Data, &ev); err != nil {
				t.Fatalf("client %s: bad JSON: %v", name, err)
			}
			if ev.Type != "job" || ev.Payload["id"] != "42" {
				t.Errorf("client %s: got %+v", name, ev)
			}
		case <-time.After(time.Second):
			t.Fatalf("client %s: no message", name)
		}
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	h, _ := startHub(t)

	slow := &fakeClient{ch: make(chan Message)} // unbuffered and never read
	h.join(slow)
	waitForClients(t, h, 1)

	h.Broadcast(NewJSONMessage([]byte(`{}`)))
	waitForClients(t, h, 0)

	if _, ok := <-slow.ch; ok {
		t.Error("expected slow client's queue to be closed")
	}
}

func TestHub_Leave(t *testing.T) {
	h, _ := startHub(t)

	c := &fakeClient{ch: make(chan Message, 1)}
	h.join(c)
	waitForClients(t, h, 1)

	h.leave(c)
	waitForClients(t, h, 0)

	// A second leave is ignored.
	h.leave(c)
}

func TestHub_StopClosesClients(t *testing.T) {
	h, cancel := startHub(t)

	c := &fakeClient{ch: make(chan Message, 1)}
	h.join(c)
	waitForClients(t, h, 1)

	cancel()
	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	if _, ok := <-c.ch; ok {
		t.Error("expected queue to be closed on stop")
	}
	if h.join(&fakeClient{ch: make(chan Message, 1)}) {
		t.Error("join succeeded on stopped hub")
	}
}
