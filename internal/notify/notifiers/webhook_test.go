package notifiers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kmcsim/kmc-core/internal/notify"
)

func TestWebhookNotifierIDAndType(t *testing.T) {
	n := NewWebhookNotifier("test-webhook", "http://localhost:9999/webhook")

	if n.ID() != "test-webhook" {
		t.Errorf("expected ID 'test-webhook', got %q", n.ID())
	}
	if n.Type() != "webhook" {
		t.Errorf("expected type 'webhook', got %q", n.Type())
	}
	if err := n.Close(); err != nil {
		t.Errorf("Close should not return an error: %v", err)
	}
}

func TestWebhookNotifierNotifyPostsJSON(t *testing.T) {
	received := make(chan notify.Event, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected Content-Type application/json, got %q", ct)
		}
		var ev notify.Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		received <- ev
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhookNotifier("wh", srv.URL)
	n.SetHeader("X-Source", "kmc-sim")

	event := notify.NewNetworkEvent("run-1", 42, 3, 7, 1.25)
	if err := n.Notify(context.Background(), event); err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}

	select {
	case got := <-received:
		if got.RunID != event.RunID || got.Seed != event.Seed || got.Step != event.Step {
			t.Errorf("received event %+v does not match sent event %+v", got, event)
		}
	default:
		t.Fatal("server handler was not invoked")
	}
}

func TestWebhookNotifierNotifyNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewWebhookNotifier("wh", srv.URL)
	event := notify.NewNetworkEvent("run-1", 1, 0, 1, 0.0)
	if err := n.Notify(context.Background(), event); err == nil {
		t.Error("expected an error for a non-2xx response")
	}
}

func TestWebhookNotifierNotifyUnreachable(t *testing.T) {
	n := NewWebhookNotifier("wh", "http://127.0.0.1:0/webhook")
	event := notify.NewNetworkEvent("run-1", 1, 0, 1, 0.0)
	if err := n.Notify(context.Background(), event); err == nil {
		t.Error("expected an error when the webhook endpoint is unreachable")
	}
}
