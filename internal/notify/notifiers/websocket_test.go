package notifiers

import (
	"context"
	"testing"
	"time"

	"github.com/kmcsim/kmc-core/internal/notify"
)

func TestNewWebSocketNotifier(t *testing.T) {
	n := NewWebSocketNotifier("test-ws")
	defer n.Close()

	if n.ID() != "test-ws" {
		t.Errorf("expected ID 'test-ws', got %q", n.ID())
	}
	if n.Type() != "websocket" {
		t.Errorf("expected type 'websocket', got %q", n.Type())
	}
}

func TestWebSocketNotifierGetUpgrader(t *testing.T) {
	n := NewWebSocketNotifier("test")
	defer n.Close()

	upgrader := n.GetUpgrader()
	if upgrader.ReadBufferSize == 0 {
		t.Error("expected non-zero ReadBufferSize")
	}
	if upgrader.WriteBufferSize == 0 {
		t.Error("expected non-zero WriteBufferSize")
	}
}

func TestWebSocketNotifierNotifyWithNoClients(t *testing.T) {
	n := NewWebSocketNotifier("test")
	defer n.Close()

	event := notify.NewNetworkEvent("run-1", 1, 0, 1, 0.0)
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	if err := n.Notify(ctx, event); err != nil {
		t.Errorf("expected no error with no clients, got %v", err)
	}
}

func TestWebSocketNotifierNotifyCancelledContext(t *testing.T) {
	n := NewWebSocketNotifier("test")
	defer n.Close()

	event := notify.NewNetworkEvent("run-1", 1, 0, 1, 0.0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Should not panic regardless of whether the cancellation or the
	// broadcast send wins the race.
	_ = n.Notify(ctx, event)
}

func TestWebSocketNotifierClose(t *testing.T) {
	n := NewWebSocketNotifier("test")

	if err := n.Close(); err != nil {
		t.Errorf("expected no error on close, got %v", err)
	}
}

func TestWebSocketNotifierRegisterUnregisterNilIsSafe(t *testing.T) {
	n := NewWebSocketNotifier("test")
	defer n.Close()

	n.RegisterClient(nil)
	n.UnregisterClient(nil)
}
