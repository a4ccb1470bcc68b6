package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewNotifierDisabled(t *testing.T) {
	n := NewNotifier("", "")
	if n.Enabled() {
		t.Fatal("expected disabled notifier with empty credentials")
	}
}

func TestNewNotifierEnabled(t *testing.T) {
	n := NewNotifier("bot123", "chat456")
	if !n.Enabled() {
		t.Fatal("expected enabled notifier with credentials")
	}
}

func TestSendDisabled(t *testing.T) {
	n := NewNotifier("", "")
	if err := n.Send(context.Background(), "test"); err != nil {
		t.Fatalf("disabled send should succeed silently: %v", err)
	}
}

func testServer(t *testing.T, status int, captured *string) *Notifier {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			*captured = r.URL.Query().Get("text")
		}
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(map[string]bool{"ok": status == http.StatusOK}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	t.Cleanup(server.Close)

	return &Notifier{
		botToken:   "test-token",
		chatID:     "test-chat",
		httpClient: server.Client(),
		enabled:    true,
		baseURL:    server.URL,
	}
}

func TestSendSuccess(t *testing.T) {
	var receivedText string
	n := testServer(t, http.StatusOK, &receivedText)

	if err := n.Send(context.Background(), "hello world"); err != nil {
		t.Fatalf("send should succeed: %v", err)
	}
	if receivedText != "hello world" {
		t.Errorf("expected text=hello world, got %s", receivedText)
	}
}

func TestSendServerError(t *testing.T) {
	n := testServer(t, http.StatusBadRequest, nil)
	if err := n.Send(context.Background(), "test"); err == nil {
		t.Fatal("expected error for server error response")
	}
}

func TestNotifyModeChangeDisabled(t *testing.T) {
	n := NewNotifier("", "")
	if err := n.NotifyModeChange(context.Background(), "NORMAL", "REACTIVE", "volatility=HIGH", 48); err != nil {
		t.Fatalf("disabled notify should succeed: %v", err)
	}
}

func TestNotifyModeChange(t *testing.T) {
	var receivedText string
	n := testServer(t, http.StatusOK, &receivedText)

	if err := n.NotifyModeChange(context.Background(), "NORMAL", "REACTIVE", "volatility=HIGH", 48); err != nil {
		t.Fatalf("notify mode change: %v", err)
	}
	for _, want := range []string{"NORMAL", "REACTIVE", "volatility=HIGH", "48h"} {
		if !strings.Contains(receivedText, want) {
			t.Errorf("expected message to contain %q, got %q", want, receivedText)
		}
	}
}

func TestNotifyEmergency(t *testing.T) {
	var receivedText string
	n := testServer(t, http.StatusOK, &receivedText)

	if err := n.NotifyEmergency(context.Background(), "drawdown_pct=20.0 exceeds 15"); err != nil {
		t.Fatalf("notify emergency: %v", err)
	}
	if !strings.Contains(receivedText, "EMERGENCY") || !strings.Contains(receivedText, "drawdown_pct=20.0") {
		t.Errorf("unexpected message: %q", receivedText)
	}
}
