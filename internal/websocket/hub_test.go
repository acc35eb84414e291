package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"stopguard/internal/models"
)

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub returned nil")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.ClientCount())
	}
}

func TestOriginCheckerCheck(t *testing.T) {
	checker := &OriginChecker{
		allowedOrigins: map[string]struct{}{
			"http://localhost:3000": {},
			"https://example.com":   {},
		},
		allowAll: false,
	}

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true}, // non-browser клиенты
		{"http://localhost:3000", true},
		{"https://example.com", true},
		{"http://evil.com", false},
		{"http://localhost:8080", false},
	}

	for _, tt := range tests {
		if got := checker.Check(tt.origin); got != tt.want {
			t.Errorf("Check(%q) = %v, want %v", tt.origin, got, tt.want)
		}
	}
}

func TestOriginCheckerAllowAll(t *testing.T) {
	checker := &OriginChecker{allowAll: true}
	if !checker.Check("http://anything.example") {
		t.Error("allowAll checker rejected an origin")
	}
}

func TestBroadcastStatus(t *testing.T) {
	hub := NewHub()

	hub.BroadcastStatus(models.BotStatus{
		Mode:           models.ModeManaging,
		Symbol:         "BTCUSDT",
		ResolvedSymbol: "BTC-USDT",
		MaxLossUSDT:    50,
		LastStopPrice:  95.0,
		UpdatedAt:      time.Now(),
	})

	select {
	case raw := <-hub.broadcast:
		var msg StatusMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("broadcast payload is not valid JSON: %v", err)
		}
		if msg.Type != MessageTypeStatus {
			t.Errorf("type = %q, want %q", msg.Type, MessageTypeStatus)
		}
		if msg.Data.ResolvedSymbol != "BTC-USDT" || msg.Data.LastStopPrice != 95.0 {
			t.Errorf("data = %+v", msg.Data)
		}
	default:
		t.Fatal("no message queued for broadcast")
	}
}

func TestBroadcastStopUpdate(t *testing.T) {
	hub := NewHub()

	hub.BroadcastStopUpdate(models.StopUpdate{
		Symbol:    "ETHUSDT",
		Side:      "SHORT",
		StopPrice: 120.0,
		Qty:       2,
		Notional:  1000,
		Timestamp: time.Now(),
	})

	select {
	case raw := <-hub.broadcast:
		var msg StopUpdateMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("broadcast payload is not valid JSON: %v", err)
		}
		if msg.Type != MessageTypeStopUpdate {
			t.Errorf("type = %q, want %q", msg.Type, MessageTypeStopUpdate)
		}
		if msg.Data.StopPrice != 120.0 || msg.Data.Side != "SHORT" {
			t.Errorf("data = %+v", msg.Data)
		}
	default:
		t.Fatal("no message queued for broadcast")
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.register <- client

	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	hub.unregister <- client
	waitFor(t, func() bool { return hub.ClientCount() == 0 })

	if _, ok := <-client.send; ok {
		t.Error("send channel was not closed on unregister")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}
