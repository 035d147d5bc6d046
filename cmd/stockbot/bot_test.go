package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"stockgame/internal/actions"
	"stockgame/internal/config"
	"stockgame/internal/game"
)

func TestWSURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"http://localhost:8080", "ws://localhost:8080/ws?last_seq=0&token=token"},
		{"https://game.example.com/", "wss://game.example.com/ws?last_seq=0&token=token"},
	}
	for _, tt := range tests {
		got, err := wsURL(tt.base, "token")
		if err != nil {
			t.Fatalf("wsURL(%q) error = %v", tt.base, err)
		}
		if got != tt.want {
			t.Errorf("wsURL(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestObserveTracksStage(t *testing.T) {
	b := newBot(config.BotConfig{})

	b.observe(game.StageEvent(game.StageTrading))
	if !b.trading.Load() {
		t.Fatal("expected trading after TRADING_STAGE")
	}
	b.observe(game.EventRound)
	if !b.trading.Load() {
		t.Fatal("round headlines should not close trading")
	}
	b.observe(game.StageEvent(game.StageCalculation))
	if b.trading.Load() {
		t.Fatal("expected trading closed during calculation")
	}
	b.observe(game.EventEnd)
	if !b.ended.Load() {
		t.Fatal("expected ended after game:end")
	}
}

func TestNextActionIsWellFormed(t *testing.T) {
	b := newBot(config.BotConfig{Stocks: []string{"NVDA"}, MaxAmount: 3})
	seen := map[string]bool{}

	for i := 0; i < 500; i++ {
		req := b.nextAction()
		if req.ID == "" {
			t.Fatal("request without id")
		}
		seen[req.Event] = true
		switch req.Event {
		case actions.EventBuy, actions.EventSell:
			var trade actions.TradeRequest
			if err := json.Unmarshal(req.Data, &trade); err != nil {
				t.Fatalf("bad trade data: %v", err)
			}
			if trade.Stock != "NVDA" || trade.Amount < 1 || trade.Amount > 3 {
				t.Fatalf("unexpected trade %+v", trade)
			}
		case actions.EventInsider, actions.EventBonus:
			if req.Data != nil {
				t.Fatalf("perk with data %s", req.Data)
			}
		default:
			t.Fatalf("unexpected event %q", req.Event)
		}
	}
	for _, ev := range []string{actions.EventBuy, actions.EventSell, actions.EventInsider, actions.EventBonus} {
		if !seen[ev] {
			t.Errorf("never produced %s", ev)
		}
	}
}

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(actions.Success(actions.Payload{Token: "token"}))
	}))
	defer srv.Close()

	b := newBot(config.BotConfig{ServerURL: srv.URL, Email: "a@b.c", Password: "x"})
	token, err := b.login(context.Background())
	if err != nil {
		t.Fatalf("login error = %v", err)
	}
	if token != "token" {
		t.Errorf("token = %q", token)
	}
}

func TestLoginRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(actions.Failure("Wrong Email or Password"))
	}))
	defer srv.Close()

	b := newBot(config.BotConfig{ServerURL: srv.URL})
	if _, err := b.login(context.Background()); err == nil {
		t.Fatal("expected login error")
	}
}
