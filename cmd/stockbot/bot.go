package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"stockgame/internal/actions"
	"stockgame/internal/api"
	"stockgame/internal/config"
	"stockgame/internal/game"
)

type bot struct {
	cfg     config.BotConfig
	rnd     *rand.Rand
	http    *http.Client
	trading atomic.Bool
	ended   atomic.Bool
}

func newBot(cfg config.BotConfig) *bot {
	return &bot{
		cfg:  cfg,
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (b *bot) login(ctx context.Context) (string, error) {
	body, _ := json.Marshal(api.LoginRequest{Email: b.cfg.Email, Password: b.cfg.Password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(b.cfg.ServerURL, "/")+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out actions.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode login reply: %w", err)
	}
	if resp.StatusCode != http.StatusCreated || !out.OK() {
		return "", fmt.Errorf("login rejected (%d): %s", resp.StatusCode, out.Data.Err)
	}
	return out.Data.Token, nil
}

// wsURL turns the HTTP base URL into the websocket endpoint. last_seq=0
// replays the retained backlog so the bot learns the current stage.
func wsURL(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws"
	u.RawQuery = url.Values{"token": {token}, "last_seq": {"0"}}.Encode()
	return u.String(), nil
}

func (b *bot) run(ctx context.Context, token string) error {
	target, err := wsURL(b.cfg.ServerURL, token)
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Info().Str("url", b.cfg.ServerURL).Msg("connected")

	readErr := make(chan error, 1)
	go func() { readErr <- b.readLoop(conn) }()

	ticker := time.NewTicker(b.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		case err := <-readErr:
			if b.ended.Load() {
				return nil
			}
			return err
		case <-ticker.C:
			if !b.trading.Load() {
				continue
			}
			if err := conn.WriteJSON(b.nextAction()); err != nil {
				return err
			}
		}
	}
}

func (b *bot) readLoop(conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var msg struct {
			Type  string          `json:"type"`
			ID    string          `json:"id"`
			Seq   int64           `json:"seq"`
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn().Err(err).Msg("bad frame")
			continue
		}

		switch msg.Type {
		case api.TypeAck:
			var resp actions.Response
			_ = json.Unmarshal(msg.Data, &resp)
			log.Info().Str("id", msg.ID).Str("event", msg.Event).Str("status", resp.Status).Msg(resp.Detail())
		case api.TypeEvent:
			b.observe(msg.Event)
			log.Debug().Int64("seq", msg.Seq).Str("event", msg.Event).Msg("event")
			if b.ended.Load() {
				return errors.New("game ended")
			}
		}
	}
}

// observe tracks whether trading is open from broadcast names
func (b *bot) observe(event string) {
	switch event {
	case game.StageEvent(game.StageTrading):
		b.trading.Store(true)
	case game.StageEvent(game.StageCalculation):
		b.trading.Store(false)
	case game.EventEnd:
		b.trading.Store(false)
		b.ended.Store(true)
	}
}

// nextAction mostly trades, with the occasional perk
func (b *bot) nextAction() api.Request {
	req := api.Request{ID: uuid.NewString()}
	switch n := b.rnd.Intn(10); {
	case n == 0:
		req.Event = actions.EventInsider
	case n == 1:
		req.Event = actions.EventBonus
	default:
		req.Event = actions.EventBuy
		if n >= 6 {
			req.Event = actions.EventSell
		}
		stock := "AAPL"
		if len(b.cfg.Stocks) > 0 {
			stock = b.cfg.Stocks[b.rnd.Intn(len(b.cfg.Stocks))]
		}
		maxAmount := b.cfg.MaxAmount
		if maxAmount < 1 {
			maxAmount = 1
		}
		req.Data, _ = json.Marshal(actions.TradeRequest{
			Stock:  stock,
			Amount: float64(1 + b.rnd.Intn(maxAmount)),
		})
	}
	return req
}
