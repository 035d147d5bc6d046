package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"stockgame/internal/news"
)

// Client-to-server action events
const (
	EventBuy     = "game:buy"
	EventSell    = "game:sell"
	EventInsider = "game:insider"
	EventBonus   = "game:muft"
)

const (
	MsgInvalidTrade  = "Stock Name or Amount Invalid"
	MsgNotEnoughCash = "Not Enough Money"
	MsgInsiderUsed   = "Insider Tip already used"
	MsgBonusUsed     = "Bonus Cash already used"
	MsgUnknownAction = "Unknown Action"
	MsgBonusCredited = "Bonus Cash credited"
)

// Failure thresholds out of 10
const (
	buyFailureChance     = 2
	insiderFailureChance = 5
	bonusFailureChance   = 5
)

var ErrUnknownAction = errors.New("unknown action")

// TradeRequest is the body of game:buy and game:sell
type TradeRequest struct {
	Stock  string  `json:"stock"`
	Amount float64 `json:"amount"`
}

func (r TradeRequest) valid() bool {
	return r.Stock != "" && r.Amount > 0
}

// Record is one handled action, as written to the audit log
type Record struct {
	RunID     string
	SessionID string
	Action    string
	Stock     string
	Amount    float64
	Status    string
	Detail    string
	At        time.Time
}

// Recorder persists handled actions
type Recorder interface {
	RecordAction(ctx context.Context, rec Record) error
}

// Handler answers client actions. It holds no game state: every call is
// independent apart from the optional one-time perk ledger.
type Handler struct {
	dice     Dice
	news     news.Catalog
	perks    *perkLedger
	recorder Recorder
	runID    string
	clock    clockwork.Clock
}

type Option func(*Handler)

// WithRecorder writes every handled action to rec under runID
func WithRecorder(rec Recorder, runID string) Option {
	return func(h *Handler) {
		h.recorder = rec
		h.runID = runID
	}
}

// WithClock stamps audit records with clock instead of the wall clock
func WithClock(clock clockwork.Clock) Option {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithOneTimePerks makes insider tips and bonus cash usable once per
// session instead of re-rolling on every call.
func WithOneTimePerks() Option {
	return func(h *Handler) {
		h.perks = newPerkLedger()
	}
}

func NewHandler(dice Dice, catalog news.Catalog, opts ...Option) *Handler {
	h := &Handler{
		dice:  dice,
		news:  catalog,
		clock: clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Buy fails validation deterministically, then fails 20% of the time.
func (h *Handler) Buy(req TradeRequest) Response {
	if !req.valid() {
		return Failure(MsgInvalidTrade)
	}
	if fails(h.dice, buyFailureChance) {
		return Failure(MsgNotEnoughCash)
	}
	return Success(Payload{Msg: fmt.Sprintf("Bought %s shares of %s", formatAmount(req.Amount), req.Stock)})
}

// Sell has no failure branch beyond validation.
func (h *Handler) Sell(req TradeRequest) Response {
	if !req.valid() {
		return Failure(MsgInvalidTrade)
	}
	return Success(Payload{Msg: fmt.Sprintf("Sold %s shares of %s", formatAmount(req.Amount), req.Stock)})
}

// Insider returns a random headline from the catalog.
func (h *Handler) Insider(session string) Response {
	if h.perks != nil {
		if !h.perks.use(session, EventInsider) {
			return Failure(MsgInsiderUsed)
		}
		return Success(Payload{News: h.news.Pick(h.dice)})
	}
	if fails(h.dice, insiderFailureChance) {
		return Failure(MsgInsiderUsed)
	}
	return Success(Payload{News: h.news.Pick(h.dice)})
}

func (h *Handler) Bonus(session string) Response {
	if h.perks != nil {
		if !h.perks.use(session, EventBonus) {
			return Failure(MsgBonusUsed)
		}
		return Success(Payload{Msg: MsgBonusCredited})
	}
	if fails(h.dice, bonusFailureChance) {
		return Failure(MsgBonusUsed)
	}
	return Success(Payload{Msg: MsgBonusCredited})
}

// Handle dispatches a raw action by event name. It always returns exactly
// one response; the error is non-nil only for unknown events.
func (h *Handler) Handle(ctx context.Context, session, event string, data json.RawMessage) (Response, error) {
	var (
		resp Response
		req  TradeRequest
	)
	switch event {
	case EventBuy, EventSell:
		if len(data) > 0 {
			if err := json.Unmarshal(data, &req); err != nil {
				req = TradeRequest{}
			}
		}
		if event == EventBuy {
			resp = h.Buy(req)
		} else {
			resp = h.Sell(req)
		}
	case EventInsider:
		resp = h.Insider(session)
	case EventBonus:
		resp = h.Bonus(session)
	default:
		return Failure(MsgUnknownAction), ErrUnknownAction
	}

	h.record(ctx, Record{
		RunID:     h.runID,
		SessionID: session,
		Action:    event,
		Stock:     req.Stock,
		Amount:    req.Amount,
		Status:    resp.Status,
		Detail:    resp.Detail(),
		At:        h.clock.Now(),
	})
	return resp, nil
}

// Forget drops any per-session perk usage, e.g. when a connection closes.
func (h *Handler) Forget(session string) {
	if h.perks != nil {
		h.perks.forget(session)
	}
}

func (h *Handler) record(ctx context.Context, rec Record) {
	if h.recorder == nil {
		return
	}
	if err := h.recorder.RecordAction(ctx, rec); err != nil {
		log.Warn().Err(err).Str("action", rec.Action).Str("session", rec.SessionID).Msg("record action failed")
	}
}

func formatAmount(a float64) string {
	return strconv.FormatFloat(a, 'f', -1, 64)
}
