package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"stockgame/internal/actions"
	"stockgame/internal/events"
	"stockgame/internal/game"
	"stockgame/internal/logging"
	"stockgame/internal/store"
	"stockgame/web"
)

// Default limits, per minute
const (
	DefaultActionRateLimit = 120
	DefaultLoginRateLimit  = 30
)

// StateSource exposes the running game
type StateSource interface {
	Snapshot() game.Snapshot
}

type Server struct {
	bus           *events.Bus
	game          StateSource
	handler       *actions.Handler
	store         *store.Store
	hub           *Hub
	gate          *Gate
	clock         clockwork.Clock
	actionLimiter *RateLimiter
	loginLimiter  *RateLimiter
	upgrader      websocket.Upgrader
	corsOrigins   []string // Allowed CORS origins (empty = allow all)
	trustProxy    bool     // Take client IPs from X-Forwarded-For / X-Real-IP
}

// NewServer wires the websocket hub onto bus. st may be nil, in which case
// history and summaries are served from memory only.
func NewServer(bus *events.Bus, state StateSource, handler *actions.Handler, st *store.Store) *Server {
	s := &Server{
		bus:     bus,
		game:    state,
		handler: handler,
		store:   st,
		hub:     NewHub(),
		gate:    NewGate(AcceptedToken),
		clock:   clockwork.NewRealClock(),
	}
	s.actionLimiter = NewRateLimiter(DefaultActionRateLimit, time.Minute, s.clock)
	s.loginLimiter = NewRateLimiter(DefaultLoginRateLimit, time.Minute, s.clock)
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return s.checkCORSOrigin(r.Header.Get("Origin"))
		},
	}
	bus.AddSink(s.hub)
	return s
}

// SetCORSOrigins sets the allowed CORS origins.
// Pass an empty slice to allow all origins (default, for development).
func (s *Server) SetCORSOrigins(origins []string) {
	s.corsOrigins = origins
}

// SetTrustProxy makes the server take the client IP from proxy headers.
// Only enable it behind a proxy that overwrites them; otherwise any caller
// can pick its own IP and dodge the login limit.
func (s *Server) SetTrustProxy(trust bool) {
	s.trustProxy = trust
}

// SetRateLimits replaces the per-connection action limit and the per-IP
// login limit. Call before serving.
func (s *Server) SetRateLimits(actionsPerMinute, loginsPerMinute int) {
	s.actionLimiter.Stop()
	s.loginLimiter.Stop()
	s.actionLimiter = NewRateLimiter(actionsPerMinute, time.Minute, s.clock)
	s.loginLimiter = NewRateLimiter(loginsPerMinute, time.Minute, s.clock)
}

// checkCORSOrigin checks if an origin is allowed
func (s *Server) checkCORSOrigin(origin string) bool {
	// Empty list = allow all (development mode)
	if len(s.corsOrigins) == 0 {
		return true
	}
	// Empty origin header = same-origin request, always allow
	if origin == "" {
		return true
	}
	for _, allowed := range s.corsOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if s.trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	r.Use(requestLogger())
	r.Use(middleware.SetHeader("X-Content-Type-Options", "nosniff"))
	r.Use(middleware.SetHeader("X-Frame-Options", "DENY"))

	allowedOrigins := s.corsOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"} // Allow all in development mode
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.With(s.loginLimiter.Middleware).Post("/auth/login", s.handleLogin)
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/events", s.handleEvents)
		r.Get("/actions/summary", s.handleActionSummary)
	})

	return r
}

func requestLogger() func(http.Handler) http.Handler {
	return httplog.RequestLogger(logging.Slog(), &httplog.Options{
		Level: slog.LevelInfo,
		LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
			route := req.URL.Path
			if rc := chi.RouteContext(req.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			return []slog.Attr{
				slog.String("request_id", middleware.GetReqID(req.Context())),
				slog.String("route", route),
			}
		},
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(web.Index())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// StateResponse is the body of GET /api/state
type StateResponse struct {
	game.Snapshot
	RunID   string `json:"run_id"`
	LastSeq int64  `json:"last_seq"`
	Clients int    `json:"clients"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StateResponse{
		Snapshot: s.game.Snapshot(),
		RunID:    s.bus.RunID(),
		LastSeq:  s.bus.LastSeq(),
		Clients:  s.hub.Count(),
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	after, limit := parseEventQuery(r)

	if s.store == nil {
		evs := s.bus.Recent(after)
		if len(evs) > limit {
			evs = evs[:limit]
		}
		writeJSON(w, http.StatusOK, evs)
		return
	}

	evs, err := s.store.EventsAfter(r.Context(), s.bus.RunID(), after, limit)
	if err != nil {
		log.Error().Err(err).Msg("list events")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list events"})
		return
	}
	writeJSON(w, http.StatusOK, evs)
}

func parseEventQuery(r *http.Request) (after int64, limit int) {
	limit = 100
	if v := r.URL.Query().Get("after"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			after = n
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 500 {
		limit = 500
	}
	return after, limit
}

func (s *Server) handleActionSummary(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, []store.ActionCount{})
		return
	}
	summary, err := s.store.ActionSummary(r.Context(), s.bus.RunID())
	if err != nil {
		log.Error().Err(err).Msg("action summary")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to summarize actions"})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleWebSocket admits, upgrades and attaches a client. With last_seq the
// retained events after it are queued before the client sees live ones,
// preceded by a gap frame when some of them have already been evicted.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if err := s.gate.Admit(r); err != nil {
		log.Debug().Str("remote", clientIP(r)).Msg("websocket rejected")
		writeJSON(w, http.StatusUnauthorized, actions.Failure(MsgUnauthorized))
		return
	}

	var (
		lastSeq int64
		replay  bool
	)
	if v := r.URL.Query().Get("last_seq"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, actions.Failure(MsgInvalidRequest))
			return
		}
		lastSeq, replay = n, true
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	var client *Client
	if replay {
		s.bus.Join(lastSeq, func(backlog []events.Event) {
			client = newClient(s.hub, conn, len(backlog)+1)
			if from, to, ok := replayGap(lastSeq, backlog); ok {
				data, _ := json.Marshal(GapMessage{Type: TypeGap, RunID: s.bus.RunID(), From: from, To: to})
				client.enqueue(data)
				log.Debug().Int64("from", from).Int64("to", to).Msg("replay gap")
			}
			for _, ev := range backlog {
				data, err := encodeEvent(ev)
				if err != nil {
					continue
				}
				client.enqueue(data)
			}
			s.hub.Register(client)
		})
	} else {
		client = newClient(s.hub, conn, 0)
		s.hub.Register(client)
	}

	go client.WritePump()
	go client.ReadPump(s.handler, s.actionLimiter)
}

// Shutdown disconnects all websocket clients and stops background work
func (s *Server) Shutdown() {
	s.hub.CloseAll()
	s.actionLimiter.Stop()
	s.loginLimiter.Stop()
}
