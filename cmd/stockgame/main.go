package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"stockgame/internal/actions"
	"stockgame/internal/api"
	"stockgame/internal/config"
	"stockgame/internal/events"
	"stockgame/internal/game"
	"stockgame/internal/logging"
	"stockgame/internal/news"
	"stockgame/internal/store"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Init(cfg.Log)

	// Initialize SQLite store
	st, err := store.New(cfg.Server.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Server.DBPath).Msg("Failed to initialize database")
	}

	clock := clockwork.NewRealClock()
	runID := events.NewRunID()
	bus := events.NewBus(runID, clock, cfg.Server.ReplayBuffer)

	var opts []actions.Option
	opts = append(opts, actions.WithRecorder(st, runID), actions.WithClock(clock))
	if cfg.Server.OneTimePerks {
		opts = append(opts, actions.WithOneTimePerks())
	}
	catalog := news.Default()
	handler := actions.NewHandler(actions.NewDice(time.Now().UnixNano()), catalog, opts...)

	scheduler := game.NewScheduler(clock, bus, catalog, game.DefaultSchedulerConfig())

	// Sinks run in registration order: websocket hub, journal, redis
	server := api.NewServer(bus, scheduler, handler, st)
	server.SetCORSOrigins(cfg.Server.CORSOrigins)
	server.SetRateLimits(cfg.Server.ActionRateLimit, cfg.Server.LoginRateLimit)
	server.SetTrustProxy(cfg.Server.TrustProxy)
	if len(cfg.Server.CORSOrigins) > 0 {
		log.Info().Strs("origins", cfg.Server.CORSOrigins).Msg("CORS restricted")
	}
	bus.AddSink(st)

	var rdb *redis.Client
	if cfg.Server.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Server.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := rdb.Ping(ctx).Err()
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Server.RedisAddr).Msg("redis unavailable, mirror disabled")
			rdb.Close()
			rdb = nil
		} else {
			bus.AddSink(events.NewRedisMirror(rdb, cfg.Server.RedisChannel))
			log.Info().Str("channel", cfg.Server.RedisChannel).Msg("mirroring events to redis")
		}
	}

	scheduler.OnEnd(func(snap game.Snapshot) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.FinishRun(ctx, runID, clock.Now(), snap.Round); err != nil {
			log.Error().Err(err).Str("run", runID).Msg("record run end")
		}
	})

	snap := scheduler.Start()
	if err := st.CreateRun(context.Background(), store.Run{
		ID:        runID,
		StartedAt: snap.StartedAt,
		EndsAt:    snap.EndsAt,
		Round:     snap.Round,
	}); err != nil {
		log.Error().Err(err).Str("run", runID).Msg("record run start")
	}
	log.Info().Str("run", runID).Time("ends_at", snap.EndsAt).Msg("run started")

	addr := ":" + strconv.Itoa(cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server is Listening on Port %d...", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	scheduler.Stop()
	bus.Close()
	log.Info().Msg("Scheduler stopped")

	// Disconnect websocket clients and stop limiter goroutines
	server.Shutdown()

	// Graceful HTTP shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	log.Info().Msg("HTTP server stopped")

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close error")
		}
	}
	if err := st.Close(); err != nil {
		log.Error().Err(err).Msg("Database close error")
	}

	log.Info().Msg("Server shutdown complete")
}
