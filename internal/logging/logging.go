package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"stockgame/internal/config"
)

var (
	writerMu sync.RWMutex
	writer   io.Writer = os.Stdout
)

// Init configures the global zerolog logger.
func Init(cfg config.LogConfig) {
	level := ParseLevel(cfg.Level)

	var output io.Writer = os.Stdout
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger

	writerMu.Lock()
	writer = output
	writerMu.Unlock()
}

// ParseLevel falls back to info for empty or unknown values.
func ParseLevel(v string) zerolog.Level {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return zerolog.InfoLevel
	}
	parsed, err := zerolog.ParseLevel(v)
	if err != nil || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}

// Writer returns the output the global logger writes to.
func Writer() io.Writer {
	writerMu.RLock()
	defer writerMu.RUnlock()
	return writer
}

// Slog returns a JSON slog logger sharing the zerolog output, for libraries
// that take a *slog.Logger.
func Slog() *slog.Logger {
	return slog.New(slog.NewJSONHandler(Writer(), &slog.HandlerOptions{}))
}
