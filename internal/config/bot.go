package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// BotConfig drives cmd/stockbot
type BotConfig struct {
	ServerURL string        `env:"STOCKGAME_URL" envDefault:"http://localhost:8080"`
	Email     string        `env:"BOT_EMAIL" envDefault:"bot@stockgame.local"`
	Password  string        `env:"BOT_PASSWORD" envDefault:"bot"`
	Interval  time.Duration `env:"BOT_INTERVAL" envDefault:"2s"`
	Stocks    []string      `env:"BOT_STOCKS" envSeparator:"," envDefault:"AAPL,TSLA,MSFT,AMZN"`
	MaxAmount int           `env:"BOT_MAX_AMOUNT" envDefault:"50"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
