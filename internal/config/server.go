package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	Port   int    `env:"PORT" envDefault:"8080"`
	DBPath string `env:"GAME_DB" envDefault:"game.db"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	RedisAddr    string `env:"REDIS_ADDR"`
	RedisChannel string `env:"REDIS_CHANNEL" envDefault:"stockgame:events"`

	ReplayBuffer    int  `env:"REPLAY_BUFFER" envDefault:"256"`
	ActionRateLimit int  `env:"ACTION_RATE_LIMIT" envDefault:"120"`
	LoginRateLimit  int  `env:"LOGIN_RATE_LIMIT" envDefault:"30"`
	OneTimePerks    bool `env:"ONE_TIME_PERKS" envDefault:"false"`
	TrustProxy      bool `env:"TRUST_PROXY" envDefault:"false"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
