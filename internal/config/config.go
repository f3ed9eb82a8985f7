package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel  string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string  `yaml:"log-format" env:"LOG_FORMAT" env-default:"json"`
	HTTP      HTTP    `yaml:"http"`
	Game      Game    `yaml:"game"`
	Metrics   Metrics `yaml:"metrics"`
}

type HTTP struct {
	Port              string        `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	HeartbeatInterval time.Duration `yaml:"heartbeat-interval" env:"HTTP_HEARTBEAT_INTERVAL" env-default:"15s"`
	ShutdownTimeout   time.Duration `yaml:"shutdown-timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Game holds gameplay settings. ShowErrors renders rejected moves as an alert
// instead of ignoring them. SessionTTL and PruneInterval default in Default,
// not via env-default, so an explicit 0 survives loading; either one at 0
// turns pruning off.
type Game struct {
	ShowErrors    bool          `yaml:"show-errors" env:"GAME_SHOW_ERRORS" env-default:"false"`
	SessionTTL    time.Duration `yaml:"session-ttl" env:"GAME_SESSION_TTL"`
	PruneInterval time.Duration `yaml:"prune-interval" env:"GAME_PRUNE_INTERVAL"`
}

type Metrics struct {
	// Enabled defaults to true in Default. An env-default would overwrite an
	// explicit false from the file.
	Enabled bool `yaml:"enabled" env:"METRICS_ENABLED"`
}

// Default returns the values Load starts from for fields whose zero value is
// meaningful.
func Default() *Config {
	return &Config{
		Game: Game{
			SessionTTL:    2 * time.Hour,
			PruneInterval: 5 * time.Minute,
		},
		Metrics: Metrics{Enabled: true},
	}
}

// Load reads the config file at path, with environment overrides. An empty
// path reads the environment only.
func Load(path string) (*Config, error) {
	conf := Default()
	if path == "" {
		if err := cleanenv.ReadEnv(conf); err != nil {
			return nil, fmt.Errorf("unable to read config from env: %w", err)
		}
		return conf, nil
	}
	if err := cleanenv.ReadConfig(path, conf); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}
	return conf, nil
}

// MustLoad - load configuration or panic.
func MustLoad(path string) *Config {
	conf, err := Load(path)
	if err != nil {
		panic(err)
	}
	return conf
}

// Addr is the listen address for the HTTP server.
func (that *HTTP) Addr() string {
	return ":" + that.Port
}

// PruneEnabled reports whether idle sessions should be removed at all.
func (that *Game) PruneEnabled() bool {
	return that.SessionTTL > 0 && that.PruneInterval > 0
}
