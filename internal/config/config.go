package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultPort                = 3000
	DefaultAllowedOrigins      = "http://localhost:5173"
	DefaultLogLevel            = "info"
	DefaultMatchmakingInterval = time.Second
	DefaultClockTime           = 600 * time.Second
)

// ErrWildcardOrigin is returned for ALLOWED_ORIGINS containing "*". The API
// accepts credentials, which browsers refuse to pair with a wildcard origin.
var ErrWildcardOrigin = errors.New("wildcard origin not allowed")

type Config struct {
	Port                int
	AllowedOrigins      string
	LogLevel            string
	PrettyLogs          bool
	MatchmakingInterval time.Duration
	ClockTime           time.Duration
}

func Default() Config {
	return Config{
		Port:                DefaultPort,
		AllowedOrigins:      DefaultAllowedOrigins,
		LogLevel:            DefaultLogLevel,
		PrettyLogs:          true,
		MatchmakingInterval: DefaultMatchmakingInterval,
		ClockTime:           DefaultClockTime,
	}
}

// Load reads .env files (if present) into the process environment and then
// builds a Config from it. Missing variables keep their defaults.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}
	return FromEnv(os.Getenv)
}

func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return cfg, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = port
	}
	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = v
		if cfg.AnyOrigin() {
			return cfg, fmt.Errorf("invalid ALLOWED_ORIGINS %q: %w", v, ErrWildcardOrigin)
		}
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := getenv("LOG_PRETTY"); v != "" {
		pretty, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid LOG_PRETTY %q: %w", v, err)
		}
		cfg.PrettyLogs = pretty
	}
	if v := getenv("MATCHMAKING_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("invalid MATCHMAKING_INTERVAL %q", v)
		}
		cfg.MatchmakingInterval = d
	}
	if v := getenv("CLOCK_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return cfg, fmt.Errorf("invalid CLOCK_SECONDS %q", v)
		}
		cfg.ClockTime = time.Duration(secs) * time.Second
	}
	return cfg, nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// AnyOrigin reports whether the origin list contains the "*" wildcard.
func (c Config) AnyOrigin() bool {
	for _, o := range c.Origins() {
		if o == "*" {
			return true
		}
	}
	return false
}

// ConfigureLogger sets the global zerolog level and writer.
func ConfigureLogger(c Config) error {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	zerolog.SetGlobalLevel(level)
	if c.PrettyLogs {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	return nil
}
