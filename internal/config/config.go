// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds process-wide settings read from the environment.
type Config struct {
	HTTPAddr      string
	DatabaseURL   string // postgres://... or sqlite:path; empty disables persistence
	RedisAddr     string // empty disables the action log and snapshot cache
	RedisPassword string
	LogLevel      log.Level

	TurnTimer    time.Duration
	BotDelay     time.Duration
	BotLevel     string
	LobbyTimeout time.Duration

	GamesPerSession    int
	MinPlayers         int
	MaxPlayers         int
	HandSize           int // 0 = by player count
	RotateSeats        bool
	ForceOpeningDouble bool
	FirstPlayerRule    string // "highest_double" or "lowest_double"
}

// Default returns the settings used when no environment overrides are set.
func Default() Config {
	return Config{
		HTTPAddr:           ":8000",
		LogLevel:           log.InfoLevel,
		TurnTimer:          30 * time.Second,
		BotDelay:           1200 * time.Millisecond,
		BotLevel:           "greedy",
		LobbyTimeout:       60 * time.Second,
		GamesPerSession:    2,
		MinPlayers:         3,
		MaxPlayers:         5,
		RotateSeats:        true,
		ForceOpeningDouble: false,
		FirstPlayerRule:    "highest_double",
	}
}

// Load reads .env (if present) into the environment and then parses Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv parses Config from the current environment only.
func FromEnv() (Config, error) {
	c := Default()
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	c.HTTPAddr = getString("HTTP_ADDR", c.HTTPAddr)
	c.DatabaseURL = getString("DATABASE_URL", c.DatabaseURL)
	c.RedisAddr = getString("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getString("REDIS_PASSWORD", c.RedisPassword)
	c.BotLevel = getString("BOT_LEVEL", c.BotLevel)
	c.FirstPlayerRule = getString("FIRST_PLAYER_RULE", c.FirstPlayerRule)

	if lvl, ok := os.LookupEnv("LOG_LEVEL"); ok && lvl != "" {
		parsed, err := log.ParseLevel(lvl)
		add(err)
		if err == nil {
			c.LogLevel = parsed
		}
	}

	var err error
	var sec, ms int
	sec, err = getInt("TURN_TIMER_SEC", int(c.TurnTimer/time.Second))
	add(err)
	c.TurnTimer = time.Duration(sec) * time.Second
	ms, err = getInt("BOT_DELAY_MS", int(c.BotDelay/time.Millisecond))
	add(err)
	c.BotDelay = time.Duration(ms) * time.Millisecond
	sec, err = getInt("LOBBY_TIMEOUT_SEC", int(c.LobbyTimeout/time.Second))
	add(err)
	c.LobbyTimeout = time.Duration(sec) * time.Second

	c.GamesPerSession, err = getInt("GAMES_PER_SESSION", c.GamesPerSession)
	add(err)
	c.MinPlayers, err = getInt("MIN_PLAYERS", c.MinPlayers)
	add(err)
	c.MaxPlayers, err = getInt("MAX_PLAYERS", c.MaxPlayers)
	add(err)
	c.HandSize, err = getInt("HAND_SIZE", c.HandSize)
	add(err)
	c.RotateSeats, err = getBool("ROTATE_SEATS", c.RotateSeats)
	add(err)
	c.ForceOpeningDouble, err = getBool("FORCE_OPENING_DOUBLE", c.ForceOpeningDouble)
	add(err)

	add(c.Validate())
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return c, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch {
	case c.GamesPerSession < 1:
		return fmt.Errorf("GAMES_PER_SESSION must be at least 1, got %d", c.GamesPerSession)
	case c.MinPlayers < 2:
		return fmt.Errorf("MIN_PLAYERS must be at least 2, got %d", c.MinPlayers)
	case c.MaxPlayers < c.MinPlayers:
		return fmt.Errorf("MAX_PLAYERS (%d) is below MIN_PLAYERS (%d)", c.MaxPlayers, c.MinPlayers)
	case c.MaxPlayers > 6:
		return fmt.Errorf("MAX_PLAYERS must be at most 6, got %d", c.MaxPlayers)
	case c.HandSize < 0 || c.HandSize*c.MaxPlayers > 28:
		return fmt.Errorf("HAND_SIZE %d doesn't fit %d players in a 28-tile set", c.HandSize, c.MaxPlayers)
	case c.TurnTimer < 0 || c.BotDelay < 0 || c.LobbyTimeout < 0:
		return errors.New("durations must not be negative")
	}
	switch c.FirstPlayerRule {
	case "highest_double", "lowest_double":
	default:
		return fmt.Errorf("FIRST_PLAYER_RULE must be highest_double or lowest_double, got %q", c.FirstPlayerRule)
	}
	return nil
}

// ConfigureLogging applies the log level and formatter to the standard logrus logger.
func (c Config) ConfigureLogging() {
	log.SetLevel(c.LogLevel)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}

func getString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, def bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
