package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.Equal(t, 2, c.GamesPerSession)
	assert.Equal(t, 60*time.Second, c.LobbyTimeout)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("TURN_TIMER_SEC", "5")
	t.Setenv("BOT_DELAY_MS", "10")
	t.Setenv("GAMES_PER_SESSION", "3")
	t.Setenv("MIN_PLAYERS", "2")
	t.Setenv("MAX_PLAYERS", "4")
	t.Setenv("HAND_SIZE", "7")
	t.Setenv("ROTATE_SEATS", "false")
	t.Setenv("FORCE_OPENING_DOUBLE", "true")
	t.Setenv("FIRST_PLAYER_RULE", "lowest_double")
	t.Setenv("LOG_LEVEL", "debug")

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9999", c.HTTPAddr)
	assert.Equal(t, 5*time.Second, c.TurnTimer)
	assert.Equal(t, 10*time.Millisecond, c.BotDelay)
	assert.Equal(t, 3, c.GamesPerSession)
	assert.Equal(t, 7, c.HandSize)
	assert.False(t, c.RotateSeats)
	assert.True(t, c.ForceOpeningDouble)
	assert.Equal(t, "lowest_double", c.FirstPlayerRule)
	assert.Equal(t, log.DebugLevel, c.LogLevel)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"TURN_TIMER_SEC":    "soon",
		"ROTATE_SEATS":      "maybe",
		"GAMES_PER_SESSION": "0",
		"MAX_PLAYERS":       "9",
		"HAND_SIZE":         "8",
		"FIRST_PLAYER_RULE": "random",
		"LOG_LEVEL":         "loud",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GAMES_PER_SESSION=4\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		_ = os.Unsetenv("GAMES_PER_SESSION")
	})

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 4, c.GamesPerSession)
}

func TestLoadWithoutDotEnv(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err = Load()
	assert.NoError(t, err)
}
