package testutil

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
)

func TestLevelFromEnv(t *testing.T) {
	t.Setenv(LogLevelEnv, "")
	assert.Equal(t, zerolog.WarnLevel, LevelFromEnv(zerolog.WarnLevel))

	t.Setenv(LogLevelEnv, "debug")
	assert.Equal(t, zerolog.DebugLevel, LevelFromEnv(zerolog.WarnLevel))

	t.Setenv(LogLevelEnv, "nonsense")
	assert.Equal(t, zerolog.WarnLevel, LevelFromEnv(zerolog.WarnLevel))
}

func TestQuietLogs(t *testing.T) {
	t.Setenv(LogLevelEnv, "")
	before := zerolog.GlobalLevel()

	t.Run("inner", func(t *testing.T) {
		QuietLogs(t)
		assert.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())
	})

	assert.Equal(t, before, zerolog.GlobalLevel())
}

func TestInitTestLogger(t *testing.T) {
	t.Setenv(LogLevelEnv, "")
	var buf bytes.Buffer

	restore := InitTestLogger(&buf)
	log.Debug().Int("movies", 3).Msg("loaded")
	restore()

	out := buf.String()
	assert.Contains(t, out, "DBG")
	assert.Contains(t, out, "loaded")
	assert.Contains(t, out, "movies=3")
	assert.NotContains(t, out, `"level"`)

	log.Debug().Msg("after restore")
	assert.NotContains(t, buf.String(), "after restore")
}
