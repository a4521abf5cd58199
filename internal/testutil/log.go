package testutil

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevelEnv overrides the level tests log at, e.g. LOG_LEVEL=debug
const LogLevelEnv = "LOG_LEVEL"

// QuietLogs raises the global log level to errors for the duration of a
// test, unless LOG_LEVEL asks for something else.
func QuietLogs(t testing.TB) {
	t.Helper()
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(LevelFromEnv(zerolog.ErrorLevel))
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(prev)
	})
}

// InitTestLogger points the global logger at w in console format with
// caller information, and returns a func restoring the previous logger.
func InitTestLogger(w io.Writer) (restore func()) {
	prevLogger := log.Logger
	prevLevel := zerolog.GlobalLevel()

	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: true}
	log.Logger = zerolog.New(out).With().Timestamp().Caller().Logger()
	zerolog.SetGlobalLevel(LevelFromEnv(zerolog.DebugLevel))

	return func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	}
}

// LevelFromEnv returns the level named by LOG_LEVEL, or def when it is
// unset or not a level name
func LevelFromEnv(def zerolog.Level) zerolog.Level {
	level, err := zerolog.ParseLevel(os.Getenv(LogLevelEnv))
	if err != nil || level == zerolog.NoLevel {
		return def
	}
	return level
}
