package sandboxfs

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/sandboxfs/pkg/sandboxfs/config"
)

// libField tags every line so sandbox output can be told apart from the
// host application's own logging.
const libField = "sandboxfs"

// NewLogger returns a plain-text console logger at level, writing to w.
func NewLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	return zerolog.New(console).Level(level).With().Timestamp().Str("lib", libField).Logger()
}

// NewLoggerFromConfig builds the logger described by the [logging] section.
// An empty level means warn.
func NewLoggerFromConfig(w io.Writer, cfg config.LoggingConfig) (zerolog.Logger, error) {
	if cfg.Level == "" {
		return NewLogger(w, zerolog.WarnLevel), nil
	}
	level, err := LogLevelFromString(cfg.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	return NewLogger(w, level), nil
}

// NewTestLogger maps a -v count onto a level: 0 warn, 1 info, 2 debug,
// anything higher trace.
func NewTestLogger(w io.Writer, verbose int) zerolog.Logger {
	levels := []zerolog.Level{zerolog.WarnLevel, zerolog.InfoLevel, zerolog.DebugLevel}
	if verbose < 0 || verbose >= len(levels) {
		return NewLogger(w, zerolog.TraceLevel)
	}
	return NewLogger(w, levels[verbose])
}

// LogLevelFromString parses a level name case-insensitively.
func LogLevelFromString(levelStr string) (zerolog.Level, error) {
	return zerolog.ParseLevel(strings.ToLower(levelStr))
}

// DefaultLogger warns to stderr.
func DefaultLogger() zerolog.Logger {
	return NewLogger(os.Stderr, zerolog.WarnLevel)
}
