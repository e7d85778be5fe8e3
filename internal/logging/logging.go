package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config interface {
	GetEnv() string
	GetLogLevel() string
	GetAppName() string
}

// New builds the root logger. DEV gets a human readable console writer,
// every other environment writes JSON lines to w.
func New(c Config, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	if strings.EqualFold(c.GetEnv(), "DEV") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	level, err := zerolog.ParseLevel(strings.ToLower(c.GetLogLevel()))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("app", c.GetAppName()).
		Logger()
}

// Setup builds the root logger and installs it as the global zerolog logger.
func Setup(c Config, w io.Writer) zerolog.Logger {
	logger := New(c, w)
	log.Logger = logger
	zerolog.DefaultContextLogger = &log.Logger
	return logger
}
