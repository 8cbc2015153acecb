package logging

import (
	"io"
	"os"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Config describes how the process logger is built.
type Config struct {
	ServiceName string
	Environment string
	Level       string
}

// New returns a logfmt logger on stderr filtered to cfg.Level.
func New(cfg Config) log.Logger {
	return NewWithWriter(os.Stderr, cfg)
}

func NewWithWriter(w io.Writer, cfg Config) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = level.NewFilter(logger, levelOption(cfg.Level))
	return log.With(logger,
		"ts", log.DefaultTimestampUTC,
		"service", cfg.ServiceName,
		"env", cfg.Environment,
	)
}

// Nop discards everything; handy in tests.
func Nop() log.Logger {
	return log.NewNopLogger()
}

func levelOption(lvl string) level.Option {
	switch strings.ToLower(lvl) {
	case "debug":
		return level.AllowDebug()
	case "warn":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}
