package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Config controls how the root logger writes.
type Config struct {
	Level    string // debug, info, warn, error
	Encoding string // console or json
}

// New builds the root zerolog logger. An unknown level falls back to info
// rather than failing startup.
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if strings.ToLower(cfg.Encoding) == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
