// Package logging builds the zerolog logger shared by the job and the CLI.
//
// Jobs write on two channels: trace for progress and error for failures. Both
// map directly onto zerolog levels.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dawrench-labs/dawrench-go/internal/platform/env"
)

type Config struct {
	Level  string
	Format string
}

func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Level:  env.String("DAWRENCH_LOG_LEVEL", "trace"),
		Format: env.String("DAWRENCH_LOG_FORMAT", "json"),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.Level))); err != nil {
		return fmt.Errorf("invalid log level %q", c.Level)
	}
	switch strings.ToLower(strings.TrimSpace(c.Format)) {
	case "", "json", "console":
		return nil
	default:
		return fmt.Errorf("unsupported log format %q", c.Format)
	}
}

// New returns a timestamped logger writing to w (stderr when nil).
func New(cfg Config, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || cfg.Level == "" {
		level = zerolog.TraceLevel
	}
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "console") {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
