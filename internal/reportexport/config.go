package reportexport

import (
	"fmt"
	"strings"

	"github.com/dawrench-labs/dawrench-go/internal/platform/env"
)

// Config controls where finalized job reports are written.
type Config struct {
	Format string
	// Path is a file to append to, "-" for stdout, or empty to disable.
	Path string
}

func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Format: env.String("DAWRENCH_REPORT_FORMAT", "ndjson"),
		Path:   env.String("DAWRENCH_REPORT_PATH", ""),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	format := strings.ToLower(strings.TrimSpace(c.Format))
	if format == "" {
		format = "ndjson"
	}
	if format != "ndjson" {
		return fmt.Errorf("unsupported report format: %s", format)
	}
	return nil
}

func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Path) != ""
}
