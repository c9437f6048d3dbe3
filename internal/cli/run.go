package cli

import (
	"log/slog"

	"github.com/blimu-dev/typegen/pkg/logging"
)

// LogParams are the global logging flags. Empty values fall back to the
// configuration file, then the TYPEGEN_LOG_* environment, then the defaults.
type LogParams struct {
	Level  string
	Format string
}

// newLogger builds the CLI logger. Flags win over the environment, which wins
// over the configuration file.
func newLogger(p LogParams, fromFile *logging.Config) (*slog.Logger, error) {
	var cfg logging.Config
	cfg.Merge(fromFile)
	if err := cfg.Finalize(logging.DefaultEnv); err != nil {
		return nil, err
	}
	cfg.Merge(&logging.Config{Level: logging.Level(p.Level), Format: logging.Format(p.Format)})
	if err := cfg.Finalize(nil); err != nil {
		return nil, err
	}
	return logging.New(&cfg), nil
}
