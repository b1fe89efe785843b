package testsupport

import (
	"path/filepath"
	"testing"

	"songscribe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.RawDir = filepath.Join(base, "data", "raw-lyrics")
	cfg.Paths.TranscribedDir = filepath.Join(base, "data", "transcribed-lyrics")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Worker.Dir = base
	cfg.Worker.ScriptPath = "scripts/worker.ts"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithAPIToken sets the API bearer token on the test config.
func WithAPIToken(token string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Paths.APIToken = token
	}
}

// WithWorkerRuntime pins the worker runtime on the test config.
func WithWorkerRuntime(path string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Worker.Runtime = path
	}
}
