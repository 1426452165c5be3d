package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	dotenvOnce sync.Once
	cache      sync.Map // reflect.Type -> parsed config value
)

// Load parses environment variables into cfg. Each configuration type is
// parsed once per process and cached; later calls for the same type receive
// the cached value regardless of environment changes in between.
//
// A .env file in the working directory is loaded into the process environment
// on first use; a missing file is not an error.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilConfig
	}

	dotenvOnce.Do(func() {
		_ = godotenv.Load()
	})

	t := reflect.TypeFor[T]()
	if cached, ok := cache.Load(t); ok {
		*cfg = cached.(T)
		return nil
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", t, err)
	}

	cached, _ := cache.LoadOrStore(t, parsed)
	*cfg = cached.(T)
	return nil
}

// MustLoad is Load that panics on failure. Useful at application start-up
// where a missing required variable should stop the process.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
