package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	loaded = struct {
		mu     sync.RWMutex
		values map[string]any
	}{values: make(map[string]any)}

	dotenvOnce sync.Once
)

// Load parses environment variables into cfg based on `env` struct tags.
// A .env file is loaded once per process if present. Each configuration
// type is parsed exactly once; later calls for the same type receive the
// cached value, so every package can load its own Config independently
// without re-reading the environment.
//
// Example:
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](cfg *T) error {
	if cfg == nil {
		return ErrNilPointer
	}

	dotenvOnce.Do(func() {
		// The .env file is optional outside local development.
		_ = godotenv.Load()
	})

	key := typeName[T]()

	loaded.mu.RLock()
	cached, ok := loaded.values[key]
	loaded.mu.RUnlock()
	if ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	loaded.mu.Lock()
	// First writer wins so concurrent loaders observe one value.
	if cached, ok := loaded.values[key]; ok {
		*cfg = cached.(T)
	} else {
		loaded.values[key] = *cfg
	}
	loaded.mu.Unlock()

	return nil
}

// MustLoad works like Load but panics on failure. Intended for
// configuration without which the process cannot start.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load %s: %v", typeName[T](), err))
	}
}

func typeName[T any]() string {
	var zero T
	if t := reflect.TypeOf(zero); t != nil {
		return t.String()
	}
	return fmt.Sprintf("%T", *new(T))
}
