package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// configCache stores parsed configuration copies keyed by type name.
type configCache struct {
	mu     sync.RWMutex
	values map[string]any
}

var (
	globalCache = &configCache{values: make(map[string]any)}

	defaultEnvLoaded sync.Once
)

// Option adjusts a single Parse call.
type Option func(*parseOptions)

type parseOptions struct {
	prefix   string
	envFiles []string
}

// WithPrefix prepends prefix to every env key of the target struct,
// so `env:"ADDR"` with prefix "HUB_" reads HUB_ADDR.
func WithPrefix(prefix string) Option {
	return func(o *parseOptions) { o.prefix = prefix }
}

// WithEnvFiles loads the given dotenv files before parsing. Variables that are
// already set in the process environment win over file values.
func WithEnvFiles(files ...string) Option {
	return func(o *parseOptions) { o.envFiles = append(o.envFiles, files...) }
}

// Load parses environment variables into v and caches the result per type.
// The default .env file is loaded once if present. Later calls for the same
// type return the cached copy, even if the environment changed.
//
//	type ClientConfig struct {
//		ServerURL string        `env:"NOTIFY_SERVER_URL" envDefault:"http://localhost:5000"`
//		Delay     time.Duration `env:"NOTIFY_RECONNECT_DELAY" envDefault:"3s"`
//	}
//
//	var cfg ClientConfig
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	loadDefaultEnv()

	typeName := getTypeName[T]()

	globalCache.mu.RLock()
	cached, ok := globalCache.values[typeName]
	globalCache.mu.RUnlock()
	if ok {
		*v = cached.(T)
		return nil
	}

	globalCache.mu.Lock()
	defer globalCache.mu.Unlock()

	// Another goroutine may have parsed while we waited for the write lock.
	if cached, ok := globalCache.values[typeName]; ok {
		*v = cached.(T)
		return nil
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	globalCache.values[typeName] = parsed
	*v = parsed
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}

// Parse populates v from the environment without touching the cache.
// Use it when the same config type is read with different prefixes or files.
func Parse[T any](v *T, opts ...Option) error {
	if v == nil {
		return ErrNilPointer
	}
	var o parseOptions
	for _, opt := range opts {
		opt(&o)
	}

	if len(o.envFiles) > 0 {
		if err := godotenv.Load(o.envFiles...); err != nil {
			return errors.Join(ErrLoadingEnvFile, err)
		}
	} else {
		loadDefaultEnv()
	}

	if err := env.ParseWithOptions(v, env.Options{Prefix: o.prefix}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// Reset drops every cached configuration. Intended for tests.
func Reset() {
	globalCache.mu.Lock()
	clear(globalCache.values)
	globalCache.mu.Unlock()
}

func loadDefaultEnv() {
	defaultEnvLoaded.Do(func() {
		// The .env file is optional.
		_ = godotenv.Load()
	})
}

func getTypeName[T any]() string {
	t := reflect.TypeFor[T]()
	return t.PkgPath() + "." + t.String()
}
