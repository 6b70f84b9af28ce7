package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type options struct {
	files  []string
	prefix string
}

// Option configures Load.
type Option func(*options)

// WithEnvFiles sets the env files to read before parsing. Missing files are
// skipped. Defaults to ".env".
func WithEnvFiles(files ...string) Option {
	return func(o *options) { o.files = files }
}

// WithPrefix prepends prefix to every env tag, e.g. "TWOFACTOR_".
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// Load reads env files and parses the environment into a new T.
func Load[T any](opts ...Option) (T, error) {
	o := options{files: []string{".env"}}
	for _, opt := range opts {
		opt(&o)
	}

	var cfg T
	for _, f := range o.files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, errors.Join(ErrLoadingEnvFile, fmt.Errorf("%s: %w", f, err))
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: o.prefix}); err != nil {
		return cfg, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// MustLoad is like Load but panics on error. Use it in main where a missing
// setting should stop startup.
func MustLoad[T any](opts ...Option) T {
	cfg, err := Load[T](opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
	return cfg
}
