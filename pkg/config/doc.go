// Package config parses environment variables into typed structs.
//
// It loads .env files with github.com/joho/godotenv (variables already set in
// the process win) and parses with github.com/caarlos0/env/v11 struct tags:
//
//	type Config struct {
//	    Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	cfg, err := config.Load[Config](config.WithEnvFiles(".env", ".env.local"))
//
// Each package owns its Config struct; cmd/ composes them.
package config
