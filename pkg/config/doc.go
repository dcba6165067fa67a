// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv (optional .env files) and
// github.com/caarlos0/env/v11 (struct tag parsing):
//
//   - Load parses a struct once per type and caches the copy for the life of
//     the process. Most components call it at bootstrap.
//   - Parse skips the cache and accepts a key prefix or explicit env files,
//     which the CLI uses when flags point at a different profile.
//   - MustLoad panics on failure for configuration the process cannot run without.
//
// Example:
//
//	type HubConfig struct {
//	    Addr      string `env:"HUB_ADDR" envDefault:":5000"`
//	    JWTSecret string `env:"HUB_JWT_SECRET,required"`
//	}
//
//	var cfg HubConfig
//	config.MustLoad(&cfg)
package config
