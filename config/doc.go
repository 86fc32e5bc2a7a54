// Package config loads dagpipe configuration.
//
// It uses Viper to read a config.yml and godotenv to load .env files found in
// standard locations, then applies prefixed environment variables on top. Config carries
// logging, OpenTelemetry export and engine settings.
//
// # Usage
//
//	var cfg config.Config
//	if err := config.LoadConfig("etl", &cfg); err != nil { ... }
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil { ... }
//
// Environment variables prefixed with the service name override file values
// using underscore-separated paths (e.g., ETL_ENGINE_STEP_LOGGING=true).
package config
