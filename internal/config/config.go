package config

import "time"

// Config is the root configuration for the tape server and the
// maintenance CLI.
type Config struct {
	Server   ServerConfig  `yaml:"server"`
	Database DBConfig      `yaml:"database"`
	Pricing  PricingConfig `yaml:"pricing"`
	Logging  LoggingConfig `yaml:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DBConfig holds the Postgres connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// PricingConfig holds the quote provider settings. Pricing is
// optional; an empty base URL disables annotation entirely.
type PricingConfig struct {
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	Timeout    time.Duration `yaml:"timeout"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
	RatePerSec float64       `yaml:"rate_per_sec"`
	Burst      int           `yaml:"burst"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}
