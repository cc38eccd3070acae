package config

import "time"

// DefaultSSLMode is what the connection string falls back to when the
// config leaves ssl_mode unset.
const DefaultSSLMode = "prefer"

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = 10
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = 2
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultSSLMode
	}

	if c.Pricing.Timeout == 0 {
		c.Pricing.Timeout = 5 * time.Second
	}
	if c.Pricing.CacheTTL == 0 {
		c.Pricing.CacheTTL = 60 * time.Second
	}
	if c.Pricing.RatePerSec == 0 {
		c.Pricing.RatePerSec = 5
	}
	if c.Pricing.Burst == 0 {
		c.Pricing.Burst = 10
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}
