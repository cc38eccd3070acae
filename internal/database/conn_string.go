package database

import (
	"fmt"
	"net/url"

	"github.com/tapelabs/disclosure-tape/internal/config"
)

// BuildConnString renders the pgx DSN from config. The password is
// query-escaped so credentials with reserved characters survive the
// URL form.
func BuildConnString(cfg config.DBConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		// LoadWithDefaults fills this in; a hand-built DBConfig
		// may not.
		sslMode = config.DefaultSSLMode
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		cfg.Name,
		sslMode,
	)
}
