// Package database provides connection pool management for the
// Postgres event and raw-record stores.
package database
