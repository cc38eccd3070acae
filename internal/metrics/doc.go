// Package metrics exposes Prometheus collectors for ingestion,
// maintenance, and API traffic. Collectors register on the default
// registry; the server serves them on /metrics.
package metrics
