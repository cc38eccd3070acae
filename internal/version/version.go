// Package version carries build metadata stamped via ldflags.
package version

// Stamped at build time, e.g.:
//
//	go build -ldflags "-X github.com/tapelabs/disclosure-tape/internal/version.Version=0.3.0 \
//	  -X github.com/tapelabs/disclosure-tape/internal/version.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/tapelabs/disclosure-tape/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String renders the stamped metadata as a single line.
func String() string {
	return Version + " (" + Commit + ") built " + BuildTime
}
