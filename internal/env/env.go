package env

// Set at build time through -ldflags "-X github.com/ostafen/partedit/internal/env.Version=...".
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)
