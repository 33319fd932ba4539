package instance

import (
	"os"

	"github.com/angelmondragon/mise-backend/pkg/env"
)

// ID names the running API process in logs: DYNO on Heroku-style hosts,
// otherwise the hostname, otherwise "local".
func ID() string {
	if id := env.Get("DYNO", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
