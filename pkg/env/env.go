package env

import (
	"os"
	"strings"
)

// Prefix namespaces the service's environment variables, matching the
// envconfig prefix used by pkg/config.
const Prefix = "PETALPOST_"

// Get returns the prefixed form of the variable if set, then the bare
// form, then the fallback. The prefixed form wins so a shared host's
// generic LOG_FORMAT cannot override a service-specific setting.
func Get(key, fallback string) string {
	key = strings.TrimSpace(key)
	if val := os.Getenv(Prefix + key); val != "" {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
