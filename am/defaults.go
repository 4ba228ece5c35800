package am

import (
	"time"

	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Inputs have no default; an empty path must come from a file, env or flag
	v.SetDefault("input.fasta", "")
	v.SetDefault("input.taxonomy", "")
	v.SetDefault("input.terms", "")

	v.SetDefault("integrate.unknown_category", "reject")

	v.SetDefault("output.format", "json")
	v.SetDefault("output.path", "-")

	v.SetDefault("database.path", "protix.db")

	v.SetDefault("log.json", false)

	v.SetDefault("watch.debounce_ms", 500)
}

// GetDatabasePath returns the configured database path
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return "protix.db"
	}
	return c.Database.Path
}

// GetWatchDebounce returns the watch debounce period
func (c *Config) GetWatchDebounce() time.Duration {
	return time.Duration(c.Watch.DebounceMs) * time.Millisecond
}
