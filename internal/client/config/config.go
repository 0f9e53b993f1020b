// Package config loads runtime configuration for the skillhub CLI.
//
// Values come from built-in defaults overlaid by an optional JSON file
// selected with -c/-config (or SKILLHUB_CONFIG). Command-line flags are
// bound by the cobra root command on top of the result.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the skillhub CLI.
type Config struct {
	ServerEndpointAddr string
	SessionDBPath      string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.SessionDBPath = defaultSessionDBPath()
	c.RequestTimeout = 10 * time.Second
}

func defaultSessionDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "skillhub-session.db"
	}
	return filepath.Join(dir, "skillhub", "session.db")
}

// LoadConfig constructs a Config from defaults and the optional JSON file.
func LoadConfig(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	return cfg
}
