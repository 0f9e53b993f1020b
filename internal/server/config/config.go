// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/skillhub/internal/logging"
)

// Config holds runtime settings for the skillhub server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the public HTTP API.
//   - EndpointAddrGRPC: bind address for the gRPC session endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey: HMAC secret for signing access tokens (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - SweepInterval: how often expired refresh tokens are purged; 0 disables the sweeper.
//   - LogLevel: one of debug, info, warn, error.
//   - AllowedOrigins: origins the HTTP API answers CORS requests for; "*" allows any.
//   - Bootstrap: optional primary account created at startup (JSON config only).
type Config struct {
	EndpointAddrHTTP             string
	EndpointAddrGRPC             string
	DatabaseDSN                  string
	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	SweepInterval                time.Duration
	LogLevel                     string
	AllowedOrigins               []string
	Bootstrap                    *BootstrapPrimary
}

// BootstrapPrimary describes a primary account seeded on startup when it does
// not exist yet.
type BootstrapPrimary struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RefreshTokenValidityDuration = 7 * 24 * time.Hour
	c.SweepInterval = time.Hour
	c.LogLevel = "info"
	c.AllowedOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("secret key must not be empty")
	}
	if c.AccessTokenValidityDuration <= 0 {
		return fmt.Errorf("access token validity must be positive, got %s", c.AccessTokenValidityDuration)
	}
	if c.RefreshTokenValidityDuration <= 0 {
		return fmt.Errorf("refresh token validity must be positive, got %s", c.RefreshTokenValidityDuration)
	}
	if c.RefreshTokenValidityDuration < c.AccessTokenValidityDuration {
		return fmt.Errorf("refresh token validity (%s) must not be shorter than access token validity (%s)",
			c.RefreshTokenValidityDuration, c.AccessTokenValidityDuration)
	}
	if c.SweepInterval < 0 {
		return fmt.Errorf("sweep interval must not be negative")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	for _, o := range c.AllowedOrigins {
		if strings.TrimSpace(o) == "" {
			return fmt.Errorf("allowed origins must not contain empty entries")
		}
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}

// splitOrigins parses a comma-separated origin list, dropping blanks.
func splitOrigins(v string) []string {
	var out []string
	for _, o := range strings.Split(v, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
