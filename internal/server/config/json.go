package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/skillhub/internal/flagx"
	"github.com/dmitrijs2005/skillhub/internal/timex"
)

// JsonConfig is the on-disk shape of the server config file. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted.
// Absent keys leave the corresponding Config field untouched.
type JsonConfig struct {
	EndpointAddrHTTP             *string           `json:"endpoint_addr_http"`
	EndpointAddrGRPC             *string           `json:"endpoint_addr_grpc"`
	DatabaseDSN                  *string           `json:"database_dsn"`
	SecretKey                    *string           `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration   `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration   `json:"refresh_token_validity_duration"`
	SweepInterval                *timex.Duration   `json:"sweep_interval"`
	LogLevel                     *string           `json:"log_level"`
	AllowedOrigins               []string          `json:"allowed_origins"`
	Bootstrap                    *BootstrapPrimary `json:"bootstrap_primary"`
}

// parseJson overlays values from the JSON file named by -c/-config (or
// SKILLHUB_CONFIG) onto config. Nothing happens when no file is named.
// An unreadable file or invalid JSON panics: the server must not start
// with a half-applied configuration.
func parseJson(config *Config, args []string) {
	jsonConfigFile := flagx.ConfigFileFlag(args)

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)

	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.SweepInterval != nil {
		config.SweepInterval = c.SweepInterval.Duration
	}
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.Bootstrap != nil {
		config.Bootstrap = c.Bootstrap
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
