// Package config holds the server's runtime configuration.
package config

import (
	"fmt"

	"github.com/oakmere/nhsmcp/internal/nhs"
	"github.com/oakmere/nhsmcp/internal/tools"
	appconfig "github.com/oakmere/nhsmcp/pkg/config"
)

// Config is the full server configuration.
type Config struct {
	// Profile selects the tool set: "organisations" or "full".
	Profile string `yaml:"profile" env:"NHSMCP_PROFILE"`

	Server  ServerConfig  `yaml:"server"`
	NHS     nhs.Config    `yaml:"nhs"`
	HTTP    HTTPConfig    `yaml:"http"`
	Audit   AuditConfig   `yaml:"audit"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig identifies the MCP server to clients.
type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// HTTPConfig configures the optional HTTP transport.
type HTTPConfig struct {
	Addr      string `yaml:"addr" env:"NHSMCP_HTTP_ADDR"`
	AuthToken string `yaml:"auth_token" env:"NHSMCP_HTTP_AUTH_TOKEN"`
	JWTSecret string `yaml:"jwt_secret" env:"NHSMCP_HTTP_JWT_SECRET"`
}

// AuditConfig configures the sqlite tool-call audit log.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled" env:"NHSMCP_AUDIT_ENABLED"`
	DSN     string `yaml:"dsn" env:"NHSMCP_AUDIT_DSN"`
}

// MetricsConfig configures the Prometheus endpoint (HTTP transport only).
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" env:"NHSMCP_METRICS_ENABLED"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Profile: tools.ProfileFull,
		Server: ServerConfig{
			Name:    "nhs-search-mcp-server",
			Version: "1.0.0",
		},
		NHS:   nhs.DefaultConfig(),
		Audit: AuditConfig{DSN: "nhsmcp-audit.db"},
	}
}

// Load reads configuration from path. An empty path loads defaults plus
// environment overrides, matching the zero-setup stdio deployment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		appconfig.ApplyEnv(&cfg)
		return cfg, cfg.validate()
	}
	if err := appconfig.Load(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Profile {
	case tools.ProfileOrganisations, tools.ProfileFull:
	default:
		return fmt.Errorf("config: unknown profile %q", c.Profile)
	}
	if c.NHS.Timeout < 0 {
		return fmt.Errorf("config: nhs.timeout must not be negative, got %s", c.NHS.Timeout)
	}
	return nil
}
