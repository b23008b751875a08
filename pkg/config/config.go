package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/spectral-records/casekeeper/pkg/models"
)

// Config holds all configuration for the casekeeper engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"3480"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	Auth      AuthConfig      `yaml:"auth"`
	Database  DatabaseConfig  `yaml:"database"`
	Redaction RedactionConfig `yaml:"redaction"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	// EnableVerification controls whether JWT signatures are validated.
	// Set to false for local development without an auth server.
	EnableVerification bool `yaml:"enable_verification" env:"AUTH_ENABLE_VERIFICATION" env-default:"true"`

	// JWKSEndpointsStr is a comma-separated list of issuer=jwks_url pairs.
	JWKSEndpointsStr string `yaml:"jwks_endpoints" env:"JWKS_ENDPOINTS" env-default:""`

	// JWKSEndpoints is the parsed map from JWKSEndpointsStr (not from config file).
	JWKSEndpoints map[string]string `yaml:"-"`

	// PrivilegedRoles grant the case-management capability: holders see unredacted text.
	PrivilegedRoles []string `yaml:"privileged_roles" env:"AUTH_PRIVILEGED_ROLES" env-separator:"," env-default:"case_manager,admin"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"casekeeper"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"casekeeper"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// RedactionConfig controls what unprivileged viewers see.
type RedactionConfig struct {
	// GlobalKeywords are scrubbed from every case, on top of the per-case terms.
	GlobalKeywords     []string `yaml:"global_keywords" env:"REDACTION_GLOBAL_KEYWORDS" env-separator:","`
	RedactWitnessNames bool     `yaml:"redact_witness_names" env:"REDACTION_WITNESS_NAMES" env-default:"false"`
	Placeholder        string   `yaml:"placeholder" env:"REDACTION_PLACEHOLDER" env-default:"[REDACTED]"`
	WitnessFetchLimit  int      `yaml:"witness_fetch_limit" env:"REDACTION_WITNESS_FETCH_LIMIT" env-default:"100"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
	Path    string `yaml:"path" env:"METRICS_PATH" env-default:"/metrics"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	cfg.Auth.JWKSEndpoints = parseJWKSEndpoints(cfg.Auth.JWKSEndpointsStr)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.EnableVerification && len(c.Auth.JWKSEndpoints) == 0 {
		return fmt.Errorf("jwks_endpoints must be set when auth verification is enabled")
	}
	if c.Redaction.WitnessFetchLimit < 0 {
		return fmt.Errorf("redaction.witness_fetch_limit must not be negative")
	}
	return nil
}

// RedactionSettings converts the redaction section into the settings passed to the redaction services.
func (c *Config) RedactionSettings() models.RedactionSettings {
	return models.RedactionSettings{
		GlobalKeywords:     c.Redaction.GlobalKeywords,
		RedactWitnessNames: c.Redaction.RedactWitnessNames,
		Placeholder:        c.Redaction.Placeholder,
		WitnessFetchLimit:  c.Redaction.WitnessFetchLimit,
	}.Normalize()
}

// parseJWKSEndpoints parses the JWKS endpoints string into a map.
// Format: "issuer1=url1,issuer2=url2"
func parseJWKSEndpoints(value string) map[string]string {
	endpoints := make(map[string]string)
	if value == "" {
		return endpoints
	}

	for _, pair := range strings.Split(value, ",") {
		issuer, url, ok := strings.Cut(pair, "=")
		if ok {
			endpoints[strings.TrimSpace(issuer)] = strings.TrimSpace(url)
		}
	}
	return endpoints
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		resolveHostForDocker(c.Host), c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

var (
	inDockerOnce sync.Once
	inDocker     bool
)

// resolveHostForDocker maps loopback hosts to host.docker.internal inside a container,
// so a dockerised engine can reach a database published on the host.
func resolveHostForDocker(host string) string {
	inDockerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		inDocker = err == nil
	})
	if inDocker && (host == "localhost" || host == "127.0.0.1") {
		return "host.docker.internal"
	}
	return host
}
