package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/office/config"
	ConfigFileName    = "office.yml"
)

// OfficeConfig holds all server configuration settings
type OfficeConfig struct {
	// AccessTokenTTL is the access token lifetime in seconds
	AccessTokenTTL int `yaml:"access_token_ttl" json:"access_token_ttl"`

	// RefreshTokenTTL is the refresh token lifetime in seconds. It must
	// always exceed AccessTokenTTL.
	RefreshTokenTTL int `yaml:"refresh_token_ttl" json:"refresh_token_ttl"`

	// BcryptCost is the password hashing cost factor
	BcryptCost int `yaml:"bcrypt_cost" json:"bcrypt_cost"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Global singleton config
var (
	globalConfig *OfficeConfig
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *OfficeConfig {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// newDefault returns a config with default values. The token TTLs mirror the
// historical constants: five-minute access tokens, one-hour refresh tokens.
func newDefault() *OfficeConfig {
	return &OfficeConfig{
		AccessTokenTTL:  300,
		RefreshTokenTTL: 3600,
		BcryptCost:      10,
		sources:         make(map[string]string),
	}
}

// Load loads configuration from file and environment variables
// Environment variables take precedence over file values
func Load() (*OfficeConfig, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("OFFICE_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig OfficeConfig
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	config.applyEnvConfig()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks cross-field invariants.
func (c *OfficeConfig) Validate() error {
	if c.AccessTokenTTL <= 0 {
		return fmt.Errorf("access_token_ttl must be positive, got %d", c.AccessTokenTTL)
	}
	if c.RefreshTokenTTL <= c.AccessTokenTTL {
		return fmt.Errorf(
			"refresh_token_ttl (%d) must exceed access_token_ttl (%d)",
			c.RefreshTokenTTL, c.AccessTokenTTL,
		)
	}
	return nil
}

// AccessTokenDuration returns the access token lifetime.
func (c *OfficeConfig) AccessTokenDuration() time.Duration {
	return time.Duration(c.AccessTokenTTL) * time.Second
}

// RefreshTokenDuration returns the refresh token lifetime.
func (c *OfficeConfig) RefreshTokenDuration() time.Duration {
	return time.Duration(c.RefreshTokenTTL) * time.Second
}

func attributeNames() []string {
	return []string{"access_token_ttl", "refresh_token_ttl", "bcrypt_cost"}
}

func (c *OfficeConfig) applyFileConfig(file *OfficeConfig) {
	if file.AccessTokenTTL != 0 {
		c.AccessTokenTTL = file.AccessTokenTTL
		c.sources["access_token_ttl"] = "file"
	}
	if file.RefreshTokenTTL != 0 {
		c.RefreshTokenTTL = file.RefreshTokenTTL
		c.sources["refresh_token_ttl"] = "file"
	}
	if file.BcryptCost != 0 {
		c.BcryptCost = file.BcryptCost
		c.sources["bcrypt_cost"] = "file"
	}
}

func (c *OfficeConfig) applyEnvConfig() {
	if val := os.Getenv("OFFICE_ACCESS_TOKEN_TTL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.AccessTokenTTL = i
			c.sources["access_token_ttl"] = "environment"
		}
	}
	if val := os.Getenv("OFFICE_REFRESH_TOKEN_TTL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.RefreshTokenTTL = i
			c.sources["refresh_token_ttl"] = "environment"
		}
	}
	if val := os.Getenv("OFFICE_BCRYPT_COST"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.BcryptCost = i
			c.sources["bcrypt_cost"] = "environment"
		}
	}
}

// ConfigFilePath returns the path to the config file
func (c *OfficeConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *OfficeConfig) Source(name string) string {
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}
