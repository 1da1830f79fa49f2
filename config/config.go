package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	_ "github.com/joho/godotenv/autoload"

	"github.com/preslavrachev/backoffice-actions/core"
	"github.com/preslavrachev/backoffice-actions/middleware/auth"
)

// Config holds all application configuration
type Config struct {
	Auth           *AuthConfig
	DebugEnabled   bool
	Title          string
	BasePath       string
	ItemsPerPage   int
	ActionsEnabled bool

	// Roles maps role names to the permissions they grant
	Roles map[string][]string
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	BasicAuthUser string
	BasicAuthPass string
}

// fileConfig is the layout of the optional TOML file
type fileConfig struct {
	Title        string `toml:"title"`
	BasePath     string `toml:"base_path"`
	ItemsPerPage int    `toml:"items_per_page"`
	Debug        *bool  `toml:"debug"`

	Actions struct {
		Enabled *bool `toml:"enabled"`
	} `toml:"actions"`

	Roles map[string][]string `toml:"roles"`
}

// LoadConfig builds the configuration from defaults, the optional TOML file
// named by BACKOFFICE_CONFIG_FILE, and environment variables, in that order.
// .env file is automatically loaded via autoload import.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Auth:           &AuthConfig{BasicAuthUser: "admin", BasicAuthPass: "admin123"},
		Title:          "BackOffice Admin",
		BasePath:       "/admin",
		ItemsPerPage:   core.DefaultPageSize,
		ActionsEnabled: true,
		Roles:          map[string][]string{"admin": {auth.Wildcard}},
	}

	if path := strings.TrimSpace(os.Getenv("BACKOFFICE_CONFIG_FILE")); path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.Auth.BasicAuthUser = getEnvWithDefault("BACKOFFICE_BASIC_AUTH_USER", cfg.Auth.BasicAuthUser)
	cfg.Auth.BasicAuthPass = getEnvWithDefault("BACKOFFICE_BASIC_AUTH_PASS", cfg.Auth.BasicAuthPass)
	cfg.BasePath = getEnvWithDefault("BACKOFFICE_BASE_PATH", cfg.BasePath)
	cfg.DebugEnabled = getBoolEnvWithDefault("DEBUG", cfg.DebugEnabled)
	cfg.ItemsPerPage = getIntEnvWithDefault("BACKOFFICE_PAGE_SIZE", cfg.ItemsPerPage)

	if cfg.ItemsPerPage <= 0 || cfg.ItemsPerPage > core.MaxPageSize {
		return nil, fmt.Errorf("items per page must be between 1 and %d, got %d", core.MaxPageSize, cfg.ItemsPerPage)
	}

	return cfg, nil
}

// LoadFile applies the settings of a TOML file on top of cfg
func LoadFile(path string, cfg *Config) error {
	var file fileConfig
	meta, err := toml.DecodeFile(path, &file)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("read config %s: unknown key %s", path, undecoded[0])
	}

	if file.Title != "" {
		cfg.Title = file.Title
	}
	if file.BasePath != "" {
		cfg.BasePath = file.BasePath
	}
	if file.ItemsPerPage != 0 {
		cfg.ItemsPerPage = file.ItemsPerPage
	}
	if file.Debug != nil {
		cfg.DebugEnabled = *file.Debug
	}
	if file.Actions.Enabled != nil {
		cfg.ActionsEnabled = *file.Actions.Enabled
	}
	if file.Roles != nil {
		cfg.Roles = file.Roles
	}
	return nil
}

// RolePermissions returns the permission checker described by the roles table
func (c *Config) RolePermissions() auth.RolePermissions {
	perms := make(auth.RolePermissions, len(c.Roles))
	for role, granted := range c.Roles {
		perms[role] = append([]string{}, granted...)
	}
	return perms
}

// Options translates the configuration into BackOffice options.
// Permissions are left to the caller since they only apply when
// authentication identifies a user.
func (c *Config) Options() []core.Option {
	return []core.Option{
		core.WithTitle(c.Title),
		core.WithBasePath(c.BasePath),
		core.WithItemsPerPage(c.ItemsPerPage),
		core.WithActionsEnabled(c.ActionsEnabled),
	}
}

// getEnvWithDefault gets an environment variable with a default fallback
func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnvWithDefault gets a boolean environment variable with a default fallback
func getBoolEnvWithDefault(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getIntEnvWithDefault gets an integer environment variable with a default fallback
func getIntEnvWithDefault(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
