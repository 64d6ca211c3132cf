// Package config loads server configuration from file, environment, and
// defaults via Viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/pharmaguard-server/internal/domain"
)

// Manager loads and holds the server configuration
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	// Set configuration file name and paths
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/pharmaguard-server/")

	// Set environment variable prefix and enable automatic env binding
	viper.SetEnvPrefix("PHARMAGUARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// Read configuration file (optional - will use defaults and env vars if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	viper.SetDefault("environment", "development")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// Generator defaults
	viper.SetDefault("generator.provider", "openai")
	viper.SetDefault("generator.base_url", "")
	viper.SetDefault("generator.api_key", "")
	viper.SetDefault("generator.model", "gpt-3.5-turbo")
	viper.SetDefault("generator.timeout", "30s")
	viper.SetDefault("generator.max_retries", 3)
	viper.SetDefault("generator.retry_delay", "500ms")
	viper.SetDefault("generator.rate_limit", 1)
	viper.SetDefault("generator.rate_burst", 5)
	viper.SetDefault("generator.disabled", false)

	// Cache defaults
	viper.SetDefault("cache.backend", "sqlite")
	viper.SetDefault("cache.sqlite_path", "./data/explanations.db")
	viper.SetDefault("cache.redis_url", "redis://localhost:6379")
	viper.SetDefault("cache.pool_size", 10)
	viper.SetDefault("cache.pool_timeout", "4s")
	viper.SetDefault("cache.max_retries", 3)
	viper.SetDefault("cache.memory_size", 1024)

	// Database defaults (optional report store)
	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.sqlite_path", "./data/reports.db")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.database", "pharmaguard")
	viper.SetDefault("database.username", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")
	viper.SetDefault("database.migrations_path", "./migrations")

	// Orchestrator defaults
	viper.SetDefault("orchestrator.workers", 4)
	viper.SetDefault("orchestrator.queue_size", 64)
	viper.SetDefault("orchestrator.drug_parallel", 4)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetGeneratorConfig returns generator configuration
func (m *Manager) GetGeneratorConfig() *domain.GeneratorConfig {
	return &m.config.Generator
}

// GetCacheConfig returns cache configuration
func (m *Manager) GetCacheConfig() *domain.CacheConfig {
	return &m.config.Cache
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	cfg := m.config

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}

	switch cfg.Cache.Backend {
	case "sqlite":
		if cfg.Cache.SQLitePath == "" {
			return fmt.Errorf("cache.sqlite_path is required for the sqlite backend")
		}
	case "redis":
		if cfg.Cache.RedisURL == "" {
			return fmt.Errorf("cache.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown cache backend: %s", cfg.Cache.Backend)
	}

	if !cfg.Generator.Disabled {
		switch cfg.Generator.Provider {
		case "openai", "groq":
		default:
			return fmt.Errorf("unknown generator provider: %s", cfg.Generator.Provider)
		}
		if cfg.Generator.APIKey == "" {
			return fmt.Errorf("generator.api_key is required unless generator.disabled is set")
		}
		if cfg.Generator.Model == "" {
			return fmt.Errorf("generator.model is required unless generator.disabled is set")
		}
	}

	if cfg.Database.Enabled {
		switch cfg.Database.Driver {
		case "sqlite":
			if cfg.Database.SQLitePath == "" {
				return fmt.Errorf("database.sqlite_path is required for the sqlite driver")
			}
		case "postgres":
			if cfg.Database.Host == "" || cfg.Database.Database == "" {
				return fmt.Errorf("database.host and database.database are required for the postgres driver")
			}
		default:
			return fmt.Errorf("unknown database driver: %s", cfg.Database.Driver)
		}
	}

	if cfg.Orchestrator.Workers <= 0 {
		return fmt.Errorf("orchestrator.workers must be positive")
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	return nil
}
