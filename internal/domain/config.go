package domain

import "time"

// Config is the complete server configuration
type Config struct {
	Environment  string             `mapstructure:"environment"`
	Server       ServerConfig       `mapstructure:"server"`
	Generator    GeneratorConfig    `mapstructure:"generator"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Orchestrator OrchestratorConfig `mapstructure:"orchestrator"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// GeneratorConfig holds explanation generator settings. Provider is
// selected once at startup; there is no per-call provider branching.
type GeneratorConfig struct {
	Provider    string        `mapstructure:"provider"` // "openai" | "groq"
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
	RateLimit   int           `mapstructure:"rate_limit"` // requests per second
	RateBurst   int           `mapstructure:"rate_burst"`
	Disabled    bool          `mapstructure:"disabled"`
}

// CacheConfig holds explanation cache settings
type CacheConfig struct {
	Backend     string        `mapstructure:"backend"` // "sqlite" | "redis"
	SQLitePath  string        `mapstructure:"sqlite_path"`
	RedisURL    string        `mapstructure:"redis_url"`
	PoolSize    int           `mapstructure:"pool_size"`
	PoolTimeout time.Duration `mapstructure:"pool_timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
	MemorySize  int           `mapstructure:"memory_size"` // in-memory LRU tier
}

// DatabaseConfig holds the optional report store settings. Driver
// selects SQLite for single-node deployments or PostgreSQL for shared
// ones.
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Driver          string        `mapstructure:"driver"` // "sqlite" | "postgres"
	SQLitePath      string        `mapstructure:"sqlite_path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// OrchestratorConfig holds job pipeline settings
type OrchestratorConfig struct {
	Workers       int `mapstructure:"workers"`
	QueueSize     int `mapstructure:"queue_size"`
	DrugParallel  int `mapstructure:"drug_parallel"` // per-job fan-out width
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" | "text"
	Output string `mapstructure:"output"`
}
