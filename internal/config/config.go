package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Warehouse WarehouseConfig `yaml:"warehouse" mapstructure:"warehouse"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// WarehouseConfig configures the catalog backend.
type WarehouseConfig struct {
	Driver       string     `yaml:"driver" mapstructure:"driver"`
	DatabaseURL  string     `yaml:"database_url" mapstructure:"database_url"`
	SnapshotPath string     `yaml:"snapshot_path" mapstructure:"snapshot_path"`
	Pool         PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// PoolConfig tunes the pgx connection pool.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the dashboard API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
}

// SearchConfig configures result paging and the filter pick-list cache.
type SearchConfig struct {
	PageSize           int `yaml:"page_size" mapstructure:"page_size"`
	MinNameChars       int `yaml:"min_name_chars" mapstructure:"min_name_chars"`
	FilterCacheTTLMins int `yaml:"filter_cache_ttl_mins" mapstructure:"filter_cache_ttl_mins"`
}

// FilterCacheTTL returns the pick-list cache TTL as a duration.
func (s SearchConfig) FilterCacheTTL() time.Duration {
	return time.Duration(s.FilterCacheTTLMins) * time.Minute
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CUSTOMER360")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("warehouse.driver", "postgres")
	v.SetDefault("warehouse.snapshot_path", "customer360.db")
	v.SetDefault("warehouse.pool.max_conns", 10)
	v.SetDefault("warehouse.pool.min_conns", 2)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit_rps", 10)
	v.SetDefault("server.rate_limit_burst", 20)
	v.SetDefault("search.page_size", 50)
	v.SetDefault("search.min_name_chars", 2)
	v.SetDefault("search.filter_cache_ttl_mins", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the selected warehouse driver is usable.
func (c *Config) Validate() error {
	switch c.Warehouse.Driver {
	case "postgres":
		if c.Warehouse.DatabaseURL == "" {
			return eris.New("config: warehouse.database_url is required for the postgres driver")
		}
	case "sqlite":
		if c.Warehouse.SnapshotPath == "" {
			return eris.New("config: warehouse.snapshot_path is required for the sqlite driver")
		}
	default:
		return eris.Errorf("config: unknown warehouse driver %q (valid: postgres, sqlite)", c.Warehouse.Driver)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
