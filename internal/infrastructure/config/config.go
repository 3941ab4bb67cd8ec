package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/Layang-Digital-Innovation/tradeinvestcenter/internal/shared/config"
)

type Config struct {
	Server       sharedConfig.ServerConfig       `mapstructure:"server"`
	Database     sharedConfig.DatabaseConfig     `mapstructure:"database"`
	Logger       sharedConfig.LoggerConfig       `mapstructure:"logger"`
	Redis        sharedConfig.RedisConfig        `mapstructure:"redis"`
	Provider     sharedConfig.ProviderConfig     `mapstructure:"provider"`
	Email        sharedConfig.EmailConfig        `mapstructure:"email"`
	Notification sharedConfig.NotificationConfig `mapstructure:"notification"`
	Billing      sharedConfig.BillingConfig      `mapstructure:"billing"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables.
// configPath overrides the search path when set.
func Load(env string, configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("../configs")
		viper.AddConfigPath("../../configs")
	}

	viper.SetEnvPrefix("BILLING")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine, defaults and environment variables still apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		viper.Set("server.mode", env)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, err
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// Settings returns every resolved key, including defaults and environment overrides.
func Settings() map[string]interface{} {
	return viper.AllSettings()
}

func validate(cfg *Config) error {
	switch cfg.Database.Driver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	switch cfg.Provider.Driver {
	case "mock":
	case "http":
		if cfg.Provider.BaseURL == "" {
			return fmt.Errorf("provider.base_url is required for the http provider")
		}
	default:
		return fmt.Errorf("unsupported provider driver %q", cfg.Provider.Driver)
	}

	if cfg.Billing.ExpiryGraceHours < 0 {
		return fmt.Errorf("billing.expiry_grace_hours must not be negative")
	}
	if cfg.Billing.ConflictRetries < 1 {
		return fmt.Errorf("billing.conflict_retries must be at least 1")
	}
	return nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("server.rate_limit_per_minute", 120)

	// Database defaults
	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.path", "billing.db")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 3306)
	viper.SetDefault("database.username", "root")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.database", "billing")
	viper.SetDefault("database.max_idle_conns", 10)
	viper.SetDefault("database.max_open_conns", 100)
	viper.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stdout")

	// Redis defaults
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Provider defaults
	viper.SetDefault("provider.driver", "mock")
	viper.SetDefault("provider.base_url", "")
	viper.SetDefault("provider.api_key", "")
	viper.SetDefault("provider.timeout_seconds", 10)
	viper.SetDefault("provider.callback_token", "")
	viper.SetDefault("provider.breaker_max_failures", 5)
	viper.SetDefault("provider.breaker_timeout_seconds", 30)

	// Email defaults
	viper.SetDefault("email.smtp_host", "localhost")
	viper.SetDefault("email.smtp_port", 1025)
	viper.SetDefault("email.smtp_user", "")
	viper.SetDefault("email.smtp_password", "")
	viper.SetDefault("email.from_address", "billing@localhost")
	viper.SetDefault("email.from_name", "Billing")

	viper.SetDefault("notification.admin_emails", []string{})

	// Billing defaults
	viper.SetDefault("billing.webhook_dedup_ttl_hours", 24)
	viper.SetDefault("billing.conflict_retries", 5)
	viper.SetDefault("billing.expiry_grace_hours", 72)
	viper.SetDefault("billing.expiry_sweep_minutes", 60)
	viper.SetDefault("billing.timezone", "UTC")
}
