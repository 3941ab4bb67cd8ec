package config

import "fmt"

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// RateLimitPerMinute caps requests per user on the management API. Needs redis.
	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	// Driver is "mysql" or "sqlite". Path is only read for sqlite.
	Driver          string `mapstructure:"driver"`
	Path            string `mapstructure:"path"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	if d.Driver == "sqlite" {
		return d.Path
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
}

// NotificationConfig controls the admin notifier. With no recipients the notifier is a no-op.
type NotificationConfig struct {
	AdminEmails []string `mapstructure:"admin_emails"`
}

// ProviderConfig describes the external recurring-payment provider.
type ProviderConfig struct {
	// Driver is "http" or "mock".
	Driver         string `mapstructure:"driver"`
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	// CallbackToken is the shared secret the provider sends in X-Callback-Token.
	CallbackToken string `mapstructure:"callback_token"`
	// Circuit breaker settings.
	BreakerMaxFailures    int `mapstructure:"breaker_max_failures"`
	BreakerTimeoutSeconds int `mapstructure:"breaker_timeout_seconds"`
}

type BillingConfig struct {
	// WebhookDedupTTLHours bounds how long a delivered event key is remembered.
	WebhookDedupTTLHours int `mapstructure:"webhook_dedup_ttl_hours"`
	// ConflictRetries is how many times a version conflict is retried.
	ConflictRetries int `mapstructure:"conflict_retries"`
	// ExpiryGraceHours is how long an ACTIVE subscription may stay past its paid period
	// before the sweep expires it.
	ExpiryGraceHours   int `mapstructure:"expiry_grace_hours"`
	ExpirySweepMinutes int `mapstructure:"expiry_sweep_minutes"`
	// Timezone drives the scheduler clock and operator email timestamps. Storage is always UTC.
	Timezone string `mapstructure:"timezone"`
}
