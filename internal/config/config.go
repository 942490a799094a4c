package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server       ServerConfig   `mapstructure:"server"`
	Database     DatabaseConfig `mapstructure:"database"`
	Auth         AuthConfig     `mapstructure:"auth"`
	Reminder     ReminderConfig `mapstructure:"reminder"`
	Notifier     NotifierConfig `mapstructure:"notifier"`
	Tasks        TasksConfig    `mapstructure:"tasks"`
	Log          LogConfig      `mapstructure:"log"`
	OpenAIAPIKey string         `mapstructure:"openai_api_key"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	GinMode         string        `mapstructure:"gin_mode" validate:"oneof=debug release test"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver" validate:"oneof=mysql postgres"`
	Host     string `mapstructure:"host" validate:"required"`
	Port     string `mapstructure:"port" validate:"required"`
	User     string `mapstructure:"user" validate:"required"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name" validate:"required"`
	SSLMode  string `mapstructure:"sslmode"`
	LogLevel string `mapstructure:"log_level" validate:"oneof=silent error warn info"`
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenTTL   time.Duration `mapstructure:"token_ttl" validate:"gt=0"`
	LoginRate  float64       `mapstructure:"login_rate" validate:"gt=0"`
	LoginBurst int           `mapstructure:"login_burst" validate:"min=1"`
}

type ReminderConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval" validate:"gt=0"`
	// Cooldown of zero notifies on every cycle.
	Cooldown time.Duration `mapstructure:"cooldown" validate:"min=0"`
	Workers  int           `mapstructure:"workers" validate:"min=1,max=64"`
}

type NotifierConfig struct {
	Driver  string        `mapstructure:"driver" validate:"oneof=log push"`
	PushURL string        `mapstructure:"push_url" validate:"required_if=Driver push"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type TasksConfig struct {
	// StrictOwnership restricts fetch-by-id and toggle to the owner or assignee.
	StrictOwnership bool `mapstructure:"strict_ownership"`
}

type LogConfig struct {
	Level       string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Development bool   `mapstructure:"development"`
}

// Load reads configuration from the environment, applies defaults and validates the result.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	bindEnvs := []struct {
		key    string
		envVar string
	}{
		{"server.port", "PORT"},
		{"server.gin_mode", "GIN_MODE"},
		{"server.shutdown_timeout", "SHUTDOWN_TIMEOUT"},
		{"database.driver", "DB_DRIVER"},
		{"database.host", "DB_HOST"},
		{"database.port", "DB_PORT"},
		{"database.user", "DB_USER"},
		{"database.password", "DB_PASSWORD"},
		{"database.name", "DB_NAME"},
		{"database.sslmode", "DB_SSLMODE"},
		{"database.log_level", "DB_LOG_LEVEL"},
		{"auth.jwt_secret", "JWT_SECRET"},
		{"auth.token_ttl", "JWT_TTL"},
		{"auth.login_rate", "LOGIN_RATE_PER_SECOND"},
		{"auth.login_burst", "LOGIN_BURST"},
		{"reminder.enabled", "REMINDER_ENABLED"},
		{"reminder.interval", "REMINDER_INTERVAL"},
		{"reminder.cooldown", "REMINDER_COOLDOWN"},
		{"reminder.workers", "REMINDER_WORKERS"},
		{"notifier.driver", "NOTIFIER_DRIVER"},
		{"notifier.push_url", "PUSH_GATEWAY_URL"},
		{"notifier.api_key", "PUSH_API_KEY"},
		{"notifier.timeout", "PUSH_TIMEOUT"},
		{"tasks.strict_ownership", "TASKS_STRICT_OWNERSHIP"},
		{"log.level", "LOG_LEVEL"},
		{"log.development", "LOG_DEVELOPMENT"},
		{"openai_api_key", "OPENAI_API_KEY"},
	}

	for _, env := range bindEnvs {
		if err := v.BindEnv(env.key, env.envVar); err != nil {
			return nil, fmt.Errorf("error binding environment variable %s: %w", env.envVar, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.gin_mode", "debug")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "3306")
	v.SetDefault("database.user", "taskuser")
	v.SetDefault("database.password", "taskpassword")
	v.SetDefault("database.name", "todo_reminder")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.login_rate", 1.0)
	v.SetDefault("auth.login_burst", 5)

	v.SetDefault("reminder.enabled", true)
	v.SetDefault("reminder.interval", 20*time.Second)
	v.SetDefault("reminder.cooldown", 24*time.Hour)
	v.SetDefault("reminder.workers", 4)

	v.SetDefault("notifier.driver", "log")
	v.SetDefault("notifier.timeout", 5*time.Second)

	v.SetDefault("tasks.strict_ownership", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// DSN returns the driver-specific connection string.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.User, d.Password, d.Host, d.Port, d.Name)
}
