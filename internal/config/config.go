// Package config loads the application configuration from an optional YAML
// file, a .env file, and PUSHHUB_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"pushhub/internal/infrastructure/logger"
)

// DevJWTSecret is the fallback signing secret used when none is configured.
// It exists so local development works out of the box; main warns loudly
// when it is still in use.
const DevJWTSecret = "dev-secret-change-me"

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Hub    HubConfig    `mapstructure:"hub"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Redis  RedisConfig  `mapstructure:"redis"`
}

type ServerConfig struct {
	Addr              string        `mapstructure:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggerConfig converts the section into the logger package's own config.
func (c LogConfig) LoggerConfig() *logger.Config {
	return &logger.Config{
		Level:      logger.ParseLevel(c.Level),
		Format:     c.Format,
		Output:     c.Output,
		FilePath:   c.FilePath,
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAge,
		Compress:   c.Compress,
		Fields:     logger.DefaultFields(),
	}
}

type HubConfig struct {
	// QueueSize bounds each connection's pending-event queue. A connection
	// that falls this far behind is dropped rather than slowing the rest.
	QueueSize int `mapstructure:"queue_size"`
	// KeepAliveInterval must stay below intermediary idle timeouts,
	// typically 60s on proxies.
	KeepAliveInterval time.Duration `mapstructure:"keepalive_interval"`
	SweepInterval     time.Duration `mapstructure:"sweep_interval"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
			ShutdownTimeout:   5 * time.Second,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			Output:     "stdout",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		},
		Hub: HubConfig{
			QueueSize:         256,
			KeepAliveInterval: 30 * time.Second,
			SweepInterval:     30 * time.Second,
		},
		Auth: AuthConfig{
			JWTSecret: DevJWTSecret,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			Channel: "pushhub:events",
		},
	}
}

func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr must not be empty")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("server.shutdown_timeout must be positive")
	}
	if c.Hub.QueueSize <= 0 {
		return errors.New("hub.queue_size must be positive")
	}
	if c.Hub.KeepAliveInterval <= 0 {
		return errors.New("hub.keepalive_interval must be positive")
	}
	if c.Hub.SweepInterval <= 0 {
		return errors.New("hub.sweep_interval must be positive")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret must not be empty")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("redis.addr must not be empty when redis is enabled")
	}
	if c.Redis.Enabled && c.Redis.Channel == "" {
		return errors.New("redis.channel must not be empty when redis is enabled")
	}

	switch c.Log.Output {
	case "", "stdout", "stderr":
	case "file":
		if c.Log.FilePath == "" {
			return errors.New("log.file_path must be set when log.output is file")
		}
	default:
		return fmt.Errorf("unknown log.output %q", c.Log.Output)
	}

	return nil
}
