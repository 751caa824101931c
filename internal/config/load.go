package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configuration in ascending precedence: built-in defaults, the
// YAML file at path (or ./config.yml and ./config/config.yml when path is
// empty), a .env file, and finally PUSHHUB_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	// A .env file is optional; environment variables it sets are picked up
	// by the automatic binding below.
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	v.SetEnvPrefix("PUSHHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers every key with viper so environment overrides apply
// even when neither a file nor a .env provides the key.
func setDefaults(v *viper.Viper) {
	def := Default()

	v.SetDefault("server.addr", def.Server.Addr)
	v.SetDefault("server.read_header_timeout", def.Server.ReadHeaderTimeout)
	v.SetDefault("server.idle_timeout", def.Server.IdleTimeout)
	v.SetDefault("server.shutdown_timeout", def.Server.ShutdownTimeout)

	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.output", def.Log.Output)
	v.SetDefault("log.file_path", def.Log.FilePath)
	v.SetDefault("log.max_size", def.Log.MaxSize)
	v.SetDefault("log.max_backups", def.Log.MaxBackups)
	v.SetDefault("log.max_age", def.Log.MaxAge)
	v.SetDefault("log.compress", def.Log.Compress)

	v.SetDefault("hub.queue_size", def.Hub.QueueSize)
	v.SetDefault("hub.keepalive_interval", def.Hub.KeepAliveInterval)
	v.SetDefault("hub.sweep_interval", def.Hub.SweepInterval)

	v.SetDefault("auth.jwt_secret", def.Auth.JWTSecret)
	v.SetDefault("auth.issuer", def.Auth.Issuer)

	v.SetDefault("redis.enabled", def.Redis.Enabled)
	v.SetDefault("redis.addr", def.Redis.Addr)
	v.SetDefault("redis.password", def.Redis.Password)
	v.SetDefault("redis.db", def.Redis.DB)
	v.SetDefault("redis.channel", def.Redis.Channel)
}
