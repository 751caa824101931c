package logger

import "os"

type Config struct {
	Level      Level             `json:"level"       yaml:"level"`
	Format     string            `json:"format"      yaml:"format"` // json, text, console
	Output     string            `json:"output"      yaml:"output"` // stdout, stderr, file
	FilePath   string            `json:"file_path"   yaml:"file_path"`
	MaxSize    int               `json:"max_size"    yaml:"max_size"` // MB
	MaxBackups int               `json:"max_backups" yaml:"max_backups"`
	MaxAge     int               `json:"max_age"     yaml:"max_age"` // days
	Compress   bool              `json:"compress"    yaml:"compress"`
	Fields     map[string]string `json:"fields"      yaml:"fields"` // static fields attached to every entry
}

// DefaultFields returns the static fields attached to every log entry so
// instances can be told apart behind a load balancer.
func DefaultFields() map[string]string {
	hostname, _ := os.Hostname()

	fields := map[string]string{
		"service":  "pushhub",
		"hostname": hostname,
	}
	if env := os.Getenv("APP_ENV"); env != "" {
		fields["environment"] = env
	}

	return fields
}

func NewDefaultConfig() *Config {
	return &Config{
		Level:      LevelInfo,
		Format:     "console",
		Output:     "stdout",
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
		Fields:     DefaultFields(),
	}
}
