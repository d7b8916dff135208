package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Editor EditorConfig `mapstructure:"editor"`
	Render RenderConfig `mapstructure:"render"`
	Logger LoggerConfig `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigin   string        `mapstructure:"allowed_origin"`
}

// EditorConfig holds editing session configuration
type EditorConfig struct {
	// InitialSnapshot is loaded at startup instead of the built-in default invoice
	InitialSnapshot string `mapstructure:"initial_snapshot"`
	// MaxUploadBytes bounds snapshot uploads
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`
}

// RenderConfig holds document export configuration
type RenderConfig struct {
	FontFamily string  `mapstructure:"font_family"`
	PreviewDPI float64 `mapstructure:"preview_dpi"`
	OutputDir  string  `mapstructure:"output_dir"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from an optional .env file, the config file and environment variables.
// An empty configPath uses defaults and environment only.
func Load(configPath string) (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	bindEnvVars(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origin", "*")

	// Editor defaults
	v.SetDefault("editor.initial_snapshot", "")
	v.SetDefault("editor.max_upload_bytes", 10<<20)

	// Render defaults
	v.SetDefault("render.font_family", "Helvetica")
	v.SetDefault("render.preview_dpi", 96)
	v.SetDefault("render.output_dir", "exports")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) {
	v.SetEnvPrefix("INVOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("server.port", "INVOICE_PORT", "PORT")
	v.BindEnv("editor.initial_snapshot", "INVOICE_INITIAL_SNAPSHOT")
	v.BindEnv("logger.level", "INVOICE_LOG_LEVEL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Editor.MaxUploadBytes <= 0 {
		return fmt.Errorf("editor.max_upload_bytes must be positive")
	}

	if c.Render.PreviewDPI <= 0 {
		return fmt.Errorf("render.preview_dpi must be positive")
	}

	switch c.Logger.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logger.format must be json or console, got %q", c.Logger.Format)
	}

	if c.Editor.InitialSnapshot != "" {
		if _, err := os.Stat(c.Editor.InitialSnapshot); err != nil {
			return fmt.Errorf("editor.initial_snapshot: %w", err)
		}
	}

	return nil
}
