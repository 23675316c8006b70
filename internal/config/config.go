package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. GENESISQA_SERVER_LISTEN.
const EnvPrefix = "GENESISQA"

// Config holds all runtime settings.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
}

// ServerConfig contains HTTP boundary settings.
type ServerConfig struct {
	Listen         string `mapstructure:"listen"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
	// RedactErrors scrubs secret-looking tokens from error messages returned
	// to callers. The message itself is still returned.
	RedactErrors bool `mapstructure:"redact_errors"`
	// RedactContent scrubs uploaded content in the upload status listing.
	RedactContent bool `mapstructure:"redact_content"`
}

func (s ServerConfig) Validate() error {
	if strings.TrimSpace(s.Listen) == "" {
		return fmt.Errorf("server.listen required")
	}
	if s.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be > 0, got %d", s.MaxUploadBytes)
	}
	return nil
}

// LogConfig selects the zap level and encoder.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func (l LogConfig) Validate() error {
	switch l.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log.format must be json or console, got %q", l.Format)
	}
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", l.Level)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen", ":5000")
	v.SetDefault("server.max_upload_bytes", 10*1024*1024)
	v.SetDefault("server.redact_errors", true)
	v.SetDefault("server.redact_content", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Load reads configuration from path, or searches ./config and . for a
// file named "genesisqa" when path is empty. A missing file in search mode
// is not an error; defaults and GENESISQA_* environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("genesisqa")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}
