// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Reports  ReportsConfig  `yaml:"reports" mapstructure:"reports"`
	Charts   ChartsConfig   `yaml:"charts" mapstructure:"charts"`
	Snapshot SnapshotConfig `yaml:"snapshot" mapstructure:"snapshot"`
	Rates    RatesConfig    `yaml:"rates" mapstructure:"rates"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// ReportsConfig locates the input report files.
type ReportsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ChartsConfig locates the rendered chart output.
type ChartsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// SnapshotConfig configures the corpus snapshot store.
type SnapshotConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// RatesConfig holds the default base number rates are computed against.
type RatesConfig struct {
	Base float64 `yaml:"base" mapstructure:"base"`
}

// ServerConfig configures the upload/query server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("ATTENDANCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("reports.dir", "reports")
	v.SetDefault("charts.dir", "static/charts")
	v.SetDefault("snapshot.path", "attendance.db")
	v.SetDefault("rates.base", 0)
	v.SetDefault("server.port", 8080)
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
