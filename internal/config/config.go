// Package config loads dashboard settings through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cargodash/internal/common"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. CARGODASH_DATA_PATH.
const EnvPrefix = "CARGODASH"

type Config struct {
	Data      DataConfig      `mapstructure:"data"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Map       MapConfig       `mapstructure:"map"`
}

type DataConfig struct {
	Path  string `mapstructure:"path"`
	Sheet string `mapstructure:"sheet"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DashboardConfig struct {
	TopN     int `mapstructure:"top_n"`
	LineRows int `mapstructure:"line_rows"`
}

// MapConfig positions the initial map view.
type MapConfig struct {
	CenterLat float64 `mapstructure:"center_lat"`
	CenterLon float64 `mapstructure:"center_lon"`
	Zoom      float64 `mapstructure:"zoom"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data.path", "geo_data.xlsx")
	v.SetDefault("data.sheet", "data")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("dashboard.top_n", 5)
	v.SetDefault("dashboard.line_rows", 50)
	v.SetDefault("map.center_lat", 10.0)
	v.SetDefault("map.center_lon", -20.0)
	v.SetDefault("map.zoom", 2.3)
}

// New returns a viper instance with defaults and environment overrides.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile loads cfgFile, or searches the working directory and
// $HOME/.config/cargodash for cargodash.yaml. A missing config file is fine.
func ReadFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(ExpandPath(cfgFile))
	} else {
		v.SetConfigName("cargodash")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "cargodash"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Load decodes v into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &common.ConfigError{Reason: fmt.Sprintf("decode config: %v", err)}
	}
	cfg.Data.Path = ExpandPath(cfg.Data.Path)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the dashboard cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Data.Path == "":
		return common.NewConfigError("data.path", "must not be empty")
	case c.Server.Addr == "":
		return common.NewConfigError("server.addr", "must not be empty")
	case c.Dashboard.TopN < 0:
		return common.NewConfigError("dashboard.top_n", "must not be negative, got %d", c.Dashboard.TopN)
	case c.Dashboard.LineRows < 0:
		return common.NewConfigError("dashboard.line_rows", "must not be negative, got %d", c.Dashboard.LineRows)
	case c.Map.CenterLat < -90 || c.Map.CenterLat > 90:
		return common.NewConfigError("map.center_lat", "out of range: %v", c.Map.CenterLat)
	case c.Map.CenterLon < -180 || c.Map.CenterLon > 180:
		return common.NewConfigError("map.center_lon", "out of range: %v", c.Map.CenterLon)
	case c.Map.Zoom <= 0:
		return common.NewConfigError("map.zoom", "must be positive, got %v", c.Map.Zoom)
	}
	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

// ExpandPath expands a leading ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") || path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return os.ExpandEnv(path)
}
