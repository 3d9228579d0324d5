package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"searchmap/internal/style"
)

// Config holds all application configuration.
type Config struct {
	Map     MapConfig     `mapstructure:"map"`
	Style   StyleConfig   `mapstructure:"style"`
	Log     LogConfig     `mapstructure:"log"`
	Inbound InboundConfig `mapstructure:"inbound"`
}

type MapConfig struct {
	CenterLon     float64       `mapstructure:"center_lon"`
	CenterLat     float64       `mapstructure:"center_lat"`
	Zoom          float64       `mapstructure:"zoom"`
	MaxFitZoom    float64       `mapstructure:"max_fit_zoom"`
	FitDuration   time.Duration `mapstructure:"fit_duration"`
	TileSize      float64       `mapstructure:"tile_size"`
	GraticuleStep float64       `mapstructure:"graticule_step"`
}

type StyleConfig struct {
	FallbackColor string `mapstructure:"fallback_color"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

type InboundConfig struct {
	Stdin  bool       `mapstructure:"stdin"`
	NATS   NATSConfig `mapstructure:"nats"`
	Listen string     `mapstructure:"listen"`
}

type NATSConfig struct {
	URL     string `mapstructure:"url"`
	Subject string `mapstructure:"subject"`
}

// Load reads configuration from an optional file and SEARCHMAP_* environment
// variables. path may be empty.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("map.center_lon", 0.0)
	v.SetDefault("map.center_lat", 0.0)
	v.SetDefault("map.zoom", 2.0)
	v.SetDefault("map.max_fit_zoom", 3.0)
	v.SetDefault("map.fit_duration", 500*time.Millisecond)
	v.SetDefault("map.tile_size", 64.0)
	v.SetDefault("map.graticule_step", 30.0)
	v.SetDefault("style.fallback_color", "#3399CC")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "searchmap.log")
	v.SetDefault("inbound.stdin", false)
	v.SetDefault("inbound.nats.url", "")
	v.SetDefault("inbound.nats.subject", "searchmap.selection")
	v.SetDefault("inbound.listen", "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		_ = v.ReadInConfig() // OK if missing
	}

	// SEARCHMAP_INBOUND_NATS_URL → inbound.nats.url
	v.SetEnvPrefix("SEARCHMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that configuration values are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Map.CenterLon < -180 || c.Map.CenterLon > 180 {
		errs = append(errs, fmt.Sprintf("map.center_lon must be -180..180, got %g", c.Map.CenterLon))
	}
	if c.Map.CenterLat < -85 || c.Map.CenterLat > 85 {
		errs = append(errs, fmt.Sprintf("map.center_lat must be -85..85, got %g", c.Map.CenterLat))
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 28 {
		errs = append(errs, fmt.Sprintf("map.zoom must be 0-28, got %g", c.Map.Zoom))
	}
	if c.Map.MaxFitZoom <= 0 || c.Map.MaxFitZoom > 28 {
		errs = append(errs, fmt.Sprintf("map.max_fit_zoom must be 0-28, got %g", c.Map.MaxFitZoom))
	}
	if c.Map.FitDuration < 0 {
		errs = append(errs, "map.fit_duration must not be negative")
	}
	if c.Map.TileSize <= 0 {
		errs = append(errs, "map.tile_size must be positive")
	}
	if c.Map.GraticuleStep <= 0 || c.Map.GraticuleStep > 90 {
		errs = append(errs, fmt.Sprintf("map.graticule_step must be in (0, 90], got %g", c.Map.GraticuleStep))
	}
	if _, err := style.ParseHex(c.Style.FallbackColor); err != nil {
		errs = append(errs, fmt.Sprintf("style.fallback_color: %v", err))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level must be debug|info|warn|error, got %q", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("log.format must be json|text, got %q", c.Log.Format))
	}
	if c.Inbound.NATS.URL != "" && c.Inbound.NATS.Subject == "" {
		errs = append(errs, "inbound.nats.subject is required when inbound.nats.url is set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
