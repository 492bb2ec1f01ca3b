// Package config loads the energydash server and CLI configuration.
// Values come from defaults, an optional YAML file and ENERGYDASH_*
// environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/energyconsortium/energydash-go/pkg/energydash"
	"github.com/energyconsortium/energydash-go/pkg/energydash/render"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. ENERGYDASH_SERVER_PORT.
const EnvPrefix = "ENERGYDASH"

// Config represents the complete application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"  yaml:"server"`
	Render  RenderConfig  `mapstructure:"render"  yaml:"render"`
	Export  ExportConfig  `mapstructure:"export"  yaml:"export"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RenderConfig holds panel surface settings.
type RenderConfig struct {
	Width            int    `mapstructure:"width"             yaml:"width"`
	Height           int    `mapstructure:"height"            yaml:"height"`
	FullscreenWidth  int    `mapstructure:"fullscreen_width"  yaml:"fullscreen_width"`
	FullscreenHeight int    `mapstructure:"fullscreen_height" yaml:"fullscreen_height"`
	Theme            string `mapstructure:"theme"             yaml:"theme"` // "light" or "dark"
	EmbedChart       bool   `mapstructure:"embed_chart"       yaml:"embed_chart"`
}

// ExportConfig holds export settings.
type ExportConfig struct {
	Strict    bool   `mapstructure:"strict"     yaml:"strict"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"` // "debug", "info" or "error"
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml
//  2. ~/.energydash/config.yaml
//  3. /etc/energydash/config.yaml
//
// A missing config file is not an error.
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".energydash"))
	v.AddConfigPath("/etc/energydash")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := energydash.DefaultOptions()

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("render.width", def.Width)
	v.SetDefault("render.height", def.Height)
	v.SetDefault("render.fullscreen_width", def.FullscreenWidth)
	v.SetDefault("render.fullscreen_height", def.FullscreenHeight)
	v.SetDefault("render.theme", def.Theme)
	v.SetDefault("render.embed_chart", true)

	v.SetDefault("export.strict", false)
	v.SetDefault("export.output_dir", ".")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.prefix", "energydash: ")
}

// Validate checks value ranges that viper cannot express.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("render size %dx%d must be positive", c.Render.Width, c.Render.Height)
	}
	if c.Render.FullscreenWidth < c.Render.Width || c.Render.FullscreenHeight < c.Render.Height {
		return fmt.Errorf("render fullscreen size %dx%d is smaller than %dx%d",
			c.Render.FullscreenWidth, c.Render.FullscreenHeight, c.Render.Width, c.Render.Height)
	}
	if _, err := render.ThemeByName(c.Render.Theme); err != nil {
		return fmt.Errorf("render.theme: %w", err)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "error":
	default:
		return fmt.Errorf("logging.level %q must be debug, info or error", c.Logging.Level)
	}
	return nil
}

// Logger returns a logger writing to w. The "error" level discards the
// lifecycle messages; "debug" adds source locations.
func (c *Config) Logger(w io.Writer) *log.Logger {
	switch strings.ToLower(c.Logging.Level) {
	case "error":
		return log.New(io.Discard, "", 0)
	case "debug":
		return log.New(w, c.Logging.Prefix, log.LstdFlags|log.Lshortfile)
	}
	return log.New(w, c.Logging.Prefix, log.LstdFlags)
}

// DashboardOptions converts the render and export sections.
func (c *Config) DashboardOptions(logger *log.Logger) energydash.Options {
	return energydash.Options{
		Width:            c.Render.Width,
		Height:           c.Render.Height,
		FullscreenWidth:  c.Render.FullscreenWidth,
		FullscreenHeight: c.Render.FullscreenHeight,
		Theme:            c.Render.Theme,
		Strict:           c.Export.Strict,
		EmbedChart:       c.Render.EmbedChart,
		Logger:           logger,
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
