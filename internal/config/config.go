// Package config handles configuration management using Viper
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/bnema/wayloop/eventloop"
	"github.com/bnema/wayloop/window"
)

// Config represents the application configuration
type Config struct {
	// Defaults for the windows opened by the run command
	Window WindowConfig `mapstructure:"window" yaml:"window"`

	// Event loop tuning
	Loop LoopConfig `mapstructure:"loop" yaml:"loop"`

	Decorations DecorationsConfig `mapstructure:"decorations" yaml:"decorations"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// WindowConfig describes the windows to open. Zero sizes mean unset.
type WindowConfig struct {
	Title        string `mapstructure:"title" yaml:"title"`
	AppID        string `mapstructure:"app_id" yaml:"app_id"`
	Width        uint32 `mapstructure:"width" yaml:"width"`
	Height       uint32 `mapstructure:"height" yaml:"height"`
	MinWidth     uint32 `mapstructure:"min_width" yaml:"min_width"`
	MinHeight    uint32 `mapstructure:"min_height" yaml:"min_height"`
	MaxWidth     uint32 `mapstructure:"max_width" yaml:"max_width"`
	MaxHeight    uint32 `mapstructure:"max_height" yaml:"max_height"`
	Resizable    bool   `mapstructure:"resizable" yaml:"resizable"`
	Decorations  bool   `mapstructure:"decorations" yaml:"decorations"`
	HideTitlebar bool   `mapstructure:"hide_titlebar" yaml:"hide_titlebar"`
	Theme        string `mapstructure:"theme" yaml:"theme"` // auto, light or dark
	Transparent  bool   `mapstructure:"transparent" yaml:"transparent"`
	Maximized    bool   `mapstructure:"maximized" yaml:"maximized"`
	Fullscreen   bool   `mapstructure:"fullscreen" yaml:"fullscreen"`
	Count        int    `mapstructure:"count" yaml:"count"` // Number of windows to open
}

// LoopConfig contains event loop settings
type LoopConfig struct {
	DispatchTimeout time.Duration `mapstructure:"dispatch_timeout" yaml:"dispatch_timeout"` // 0 blocks until an event arrives
	EventBuffer     int           `mapstructure:"event_buffer" yaml:"event_buffer"`
}

// DecorationsConfig contains client-side decoration settings
type DecorationsConfig struct {
	ClientSide bool `mapstructure:"client_side" yaml:"client_side"` // Draw frames when the compositor does not
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level"` // Override LOG_LEVEL env var
}

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Window: WindowConfig{
			Title:       "wayloop",
			AppID:       "io.github.bnema.wayloop",
			Width:       800,
			Height:      600,
			Resizable:   true,
			Decorations: true,
			Theme:       "auto",
			Count:       1,
		},
		Loop: LoopConfig{
			DispatchTimeout: 0,
			EventBuffer:     256,
		},
		Decorations: DecorationsConfig{
			ClientSide: true,
		},
		Logging: LoggingConfig{
			LogLevel: "", // Empty means use LOG_LEVEL env var
		},
	}

	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("wayloop")
	viper.SetConfigType("toml")

	// If a specific path is set, use only that
	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
		if _, err := os.Stat(configPathOverride); os.IsNotExist(err) {
			// Nothing to read yet, config init may create it
			setDefaults()
			return load()
		}
	} else {
		if home := os.Getenv("HOME"); home != "" {
			viper.AddConfigPath(filepath.Join(home, ".config", "wayloop"))
		}
		viper.AddConfigPath(".") // Current directory (lowest priority)
	}

	setDefaults()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults
	}

	return load()
}

func load() error {
	cfg = &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	return nil
}

// Set defaults - need to set individual fields for proper merging
func setDefaults() {
	w := DefaultConfig.Window
	viper.SetDefault("window.title", w.Title)
	viper.SetDefault("window.app_id", w.AppID)
	viper.SetDefault("window.width", w.Width)
	viper.SetDefault("window.height", w.Height)
	viper.SetDefault("window.min_width", w.MinWidth)
	viper.SetDefault("window.min_height", w.MinHeight)
	viper.SetDefault("window.max_width", w.MaxWidth)
	viper.SetDefault("window.max_height", w.MaxHeight)
	viper.SetDefault("window.resizable", w.Resizable)
	viper.SetDefault("window.decorations", w.Decorations)
	viper.SetDefault("window.hide_titlebar", w.HideTitlebar)
	viper.SetDefault("window.theme", w.Theme)
	viper.SetDefault("window.transparent", w.Transparent)
	viper.SetDefault("window.maximized", w.Maximized)
	viper.SetDefault("window.fullscreen", w.Fullscreen)
	viper.SetDefault("window.count", w.Count)

	viper.SetDefault("loop.dispatch_timeout", DefaultConfig.Loop.DispatchTimeout)
	viper.SetDefault("loop.event_buffer", DefaultConfig.Loop.EventBuffer)

	viper.SetDefault("decorations.client_side", DefaultConfig.Decorations.ClientSide)

	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)
}

// Validate rejects settings the event loop cannot honour.
func (c *Config) Validate() error {
	switch c.Window.Theme {
	case "", "auto", "light", "dark":
	default:
		return fmt.Errorf("invalid window.theme %q: want auto, light or dark", c.Window.Theme)
	}
	if c.Window.Count < 0 {
		return fmt.Errorf("invalid window.count %d", c.Window.Count)
	}
	if c.Loop.DispatchTimeout < 0 {
		return fmt.Errorf("invalid loop.dispatch_timeout %s", c.Loop.DispatchTimeout)
	}
	if c.Loop.EventBuffer < 0 {
		return fmt.Errorf("invalid loop.event_buffer %d", c.Loop.EventBuffer)
	}
	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		// Return defaults if not initialized
		return &DefaultConfig
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	cfg = c
}

// Save saves the current configuration to file
func Save() error {
	configPath := GetConfigPath()

	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	// If override is set, use that
	if configPathOverride != "" {
		return configPathOverride
	}

	// Check if config file is already loaded
	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "wayloop.toml"
	}

	return filepath.Join(home, ".config", "wayloop", "wayloop.toml")
}

// WindowAttributes converts the window section into creation attributes.
func (c *Config) WindowAttributes() window.Attributes {
	w := c.Window
	attrs := window.DefaultAttributes().
		WithTitle(w.Title).
		WithResizable(w.Resizable).
		WithDecorations(w.Decorations).
		WithTitlebarHidden(w.HideTitlebar).
		WithTransparent(w.Transparent).
		WithMaximized(w.Maximized).
		WithFullscreen(w.Fullscreen).
		WithTheme(window.ParseTheme(w.Theme))
	if w.AppID != "" {
		attrs = attrs.WithAppID(w.AppID)
	}
	if w.Width > 0 && w.Height > 0 {
		attrs = attrs.WithSize(w.Width, w.Height)
	}
	if w.MinWidth > 0 && w.MinHeight > 0 {
		attrs = attrs.WithMinSize(w.MinWidth, w.MinHeight)
	}
	if w.MaxWidth > 0 && w.MaxHeight > 0 {
		attrs = attrs.WithMaxSize(w.MaxWidth, w.MaxHeight)
	}
	return attrs
}

// LoopOptions returns the event loop options matching the loop and
// decorations sections.
func (c *Config) LoopOptions() []eventloop.Option {
	return []eventloop.Option{
		eventloop.WithDispatchTimeout(c.Loop.DispatchTimeout),
		eventloop.WithClientDecorations(c.Decorations.ClientSide),
	}
}
