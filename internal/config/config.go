package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AppName names the config directory and env prefix
const AppName = "pgtabs"

// Config holds all application configuration
type Config struct {
	General    GeneralConfig    `mapstructure:"general"`
	UI         UIConfig         `mapstructure:"ui"`
	Keys       KeysConfig       `mapstructure:"keys"`
	Connection ConnectionConfig `mapstructure:"connection"`
	Log        LogConfig        `mapstructure:"log"`
}

type GeneralConfig struct {
	AutoConnectLast bool   `mapstructure:"auto_connect_last"`
	DefaultLimit    int    `mapstructure:"default_limit"`
	DefaultSchema   string `mapstructure:"default_schema"`
	Locale          string `mapstructure:"locale"`
}

type UIConfig struct {
	Theme                string `mapstructure:"theme"`
	MouseEnabled         bool   `mapstructure:"mouse_enabled"`
	LoaderDelayMs        int    `mapstructure:"loader_delay_ms"`
	ConnectLoaderDelayMs int    `mapstructure:"connect_loader_delay_ms"`
	ShowTabShortcuts     bool   `mapstructure:"show_tab_shortcuts"`
}

// KeysConfig overrides the default bindings. Empty lists keep the defaults.
type KeysConfig struct {
	NextTab       []string `mapstructure:"next_tab"`
	PrevTab       []string `mapstructure:"prev_tab"`
	QuickSwitcher []string `mapstructure:"quick_switcher"`
	NewConnection []string `mapstructure:"new_connection"`
	CloseTab      []string `mapstructure:"close_tab"`
	LoginTab      []string `mapstructure:"login_tab"`
	Help          []string `mapstructure:"help"`
	NextTable     []string `mapstructure:"next_table"`
	PrevTable     []string `mapstructure:"prev_table"`
	CopyTableName []string `mapstructure:"copy_table_name"`
}

type ConnectionConfig struct {
	ConnectTimeoutMs int    `mapstructure:"connect_timeout_ms"`
	PoolMaxConns     int    `mapstructure:"pool_max_conns"`
	SSLMode          string `mapstructure:"ssl_mode"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// LoaderDelay returns the generic loader debounce
func (c *Config) LoaderDelay() time.Duration {
	return time.Duration(c.UI.LoaderDelayMs) * time.Millisecond
}

// ConnectLoaderDelay returns the debounce used while connecting
func (c *Config) ConnectLoaderDelay() time.Duration {
	return time.Duration(c.UI.ConnectLoaderDelayMs) * time.Millisecond
}

// ConnectTimeout returns the pool connect timeout
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.Connection.ConnectTimeoutMs) * time.Millisecond
}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		General: GeneralConfig{
			AutoConnectLast: false,
			DefaultLimit:    100,
			DefaultSchema:   "public",
			Locale:          "en",
		},
		UI: UIConfig{
			Theme:                "default",
			MouseEnabled:         true,
			LoaderDelayMs:        300,
			ConnectLoaderDelayMs: 500,
			ShowTabShortcuts:     true,
		},
		Connection: ConnectionConfig{
			ConnectTimeoutMs: 10000,
			PoolMaxConns:     5,
			SSLMode:          "prefer",
		},
		Log: LogConfig{
			Level: "info",
			File:  "pgtabs.log",
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := GetDefaults()
	v.SetDefault("general.auto_connect_last", d.General.AutoConnectLast)
	v.SetDefault("general.default_limit", d.General.DefaultLimit)
	v.SetDefault("general.default_schema", d.General.DefaultSchema)
	v.SetDefault("general.locale", d.General.Locale)
	v.SetDefault("ui.theme", d.UI.Theme)
	v.SetDefault("ui.mouse_enabled", d.UI.MouseEnabled)
	v.SetDefault("ui.loader_delay_ms", d.UI.LoaderDelayMs)
	v.SetDefault("ui.connect_loader_delay_ms", d.UI.ConnectLoaderDelayMs)
	v.SetDefault("ui.show_tab_shortcuts", d.UI.ShowTabShortcuts)
	v.SetDefault("connection.connect_timeout_ms", d.Connection.ConnectTimeoutMs)
	v.SetDefault("connection.pool_max_conns", d.Connection.PoolMaxConns)
	v.SetDefault("connection.ssl_mode", d.Connection.SSLMode)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
}

// Loader reads config.yaml and keeps the viper instance for hot reload
type Loader struct {
	v *viper.Viper
}

// NewLoader prepares a loader. An explicit file overrides the search paths.
func NewLoader(file string) *Loader {
	v := viper.New()
	v.SetConfigType("yaml")

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		// 1. User config directory
		if dir, err := GetConfigPath(); err == nil {
			v.AddConfigPath(dir)
		}
		// 2. Current directory
		v.AddConfigPath(".")
		// 3. Default config directory
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(AppName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return &Loader{v: v}
}

// Load reads the config file (it's okay if it doesn't exist, we have defaults)
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}
	return l.decode()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// Watch calls fn with the re-read config whenever the file changes.
// Decode failures are passed through so the caller can surface them.
func (l *Loader) Watch(fn func(*Config, error)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		fn(l.decode())
	})
	l.v.WatchConfig()
}

// File returns the config file in use, empty when running on defaults
func (l *Loader) File() string {
	return l.v.ConfigFileUsed()
}

// Load loads configuration from the default search paths
func Load() (*Config, error) {
	return NewLoader("").Load()
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}

// EnsureConfigPath returns the config directory, creating it if needed
func EnsureConfigPath() (string, error) {
	dir, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return dir, nil
}
