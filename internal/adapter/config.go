package adapter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/mmcdole/atelier/internal/domain"
	"github.com/mmcdole/atelier/internal/favorites"
	"github.com/spf13/viper"
)

const envPrefix = "ATELIER"

// configMu serializes access to the global viper instance between the
// session writer and the file watcher.
var configMu sync.Mutex

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Session   SessionConfig   `mapstructure:"session"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Sync      SyncConfig      `mapstructure:"sync"`
	UI        UIConfig        `mapstructure:"ui"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	DevServer DevServerConfig `mapstructure:"devserver"`
}

// ServerConfig points at the museum API
type ServerConfig struct {
	URL     string `mapstructure:"url"`      // API base, e.g. http://localhost:3000/api
	SiteURL string `mapstructure:"site_url"` // public gallery used for share links
}

// SessionConfig is the persisted sign-in
type SessionConfig struct {
	Token    string `mapstructure:"token"`
	UserID   string `mapstructure:"user_id"`
	Username string `mapstructure:"username"`
	Email    string `mapstructure:"email"`
}

// CacheConfig holds local storage configuration
type CacheConfig struct {
	Dir string `mapstructure:"dir"`
}

// SyncConfig tunes the background remote calls
type SyncConfig struct {
	Workers   int           `mapstructure:"workers"`
	QueueSize int           `mapstructure:"queue_size"`
	RateLimit float64       `mapstructure:"rate_limit"` // calls per second, 0 = unlimited
	Timeout   time.Duration `mapstructure:"timeout"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	DefaultView     string `mapstructure:"default_view"` // "gallery" or "favorites"
	DefaultSort     string `mapstructure:"default_sort"`
	ConfirmRemovals bool   `mapstructure:"confirm_removals"`
	OpenCommand     string `mapstructure:"open_command"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"` // "-" or "stderr" logs to the terminal
	Level string `mapstructure:"level"`
}

// DevServerConfig configures `atelier serve`
type DevServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:     "http://localhost:3000/api",
			SiteURL: "http://localhost:3000",
		},
		Cache: CacheConfig{
			Dir: defaultCachePath(),
		},
		Sync: SyncConfig{
			Workers:   2,
			QueueSize: 64,
			RateLimit: 5,
			Timeout:   15 * time.Second,
		},
		UI: UIConfig{
			DefaultView:     "gallery",
			DefaultSort:     string(favorites.SortNewest),
			ConfirmRemovals: true,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
		DevServer: DevServerConfig{
			Addr:           ":3000",
			AllowedOrigins: []string{"*"},
		},
	}
}

// Credentials returns the persisted session
func (c *Config) Credentials() domain.Credentials {
	return domain.Credentials{
		Token: c.Session.Token,
		User: domain.User{
			ID:       c.Session.UserID,
			Email:    c.Session.Email,
			Username: c.Session.Username,
		},
	}
}

// DispatcherConfig maps the sync section onto the favorites dispatcher
func (c *Config) DispatcherConfig() favorites.DispatcherConfig {
	return favorites.DispatcherConfig{
		Workers:   c.Sync.Workers,
		QueueSize: c.Sync.QueueSize,
		RateLimit: c.Sync.RateLimit,
		Timeout:   c.Sync.Timeout,
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "atelier", "atelier.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "atelier", "atelier.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "atelier")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "atelier")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "atelier", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "atelier", "cache")
	}
}

// setDefaults registers every key so environment overrides reach Unmarshal
func setDefaults(cfg *Config) {
	viper.SetDefault("server.url", cfg.Server.URL)
	viper.SetDefault("server.site_url", cfg.Server.SiteURL)
	viper.SetDefault("session.token", "")
	viper.SetDefault("session.user_id", "")
	viper.SetDefault("session.username", "")
	viper.SetDefault("session.email", "")
	viper.SetDefault("cache.dir", cfg.Cache.Dir)
	viper.SetDefault("sync.workers", cfg.Sync.Workers)
	viper.SetDefault("sync.queue_size", cfg.Sync.QueueSize)
	viper.SetDefault("sync.rate_limit", cfg.Sync.RateLimit)
	viper.SetDefault("sync.timeout", cfg.Sync.Timeout)
	viper.SetDefault("ui.default_view", cfg.UI.DefaultView)
	viper.SetDefault("ui.default_sort", cfg.UI.DefaultSort)
	viper.SetDefault("ui.confirm_removals", cfg.UI.ConfirmRemovals)
	viper.SetDefault("ui.open_command", "")
	viper.SetDefault("logging.file", cfg.Logging.File)
	viper.SetDefault("logging.level", cfg.Logging.Level)
	viper.SetDefault("devserver.addr", cfg.DevServer.Addr)
	viper.SetDefault("devserver.allowed_origins", cfg.DevServer.AllowedOrigins)
}

// LoadConfig loads configuration from file, .env and environment.
// An empty configFile searches the default locations.
func LoadConfig(configFile string) (*Config, error) {
	configMu.Lock()
	defer configMu.Unlock()

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	cfg := DefaultConfig()
	setDefaults(cfg)

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(defaultConfigPath())
		viper.AddConfigPath(".")
	}

	// ATELIER_SERVER_URL overrides server.url
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(configFile != "" && errors.Is(err, fs.ErrNotExist)) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// configFilePath is where writes go: the file that was loaded, or the
// default location when none existed
func configFilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return filepath.Join(defaultConfigPath(), "config.yaml")
}

func writeConfig() error {
	configFile := configFilePath()
	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveSession persists the signed-in user and token
func SaveSession(creds domain.Credentials) error {
	configMu.Lock()
	defer configMu.Unlock()

	viper.Set("session.token", creds.Token)
	viper.Set("session.user_id", creds.User.ID)
	viper.Set("session.username", creds.User.Username)
	viper.Set("session.email", creds.User.Email)
	return writeConfig()
}

// ClearSession removes the persisted sign-in while preserving other settings
func ClearSession() error {
	return SaveSession(domain.Credentials{})
}

// SessionStore persists the session in the config file
type SessionStore struct{}

func (SessionStore) SaveSession(creds domain.Credentials) error { return SaveSession(creds) }
func (SessionStore) ClearSession() error                         { return ClearSession() }

// WatchConfig calls onChange with the reloaded configuration whenever the
// config file changes on disk, e.g. a sign-in from another terminal.
func WatchConfig(onChange func(*Config)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		configMu.Lock()
		cfg := DefaultConfig()
		err := viper.Unmarshal(cfg)
		configMu.Unlock()
		if err != nil {
			return
		}
		onChange(cfg)
	})
	viper.WatchConfig()
}

// ClearCache removes all cached data under dir
func ClearCache(dir string) error {
	if dir == "" {
		dir = defaultCachePath()
	}
	if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// GetCachePath returns the default cache directory path
func GetCachePath() string {
	return defaultCachePath()
}
