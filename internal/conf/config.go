// Package conf holds the configuration for the denoise processor library.
// It defines the settings struct and the functions to load and access it.
package conf

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// LogRotationType defines the strategy for log file rotation.
type LogRotationType string

const (
	RotationDaily  LogRotationType = "daily"
	RotationWeekly LogRotationType = "weekly"
	RotationSize   LogRotationType = "size"
)

// LogConfig contains settings for application log files.
type LogConfig struct {
	Enabled  bool            // true to enable file logging
	Path     string          // path to log file
	Rotation LogRotationType // rotation type, daily, weekly or size
	MaxSize  int64           // max log file size in bytes for size rotation
}

// MainSettings contains process-level settings.
type MainSettings struct {
	Name  string    // instance name, used in logs
	Debug bool      // true to enable debug logging
	Log   LogConfig // log settings
}

// AudioSettings contains settings for the real-time audio path.
type AudioSettings struct {
	SampleRate       int // sample rate of the processed stream, Hz
	SuppressionLevel int // initial suppression intensity, 0..100
}

// AssetSettings controls where the processor module and model weights are
// fetched from. An empty BaseURL means the built-in CDN default.
type AssetSettings struct {
	BaseURL        string // override for the asset base location, defines the cache key
	TimeoutSeconds int    // per-fetch timeout, 0 uses the http client default
	UserAgent      string // User-Agent sent on asset fetches
}

// Settings is the root configuration for the library.
type Settings struct {
	Main   MainSettings
	Audio  AudioSettings
	Assets AssetSettings
}

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment into a Settings
// instance and makes it the active one.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the
// configuration file if one exists. A missing file is not an error, the
// defaults simply stay in effect.
func initViper() error {
	viper.SetConfigName("denoise")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/denoise-go")
	viper.SetEnvPrefix("denoise")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}
	return nil
}

// Setting returns the current settings instance, loading the configuration
// file and environment on first use if Load has not been called. A load
// failure falls back to the built-in defaults.
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				slog.Warn("failed to load configuration, using defaults", "error", err)
				settingsMutex.Lock()
				settingsInstance = defaultSettings()
				settingsMutex.Unlock()
			}
		}
	})
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// GetSettings returns the active settings instance or nil if none loaded.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}
