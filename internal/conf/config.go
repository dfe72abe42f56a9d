// config.go: defines the Settings struct and configuration loading
package conf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

// Settings holds the full application configuration, populated from the
// config file, environment variables and command line flags via viper.
type Settings struct {
	Debug bool // true to enable debug logging

	Version   string // build version, injected at link time
	BuildDate string // build date, injected at link time

	Main struct {
		Name string    // node name, included in logs
		Log  LogConfig // application log settings
	}

	Model ModelSettings // classifier model settings

	WebServer struct {
		Debug     bool   // true to enable HTTP debug logging
		Port      string // port to listen on
		BodyLimit string // request body size limit, e.g. "5M"
	}

	Output struct {
		SQLite SQLiteSettings // SQLite database settings
		MySQL  MySQLSettings  // MySQL database settings

		// Timeout bounds individual storage operations, in seconds.
		Timeout int
	}

	ImageStore ImageStoreSettings // submitted image persistence
}

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled bool   // true to enable this log
	Path    string // path to log file
}

// ModelSettings holds the classifier model configuration
type ModelSettings struct {
	Path    string // path to the TensorFlow Lite model file
	Threads int    // number of CPU threads for inference, 0 to use all
	Timeout int    // inference timeout, in seconds
}

// SQLiteSettings holds SQLite database settings
type SQLiteSettings struct {
	Enabled bool   // true to enable SQLite
	Path    string // path to database file
}

// MySQLSettings holds MySQL database settings
type MySQLSettings struct {
	Enabled  bool   // true to enable MySQL
	Username string // MySQL username
	Password string // MySQL password
	Database string // MySQL database name
	Host     string // MySQL host
	Port     string // MySQL port
}

// ImageStoreSettings controls persistence of submitted images
type ImageStoreSettings struct {
	Enabled  bool   // true to persist submitted images
	Required bool   // true to fail the prediction when image persistence fails
	Type     string // "disk" or "minio"
	Path     string // directory for the disk backend
	Minio    MinioSettings
}

// MinioSettings holds the MinIO object store connection settings
type MinioSettings struct {
	Endpoint  string // server endpoint, host:port
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into Settings.
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

// Setting returns the current settings instance, or nil before Load.
func Setting() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	// Set default values for each configuration parameter,
	// function defined in defaults.go
	setDefaultConfig()

	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// No config file found, run on defaults
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// GetDefaultConfigPaths returns the list of directories searched for config.yaml,
// in order of precedence.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user home directory: %w", err)
	}

	return []string{
		".",
		filepath.Join(homeDir, ".config", "digitnet-go"),
		"/etc/digitnet-go",
	}, nil
}
