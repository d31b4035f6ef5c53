package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerAddress = "localhost:8080"
	defaultLogLevel      = "info"
	defaultEnv           = "local"
	defaultStorageMode   = ModeEmbedded
	defaultConfigDir     = ".cogniflow"
)

// Storage modes. Picked once at startup; there is no runtime switching and
// no data migration between modes.
const (
	ModeEmbedded = "embedded"
	ModeRemote   = "remote"
)

type Backup struct {
	Enabled         bool   `mapstructure:"backup_enabled"`
	IntervalMinutes int    `mapstructure:"backup_interval_minutes"`
	MaxBackups      int    `mapstructure:"backup_max_backups"`
	AutoDownload    bool   `mapstructure:"backup_auto_download"`
	DownloadDir     string `mapstructure:"backup_download_dir"`
}

type Config struct {
	Env           string `mapstructure:"app_env"`
	StorageMode   string `mapstructure:"storage_mode"`
	ServerAddress string `mapstructure:"server_address"`
	LogLevel      string `mapstructure:"log_level"`
	ConfigDir     string `mapstructure:"config_dir"`
	TokenPath     string `mapstructure:"token_path"`
	DataPath      string `mapstructure:"data_path"`
	EnableTLS     bool   `mapstructure:"enable_tls"`

	Backup Backup `mapstructure:",squash"`
}

// MustLoad reads the client configuration from the environment, with an
// optional .env file, and panics on invalid settings.
func MustLoad() *Config {
	envPath := ".env"
	if _, err := os.Stat(envPath); os.IsNotExist(err) {
		envPath = "../.env"
	}
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Printf("failed to load .env file: %v\n", err)
		}
	}

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", defaultEnv)
	viper.SetDefault("STORAGE_MODE", defaultStorageMode)
	viper.SetDefault("SERVER_ADDRESS", defaultServerAddress)
	viper.SetDefault("LOG_LEVEL", defaultLogLevel)
	viper.SetDefault("CONFIG_DIR", defaultConfigDir)
	viper.SetDefault("ENABLE_TLS", false)
	viper.SetDefault("BACKUP_ENABLED", true)
	viper.SetDefault("BACKUP_INTERVAL_MINUTES", 60)
	viper.SetDefault("BACKUP_MAX_BACKUPS", 10)
	viper.SetDefault("BACKUP_AUTO_DOWNLOAD", false)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := viper.GetString("CONFIG_DIR")
	if configDir == defaultConfigDir {
		configDir = filepath.Join(homeDir, configDir)
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		fmt.Printf("failed to create config directory: %v\n", err)
	}

	downloadDir := viper.GetString("BACKUP_DOWNLOAD_DIR")
	if downloadDir == "" {
		downloadDir = filepath.Join(configDir, "backups")
	}

	config := &Config{
		Env:           viper.GetString("APP_ENV"),
		StorageMode:   viper.GetString("STORAGE_MODE"),
		ServerAddress: viper.GetString("SERVER_ADDRESS"),
		LogLevel:      viper.GetString("LOG_LEVEL"),
		ConfigDir:     configDir,
		TokenPath:     filepath.Join(configDir, "session.json"),
		DataPath:      filepath.Join(configDir, "data.db"),
		EnableTLS:     viper.GetBool("ENABLE_TLS"),
		Backup: Backup{
			Enabled:         viper.GetBool("BACKUP_ENABLED"),
			IntervalMinutes: viper.GetInt("BACKUP_INTERVAL_MINUTES"),
			MaxBackups:      viper.GetInt("BACKUP_MAX_BACKUPS"),
			AutoDownload:    viper.GetBool("BACKUP_AUTO_DOWNLOAD"),
			DownloadDir:     downloadDir,
		},
	}

	if err := config.validate(); err != nil {
		panic(fmt.Sprintf("invalid configuration: %v", err))
	}

	return config
}

func (c *Config) validate() error {
	if c.StorageMode != ModeEmbedded && c.StorageMode != ModeRemote {
		return fmt.Errorf("storage_mode must be %q or %q, got %q", ModeEmbedded, ModeRemote, c.StorageMode)
	}
	if c.StorageMode == ModeRemote && c.ServerAddress == "" {
		return fmt.Errorf("server_address cannot be empty in remote mode")
	}
	if c.Backup.IntervalMinutes <= 0 {
		return fmt.Errorf("backup_interval_minutes must be positive")
	}
	return nil
}

func (c *Config) IsRemote() bool { return c.StorageMode == ModeRemote }

func (c *Config) IsProd() bool { return c.Env == "prod" }

func (c *Config) IsDev() bool { return c.Env == "dev" }

func (c *Config) IsLocal() bool { return c.Env == "local" || c.Env == "" }
