package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultRunAddress = ":8080"
	defaultLogLevel   = "info"
	defaultEnv        = "local"
	defaultTokenTTL   = 24 * time.Hour
	defaultMigrations = "migrations"
)

type DB struct {
	DatabaseURI string
	Migrations  string
}

type Server struct {
	RunAddress string
}

type Auth struct {
	Secret   string
	TokenTTL time.Duration
}

type Config struct {
	Env    string
	DB     DB
	Server Server
	Auth   Auth
}

// MustLoad reads the server configuration from the environment, with an
// optional .env file, and panics on missing required settings.
func MustLoad() *Config {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("failed to load .env file: %v\n", err)
		}
	}

	viper.AutomaticEnv()

	viper.SetDefault("RUN_ADDRESS", defaultRunAddress)
	viper.SetDefault("LOG_LEVEL", defaultLogLevel)
	viper.SetDefault("APP_ENV", defaultEnv)
	viper.SetDefault("MIGRATIONS_PATH", defaultMigrations)
	viper.SetDefault("TOKEN_TTL_HOURS", 24)

	config := &Config{
		Env: viper.GetString("APP_ENV"),
		DB: DB{
			DatabaseURI: viper.GetString("DATABASE_URI"),
			Migrations:  viper.GetString("MIGRATIONS_PATH"),
		},
		Server: Server{
			RunAddress: viper.GetString("RUN_ADDRESS"),
		},
		Auth: Auth{
			Secret:   viper.GetString("JWT_SECRET"),
			TokenTTL: time.Duration(viper.GetInt("TOKEN_TTL_HOURS")) * time.Hour,
		},
	}

	if config.DB.DatabaseURI == "" {
		panic("DATABASE_URI is required")
	}
	if config.Auth.Secret == "" {
		panic("JWT_SECRET is required")
	}
	if config.Auth.TokenTTL <= 0 {
		config.Auth.TokenTTL = defaultTokenTTL
	}

	return config
}
