// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the collector, sync job and read API.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Config struct {
	YouTube  YouTubeConfig
	Storage  StorageConfig
	Batch    BatchConfig
	Database DatabaseConfig
	Server   ServerConfig
	Logging  LoggingConfig
}

// YouTubeConfig contains YouTube Data API configuration.
type YouTubeConfig struct {
	APIKey           string
	DailyQuota       int
	ThresholdPercent int
}

// StorageConfig selects and configures the channel document store.
//
// Backend is one of "local", "drive" or "memory". Local stores documents as
// files under Dir; drive stores them in the Google Drive folder FolderID.
type StorageConfig struct {
	Backend         string
	Dir             string
	FolderID        string
	CredentialsFile string
}

// BatchConfig contains batch-processing configuration.
type BatchConfig struct {
	ChannelDelay time.Duration
	ProgressFile string
}

// DatabaseConfig contains the Postgres connection configuration for the
// read-side KV table.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type DatabaseConfig struct {
	Host           string
	Name           string
	User           string
	Password       string
	Port           int
	MaxConnections int
	MinConnections int
	MaxIdleTime    time.Duration
	MaxLifetime    time.Duration
}

// ServerConfig contains HTTP server configuration for the read API.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
	CacheSizeBytes  int
	CacheTTL        time.Duration
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string
	File  string
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	// YouTube
	viper.SetDefault("youtube.apikey", "")
	viper.SetDefault("youtube.dailyquota", 10000)
	viper.SetDefault("youtube.thresholdpercent", 90)

	// Storage
	viper.SetDefault("storage.backend", "local")
	viper.SetDefault("storage.dir", "./data/channels")
	viper.SetDefault("storage.folderid", "root")
	viper.SetDefault("storage.credentialsfile", "")

	// Batch
	viper.SetDefault("batch.channeldelay", 1*time.Second)
	viper.SetDefault("batch.progressfile", "./data/progress.json")

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "channelstats")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.maxconnections", 10)
	viper.SetDefault("database.minconnections", 2)
	viper.SetDefault("database.maxidletime", 10*time.Minute)
	viper.SetDefault("database.maxlifetime", 1*time.Hour)

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.shutdowntimeout", 30*time.Second)
	viper.SetDefault("server.cachesizebytes", 32*1024*1024)
	viper.SetDefault("server.cachettl", 5*time.Minute)

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
}
