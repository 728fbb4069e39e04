package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		setup   func()
		cleanup func()
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "load with defaults (no config file)",
			setup: func() {
				viper.Reset()
			},
			cleanup: func() {},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.Port != 8080 {
					t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
				}
				if cfg.YouTube.DailyQuota != 10000 {
					t.Errorf("YouTube.DailyQuota = %d, want 10000", cfg.YouTube.DailyQuota)
				}
				if cfg.YouTube.ThresholdPercent != 90 {
					t.Errorf("YouTube.ThresholdPercent = %d, want 90", cfg.YouTube.ThresholdPercent)
				}
				if cfg.Storage.Backend != "local" {
					t.Errorf("Storage.Backend = %s, want local", cfg.Storage.Backend)
				}
				if cfg.Batch.ChannelDelay != time.Second {
					t.Errorf("Batch.ChannelDelay = %v, want 1s", cfg.Batch.ChannelDelay)
				}
				if cfg.Database.Host != "localhost" {
					t.Errorf("Database.Host = %s, want localhost", cfg.Database.Host)
				}
				if cfg.Database.Port != 5432 {
					t.Errorf("Database.Port = %d, want 5432", cfg.Database.Port)
				}
			},
		},
		{
			name: "load with environment variables",
			setup: func() {
				viper.Reset()
				viper.SetEnvPrefix("APP")
				viper.AutomaticEnv()
				os.Setenv("APP_SERVER_PORT", "9090")
				os.Setenv("APP_YOUTUBE_APIKEY", "test-key")
				os.Setenv("APP_STORAGE_BACKEND", "drive")
				os.Setenv("APP_STORAGE_FOLDERID", "folder123")
				// Manually bind env vars since AutomaticEnv doesn't work with nested keys
				viper.BindEnv("server.port", "APP_SERVER_PORT")
				viper.BindEnv("youtube.apikey", "APP_YOUTUBE_APIKEY")
				viper.BindEnv("storage.backend", "APP_STORAGE_BACKEND")
				viper.BindEnv("storage.folderid", "APP_STORAGE_FOLDERID")
			},
			cleanup: func() {
				os.Unsetenv("APP_SERVER_PORT")
				os.Unsetenv("APP_YOUTUBE_APIKEY")
				os.Unsetenv("APP_STORAGE_BACKEND")
				os.Unsetenv("APP_STORAGE_FOLDERID")
				viper.Reset()
			},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.Port != 9090 {
					t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
				}
				if cfg.YouTube.APIKey != "test-key" {
					t.Errorf("YouTube.APIKey = %s, want test-key", cfg.YouTube.APIKey)
				}
				if cfg.Storage.Backend != "drive" {
					t.Errorf("Storage.Backend = %s, want drive", cfg.Storage.Backend)
				}
				if cfg.Storage.FolderID != "folder123" {
					t.Errorf("Storage.FolderID = %s, want folder123", cfg.Storage.FolderID)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.cleanup()

			cfg, err := Load()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}
