package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantErr     bool
		errorString string
	}{
		{
			name: "valid config",
			config: Config{
				Port:         "8080",
				SQLiteDBPath: "./test.db",
				CacheSize:    64,
				CacheTTL:     time.Minute,
			},
			wantErr: false,
		},
		{
			name: "invalid port - non-numeric",
			config: Config{
				Port:         "abc",
				SQLiteDBPath: "./test.db",
				CacheSize:    64,
				CacheTTL:     time.Minute,
			},
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name: "invalid port - out of range",
			config: Config{
				Port:         "70000",
				SQLiteDBPath: "./test.db",
				CacheSize:    64,
				CacheTTL:     time.Minute,
			},
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name: "empty database path",
			config: Config{
				Port:      "8080",
				CacheSize: 64,
				CacheTTL:  time.Minute,
			},
			wantErr:     true,
			errorString: "database path cannot be empty",
		},
		{
			name: "cache size too small",
			config: Config{
				Port:         "8080",
				SQLiteDBPath: "./test.db",
				CacheSize:    0,
				CacheTTL:     time.Minute,
			},
			wantErr:     true,
			errorString: "invalid cache size 0",
		},
		{
			name: "cache TTL too short",
			config: Config{
				Port:         "8080",
				SQLiteDBPath: "./test.db",
				CacheSize:    64,
				CacheTTL:     time.Millisecond,
			},
			wantErr:     true,
			errorString: "invalid cache TTL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errorString) {
				t.Errorf("Validate() error = %q, should contain %q", err.Error(), tt.errorString)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "MINTLY_DB_PATH", "CACHE_SIZE", "CACHE_TTL"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8080" {
		t.Errorf("default port = %q, want 8080", cfg.Port)
	}
	if cfg.SQLiteDBPath != "./data/mintly.db" {
		t.Errorf("default db path = %q", cfg.SQLiteDBPath)
	}
	if cfg.CacheSize != 64 || cfg.CacheTTL != time.Minute {
		t.Errorf("default cache tuning = %d, %v", cfg.CacheSize, cfg.CacheTTL)
	}
}
