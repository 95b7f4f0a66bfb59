package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "")
	t.Setenv("ACCESS_TOKEN_MAX_AGE", "not-a-number")
	t.Setenv("MONGO_DB", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.StoreDriver != DriverPostgres {
		t.Errorf("StoreDriver = %q, want %q", cfg.StoreDriver, DriverPostgres)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("RequestTimeout = %v, want 15s", cfg.RequestTimeout)
	}
	if cfg.AccessTokenMaxAge != 900 {
		t.Errorf("AccessTokenMaxAge = %d, want 900", cfg.AccessTokenMaxAge)
	}
	if cfg.MongoDB != "food" {
		t.Errorf("MongoDB = %q, want food", cfg.MongoDB)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", DriverMemory)
	t.Setenv("WORKER_COUNT", "4")
	t.Setenv("RANKING_CACHE_TTL_SECONDS", "60")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.StoreDriver != DriverMemory {
		t.Errorf("StoreDriver = %q, want memory", cfg.StoreDriver)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("WorkerCount = %d, want 4", cfg.WorkerCount)
	}
	if cfg.RankingCacheTTL != time.Minute {
		t.Errorf("RankingCacheTTL = %v, want 1m", cfg.RankingCacheTTL)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{JWTSecret: "s", StoreDriver: DriverMongo}, false},
		{"missing secret", Config{StoreDriver: DriverMemory}, true},
		{"unknown driver", Config{JWTSecret: "s", StoreDriver: "sqlite"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMediaEnabled(t *testing.T) {
	cfg := Config{R2AccountID: "a", R2AccessKeyID: "b", R2SecretAccessKey: "c", R2BucketName: "d"}
	if cfg.MediaEnabled() {
		t.Error("MediaEnabled() = true without public URL")
	}
	cfg.R2PublicURL = "https://cdn.example.com"
	if !cfg.MediaEnabled() {
		t.Error("MediaEnabled() = false with complete R2 config")
	}
}
