package config

import (
	"os"
	"testing"
	"time"

	"github.com/dennisdiepolder/monti/kpiquery/internal/dataset"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "default values",
			env:  map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "5000" {
					t.Errorf("expected port 5000, got %s", cfg.Port)
				}
				if cfg.LogLevel != "info" {
					t.Errorf("expected log level info, got %s", cfg.LogLevel)
				}
				if cfg.WSReadTimeout != 60*time.Second {
					t.Errorf("expected WSReadTimeout 60s, got %v", cfg.WSReadTimeout)
				}
				if cfg.MaxRows != 500000 {
					t.Errorf("expected MaxRows 500000, got %d", cfg.MaxRows)
				}
				if cfg.AuthEnabled {
					t.Error("expected auth to be disabled by default")
				}
				if cfg.Source.Kind != dataset.SourceFile || cfg.Source.FilePath != "ejemplo.xlsx" {
					t.Errorf("unexpected source %+v", cfg.Source)
				}
				if cfg.ReloadSchedule != "" || cfg.VocabularyFile != "" {
					t.Error("expected no reload schedule and no vocabulary file")
				}
			},
		},
		{
			name: "custom values",
			env: map[string]string{
				"PORT":             "9000",
				"LOG_LEVEL":        "debug",
				"WS_READ_TIMEOUT":  "30",
				"WS_WRITE_TIMEOUT": "5",
				"ALLOWED_ORIGINS":  "http://example.com, http://test.com",
				"DATA_SOURCE":      "DynamoDB",
				"DYNAMO_MODE":      "local",
				"MAX_ROWS":         "1000",
				"AUTH_ENABLED":     "true",
				"RELOAD_SCHEDULE":  "@every 15m",
				"VOCABULARY_FILE":  "vocabulario.yaml",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "9000" {
					t.Errorf("expected port 9000, got %s", cfg.Port)
				}
				if cfg.WSWriteTimeout != 5*time.Second {
					t.Errorf("expected WSWriteTimeout 5s, got %v", cfg.WSWriteTimeout)
				}
				if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://test.com" {
					t.Errorf("unexpected allowed origins %v", cfg.AllowedOrigins)
				}
				if cfg.Source.Kind != dataset.SourceDynamo || cfg.Source.DynamoMode != dataset.DynamoModeLocal {
					t.Errorf("unexpected source %+v", cfg.Source)
				}
				if cfg.MaxRows != 1000 || !cfg.AuthEnabled {
					t.Errorf("unexpected MaxRows=%d AuthEnabled=%v", cfg.MaxRows, cfg.AuthEnabled)
				}
				if cfg.ReloadSchedule != "@every 15m" || cfg.VocabularyFile != "vocabulario.yaml" {
					t.Errorf("unexpected schedule %q or vocabulary %q", cfg.ReloadSchedule, cfg.VocabularyFile)
				}
			},
		},
		{
			name: "invalid WS_READ_TIMEOUT",
			env: map[string]string{
				"WS_READ_TIMEOUT": "invalid",
			},
			wantErr: true,
		},
		{
			name: "invalid WS_WRITE_TIMEOUT",
			env: map[string]string{
				"WS_WRITE_TIMEOUT": "invalid",
			},
			wantErr: true,
		},
		{
			name:    "negative MAX_ROWS",
			env:     map[string]string{"MAX_ROWS": "-1"},
			wantErr: true,
		},
		{
			name:    "invalid AUTH_ENABLED",
			env:     map[string]string{"AUTH_ENABLED": "maybe"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestWebSocketConstants(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.PongWait != cfg.WSReadTimeout {
		t.Errorf("PongWait (%v) should equal WSReadTimeout (%v)", cfg.PongWait, cfg.WSReadTimeout)
	}
	if cfg.PingPeriod >= cfg.PongWait {
		t.Errorf("PingPeriod (%v) should be less than PongWait (%v)", cfg.PingPeriod, cfg.PongWait)
	}
	if cfg.WriteWait != cfg.WSWriteTimeout {
		t.Errorf("WriteWait (%v) should equal WSWriteTimeout (%v)", cfg.WriteWait, cfg.WSWriteTimeout)
	}
	if cfg.MaxMessageSize <= 0 {
		t.Errorf("MaxMessageSize should be positive, got %d", cfg.MaxMessageSize)
	}
}
