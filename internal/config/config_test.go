package config

import (
	"strings"
	"testing"
	"time"
)

// clearEnv изолирует тест от окружения машины и .env файла
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"BITUNIX_API_KEY", "BITUNIX_API_SECRET", "BITUNIX_API_SECRET_ENC",
		"SECRET_PASSPHRASE", "POLL_INTERVAL", "RETRY_DELAY",
		"SERVER_ENABLED", "SERVER_PORT", "DB_ENABLED",
	} {
		t.Setenv(k, "")
	}
}

func setCredentials(t *testing.T) {
	t.Helper()
	clearEnv(t)
	t.Setenv("BITUNIX_API_KEY", "test-key-12345")
	t.Setenv("BITUNIX_API_SECRET", "test-secret")
}

func TestLoadDefaults(t *testing.T) {
	setCredentials(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Exchange.BaseURL != "https://fapi.bitunix.com" {
		t.Errorf("BaseURL = %q", cfg.Exchange.BaseURL)
	}
	if cfg.Bot.PollInterval != 3*time.Second {
		t.Errorf("PollInterval = %v, want 3s", cfg.Bot.PollInterval)
	}
	if cfg.Bot.RetryDelay != 2*time.Second {
		t.Errorf("RetryDelay = %v, want 2s", cfg.Bot.RetryDelay)
	}
	if cfg.Server.Enabled {
		t.Error("status server must be disabled by default")
	}
	if cfg.Database.Enabled {
		t.Error("event journal must be disabled by default")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{
			name:    "missing api key",
			env:     map[string]string{"BITUNIX_API_SECRET": "s"},
			wantErr: true,
		},
		{
			name:    "missing secret entirely",
			env:     map[string]string{"BITUNIX_API_KEY": "k"},
			wantErr: true,
		},
		{
			name: "plain and encrypted secret are mutually exclusive",
			env: map[string]string{
				"BITUNIX_API_KEY":        "k",
				"BITUNIX_API_SECRET":     "s",
				"BITUNIX_API_SECRET_ENC": "deadbeef",
			},
			wantErr: true,
		},
		{
			name: "encrypted secret without passphrase",
			env: map[string]string{
				"BITUNIX_API_KEY":        "k",
				"BITUNIX_API_SECRET_ENC": "deadbeef",
			},
			wantErr: true,
		},
		{
			name: "encrypted secret with passphrase",
			env: map[string]string{
				"BITUNIX_API_KEY":        "k",
				"BITUNIX_API_SECRET_ENC": "deadbeef",
				"SECRET_PASSPHRASE":      "hunter2",
			},
			wantErr: false,
		},
		{
			name: "non-positive poll interval",
			env: map[string]string{
				"BITUNIX_API_KEY":    "k",
				"BITUNIX_API_SECRET": "s",
				"POLL_INTERVAL":      "-1s",
			},
			wantErr: true,
		},
		{
			name: "server port out of range",
			env: map[string]string{
				"BITUNIX_API_KEY":    "k",
				"BITUNIX_API_SECRET": "s",
				"SERVER_ENABLED":     "true",
				"SERVER_PORT":        "70000",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDSNWithoutPassword(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, Name: "stopguard", User: "u", Password: "secret", SSLMode: "disable"}
	dsn := d.DSNWithoutPassword()
	if dsn == "" {
		t.Fatal("empty DSN")
	}
	for _, frag := range []string{"host=db", "dbname=stopguard"} {
		if !strings.Contains(dsn, frag) {
			t.Errorf("DSN %q missing %q", dsn, frag)
		}
	}
	if strings.Contains(dsn, "secret") {
		t.Error("DSNWithoutPassword leaked the password")
	}
}
