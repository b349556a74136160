package config

import (
	"os"
	"testing"
)

func TestNormalizeEnvironment(t *testing.T) {
	tests := []struct {
		envValue string
		want     string
	}{
		{"development", "development"},
		{"DEVELOPMENT", "development"},
		{"staging", "staging"},
		{" Staging ", "staging"},
		{"production", "production"},
		{"PRODUCTION", "production"},
		{"", "development"}, // default
	}

	for _, tt := range tests {
		if got := NormalizeEnvironment(tt.envValue); got != tt.want {
			t.Errorf("NormalizeEnvironment(%q) = %v, want %v", tt.envValue, got, tt.want)
		}
	}
}

func TestIsProductionLike(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"production", true},
		{"STAGING", true},
		{"development", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsProductionLike(tt.env); got != tt.want {
			t.Errorf("IsProductionLike(%q) = %v, want %v", tt.env, got, tt.want)
		}
	}
}

func TestLoadWithValidation_UppercaseEnvironmentIsEnforced(t *testing.T) {
	envVarsToClean := []string{
		"ATTENDANCE_DATABASE_URL",
		"ATTENDANCE_DATABASE_HOST",
		"ATTENDANCE_SERVER_ENVIRONMENT",
		"ATTENDANCE_RABBITMQ_URL",
	}
	originals := make(map[string]string)
	for _, v := range envVarsToClean {
		originals[v] = os.Getenv(v)
		os.Unsetenv(v)
	}
	defer func() {
		for k, v := range originals {
			if v != "" {
				os.Setenv(k, v)
			}
		}
	}()

	os.Setenv("ATTENDANCE_SERVER_ENVIRONMENT", "PRODUCTION")

	if _, err := LoadWithValidation("admin-service"); err == nil {
		t.Error("LoadWithValidation() should reject localhost defaults in PRODUCTION")
	}

	cfg, err := Load("admin-service")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Environment != EnvProduction {
		t.Errorf("Server.Environment = %v, want production", cfg.Server.Environment)
	}
}
