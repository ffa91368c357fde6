package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		check   func(*Config) bool
	}{
		{
			name: "loads with all vars set",
			envVars: map[string]string{
				"PORT":                      "8080",
				"ENV":                       "production",
				"DATABASE_URL":              "postgres://localhost/sentinela",
				"REDIS_ADDR":                "redis:6379",
				"AMQP_URL":                  "amqp://broker:5672/",
				"SPEED_VIOLATION_THRESHOLD": "120",
			},
			wantErr: false,
			check: func(c *Config) bool {
				return c.Port == 8080 &&
					c.Environment == "production" &&
					c.DatabaseURL == "postgres://localhost/sentinela" &&
					c.RedisAddr == "redis:6379" &&
					c.AMQPURL == "amqp://broker:5672/" &&
					c.SpeedThresholdKmh == 120
			},
		},
		{
			name: "uses defaults when optional vars missing",
			envVars: map[string]string{
				"DATABASE_URL": "postgres://localhost/sentinela",
			},
			wantErr: false,
			check: func(c *Config) bool {
				return c.Port == 8000 &&
					c.Environment == "development" &&
					c.ExchangeName == "iot_events_exchange" &&
					c.QueueName == "event_processing_queue" &&
					c.RoutingKey == "event.new" &&
					c.SensorCacheTTL == 600*time.Second &&
					c.AuthorizedUsersTTL == 3600*time.Second &&
					c.SpeedThresholdKmh == 90 &&
					c.AfterHoursStart == 18 &&
					c.AfterHoursEnd == 6 &&
					c.EnableSeeding &&
					len(c.RestrictedZones) == 4
			},
		},
		{
			name: "custom restricted zones",
			envVars: map[string]string{
				"DATABASE_URL":     "postgres://localhost/sentinela",
				"RESTRICTED_ZONES": "Vault,Server Room",
			},
			wantErr: false,
			check: func(c *Config) bool {
				return len(c.RestrictedZones) == 2 &&
					c.RestrictedZones[0] == "Vault" &&
					c.RestrictedZones[1] == "Server Room"
			},
		},
		{
			name:    "fails when DATABASE_URL missing",
			envVars: map[string]string{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			// Set test environment variables
			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Load() unexpected error: %v", err)
				return
			}

			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("Load() config check failed, got: %+v", cfg)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"development", "development", true},
		{"production", "production", false},
		{"staging", "staging", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Environment: tt.env}
			if got := c.IsDevelopment(); got != tt.want {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"production", "production", true},
		{"development", "development", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Environment: tt.env}
			if got := c.IsProduction(); got != tt.want {
				t.Errorf("IsProduction() = %v, want %v", got, tt.want)
			}
		})
	}
}
