package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if cfg.MQTTTopic == "" {
		t.Fatalf("expected default mqtt topic")
	}
	if cfg.RatePerKm != 8.0 {
		t.Fatalf("expected default rate, got %v", cfg.RatePerKm)
	}
	if cfg.RolloverCheckSeconds != 10 {
		t.Fatalf("expected default rollover cadence, got %v", cfg.RolloverCheckSeconds)
	}
	if cfg.RebasePolicy != "rebase-always" {
		t.Fatalf("expected default rebase policy, got %q", cfg.RebasePolicy)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("POSTGRES_URL", "postgres://example")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("MQTT_BROKER", "tcp://broker:1883")
	t.Setenv("RATE_PER_KM", "9.5")
	t.Setenv("STOP_TRIP_ON_PERMISSION_DENIED", "true")

	cfg := Load()
	if cfg.ServerPort != ":9000" {
		t.Fatalf("expected override port")
	}
	if cfg.PostgresURL != "postgres://example" {
		t.Fatalf("expected override postgres")
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Fatalf("expected override redis")
	}
	if cfg.MQTTBroker != "tcp://broker:1883" {
		t.Fatalf("expected override broker")
	}
	if cfg.RatePerKm != 9.5 {
		t.Fatalf("expected override rate")
	}
	if !cfg.StopTripOnPermissionDenied {
		t.Fatalf("expected override stop policy")
	}
}
