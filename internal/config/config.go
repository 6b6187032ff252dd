package config

import "github.com/spf13/viper"

type Config struct {
	ServerPort    string `mapstructure:"SERVER_PORT"`
	PostgresURL   string `mapstructure:"POSTGRES_URL"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	MQTTBroker   string `mapstructure:"MQTT_BROKER"`
	MQTTClientID string `mapstructure:"MQTT_CLIENT_ID"`
	MQTTTopic    string `mapstructure:"MQTT_TOPIC"`

	RatePerKm            float64 `mapstructure:"RATE_PER_KM"`
	RolloverCheckSeconds int     `mapstructure:"ROLLOVER_CHECK_SECONDS"`
	// RebasePolicy selects how sub-threshold moves anchor the next delta:
	// "rebase-always" (compatible default) or "accumulate".
	RebasePolicy               string `mapstructure:"REBASE_POLICY"`
	StopTripOnPermissionDenied bool   `mapstructure:"STOP_TRIP_ON_PERMISSION_DENIED"`
	FareLocale                 string `mapstructure:"FARE_LOCALE"`
}

func Load() Config {
	viper.AutomaticEnv()
	viper.SetDefault("SERVER_PORT", ":8080")
	viper.SetDefault("POSTGRES_URL", "")
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("MQTT_BROKER", "")
	viper.SetDefault("MQTT_CLIENT_ID", "kabten-api")
	viper.SetDefault("MQTT_TOPIC", "kabten/location")
	viper.SetDefault("RATE_PER_KM", 8.0)
	viper.SetDefault("ROLLOVER_CHECK_SECONDS", 10)
	viper.SetDefault("REBASE_POLICY", "rebase-always")
	viper.SetDefault("STOP_TRIP_ON_PERMISSION_DENIED", false)
	viper.SetDefault("FARE_LOCALE", "ar-EG")

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}
