package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mardens-inc/dbcommon/conndata"
)

// config holds everything the pricing server needs at startup.
// Values come from config.yaml, PRICING_* environment variables, or
// the defaults below, in that precedence order.
type config struct {
	Port        int    `mapstructure:"port"`
	Env         string `mapstructure:"env"`
	Database    string `mapstructure:"database"`
	BaseURL     string `mapstructure:"base_url"`
	InsecureTLS bool   `mapstructure:"insecure_tls"`
}

func loadConfig() (config, error) {
	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("port", 8080)
	v.SetDefault("env", "dev")
	v.SetDefault("database", conndata.DatabaseFromEnv())
	v.SetDefault("base_url", conndata.DefaultBaseURL)
	// The internal config service and MySQL hosts run self-signed
	// certificates, so the deployed default is on.
	v.SetDefault("insecure_tls", true)

	v.SetEnvPrefix("PRICING")
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return config{}, err
		}
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, err
	}
	return cfg, nil
}
