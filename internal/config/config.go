package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	SessionSecret       string
	DatabaseURL         string
	RedisURL            string
	FrontendURLEndsWith string
	SocCeiling          int64  // upper bound for battery state of charge, percent
	RegistrationPolicy  string // "admin_only" (default) or "self_service"
}

// Load loads config from env and an optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}

	socCeiling := viper.GetInt64("SOC_CEILING")
	if socCeiling <= 0 {
		socCeiling = 100
	}

	policy := strings.ToLower(viper.GetString("REGISTRATION_POLICY"))
	if policy != "self_service" {
		policy = "admin_only"
	}

	return &Config{
		Env:                 env,
		Port:                port,
		SessionSecret:       viper.GetString("SESSION_SECRET"),
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		SocCeiling:          socCeiling,
		RegistrationPolicy:  policy,
	}, nil
}
