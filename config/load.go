package config

import (
	"os"

	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", DefaultPort)
	v.SetDefault("sqlite_path", DefaultSQLitePath)
	v.SetDefault("db_timeout", "5s")
	v.SetDefault("db_max_retries", 2)
	v.SetDefault("stats_schedule", DefaultStatsSchedule)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("rate_limit", DefaultRateLimit)
}

// BindEnv maps configuration keys onto their environment variables.
func BindEnv(v *viper.Viper) {
	for key, env := range map[string]string{
		"app_env":             "APP_ENV",
		"node_env":            "NODE_ENV",
		"port":                "PORT",
		"database_url":        "DATABASE_URL",
		"sqlite_path":         "SQLITE_PATH",
		"admin_password":      "ADMIN_PASSWORD",
		"admin_password_hash": "ADMIN_PASSWORD_HASH",
		"session_secret":      "SESSION_SECRET",
		"db_timeout":          "DB_TIMEOUT",
		"db_max_retries":      "DB_MAX_RETRIES",
		"stats_schedule":      "STATS_SCHEDULE",
		"log_level":           "LOG_LEVEL",
		"rate_limit":          "RATE_LIMIT",
	} {
		_ = v.BindEnv(key, env)
	}
}

// Load builds a validated Config from v. Callers are expected to have run
// SetDefaults and BindEnv, and to have bound any command line flags.
func Load(v *viper.Viper) (*Config, error) {
	env := v.GetString("app_env")
	if env == "" {
		env = v.GetString("node_env")
	}

	schedule := v.GetString("stats_schedule")
	// viper treats an empty variable as unset, but STATS_SCHEDULE="" disables the report
	if raw, ok := os.LookupEnv("STATS_SCHEDULE"); ok && raw == "" {
		schedule = ""
	}

	return New(
		WithEnvironment(ParseEnvironment(env)),
		WithPort(v.GetInt("port")),
		WithDatabase(v.GetString("database_url"), v.GetString("sqlite_path")),
		WithAdminPassword(v.GetString("admin_password")),
		WithAdminPasswordHash(v.GetString("admin_password_hash")),
		WithSessionSecret(v.GetString("session_secret")),
		WithDBTimeout(v.GetDuration("db_timeout")),
		WithDBMaxRetries(v.GetInt("db_max_retries")),
		WithStatsSchedule(schedule),
		WithLogLevel(v.GetString("log_level")),
		WithRateLimit(v.GetInt("rate_limit")),
	)
}
