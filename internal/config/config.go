package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	// logging
	LogLevel    string `toml:"log_level"`
	LogsPath    string `toml:"logs_path"`
	LogToStdout bool   `toml:"log_to_stdout"`
	// sentry
	SentryEnabled bool `toml:"sentry_enabled"`
	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`
	// prometheus metrics server
	PrometheusMetricsHost string `toml:"prom_metrics_host"`
	PrometheusMetricsPort string `toml:"prom_metrics_port"`
	// auth
	LoginRateLimitAllowedPerMin int `toml:"login_rate_limit_allowed_per_min"`
	// gyms
	PlacesBaseURL      string  `toml:"places_base_url"`
	GymSearchRadiusMtr int     `toml:"gym_search_radius_meters"`
	DefaultLatitude    float64 `toml:"default_latitude"`
	DefaultLongitude   float64 `toml:"default_longitude"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func Load(env string, path string) (*Config, error) {
	var tomlFile Toml
	if _, err := toml.DecodeFile(path, &tomlFile); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := tomlFile.Get(env)
	if err != nil {
		return nil, err
	}

	cfg.Environment = env
	return cfg, nil
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// PostgresConnString assembles the pool connection string; the password
// comes from the environment, never from the config file.
func (c *Config) PostgresConnString() string {
	connStr := fmt.Sprintf(
		"postgres://postgres@%s:%s/%s",
		c.PostgresHost, c.PostgresPort, c.PostgresDBName,
	)
	if pass := os.Getenv("GYMSEEKR_POSTGRES_PASS"); pass != "" {
		connStr = fmt.Sprintf(
			"postgres://postgres:%s@%s:%s/%s",
			pass, c.PostgresHost, c.PostgresPort, c.PostgresDBName,
		)
	}
	return connStr
}
