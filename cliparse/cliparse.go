// Copyright (c) 2026 Drew Kemp.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"

	"github.com/spf13/viper"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string // sqlite or postgres
	RedisAddr    string // empty means in-process cache
}

// ParseFlags validates flags with environment fallback. Flags win over
// environment variables; environment binding goes through viper so a future
// config file slots in without touching call sites.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	fs := flag.NewFlagSet("ballotbox", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.RedisAddr, "redis", "", "Redis address for the shared reference-data cache (optional)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("database.url", "DATABASE_URL")
	_ = v.BindEnv("database.type", "DATABASE_TYPE")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")

	if cfg.Port == 0 {
		cfg.Port = v.GetInt("port")
	}
	if cfg.Port == 0 {
		cfg.Port = 3330 // default
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = v.GetString("database.url")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = v.GetString("database.type")
	}
	if cfg.DatabaseType == "" {
		cfg.DatabaseType = "sqlite"
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, errors.New("database type must be sqlite or postgres")
	}

	if cfg.RedisAddr == "" {
		cfg.RedisAddr = v.GetString("redis.addr")
	}

	return cfg, nil
}

// DriverName maps the configured database type to its driver registration.
func (c Config) DriverName() string {
	if c.DatabaseType == "postgres" {
		return "postgres"
	}
	return "sqlite"
}
