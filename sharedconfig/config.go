// File: config.go

// Package config loads the ambient configuration for a vouch-protocol
// host service: the identity core's own tunables (vouch.Config) plus
// connection details for the Redis and Postgres backends its distributed
// stores use, as a single conf.Load-able struct per service.
package config

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/vouch-protocol/vouch-sub000/pkg/vouch"
	"github.com/vouch-protocol/vouch-sub000/thirdparty/cache"
	"github.com/vouch-protocol/vouch-sub000/thirdparty/database"
)

// ServiceConfig is the top-level configuration a host process loads with
// go-zero's conf.Load. Vouch carries every identity-core tunable,
// including the nested Redis/Postgres sections Connect dials.
type ServiceConfig struct {
	Name  string       `json:",env=VOUCH_SERVICE_NAME"`
	Vouch vouch.Config `json:",optional"`
}

// Backends holds the live connections a ServiceConfig resolves to. Either
// field is nil if the host never configured the corresponding backend,
// in which case callers should fall back to the in-memory stores.
type Backends struct {
	Redis    *redis.Client
	Postgres *sqlx.DB
}

// Connect dials the Redis and Postgres backends named in cfg, leaving a
// Backends field nil when its section's Host is unset rather than
// treating an absent backend as an error.
func Connect(cfg vouch.Config) (*Backends, error) {
	backends := &Backends{}

	if cfg.Redis.Host != "" {
		conn, err := cache.NewRedisConnection(cache.RedisConfig{
			Host:           cfg.Redis.Host,
			Port:           cfg.Redis.Port,
			Password:       cfg.Redis.Password,
			DB:             cfg.Redis.DB,
			ConnectTimeout: cfg.Redis.ConnectTimeout(),
		})
		if err != nil {
			return nil, fmt.Errorf("config: connect redis: %w", err)
		}
		backends.Redis = conn.GetClient()
	}

	if cfg.Postgres.Host != "" {
		db, err := database.NewPostgresConnection(database.PostgresConfig{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			User:            cfg.Postgres.User,
			Password:        cfg.Postgres.Password,
			DBName:          cfg.Postgres.DBName,
			SSLMode:         cfg.Postgres.SSLMode,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime(),
		})
		if err != nil {
			return nil, fmt.Errorf("config: connect postgres: %w", err)
		}
		backends.Postgres = db
	}

	return backends, nil
}
