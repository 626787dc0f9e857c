// File: config.go

package vouch

import "time"

// Config carries every tunable for the identity core. Field tags follow
// go-zero's conf convention (`json:",env=..."`/`json:",default=..."`) so a
// host service can load it with conf.Load alongside its own configuration
// structs.
type Config struct {
	ClockSkewSeconds          int64 `json:",default=30,env=VOUCH_CLOCK_SKEW_SECONDS"`
	DefaultTokenExpiry        int64 `json:",default=300,env=VOUCH_DEFAULT_TOKEN_EXPIRY"`
	MaxTokenExpiry            int64 `json:",default=3600,env=VOUCH_MAX_TOKEN_EXPIRY"`
	CacheMaxSize              int   `json:",default=10000,env=VOUCH_CACHE_MAX_SIZE"`
	CacheTTLSeconds           int64 `json:",default=300,env=VOUCH_CACHE_TTL_SECONDS"`
	ReplayMaxSize             int   `json:",default=100000,env=VOUCH_REPLAY_MAX_SIZE"`
	ReplayGraceSeconds        int64 `json:",default=60,env=VOUCH_REPLAY_GRACE_SECONDS"`
	ResolverTimeoutSeconds    int64 `json:",default=10,env=VOUCH_RESOLVER_TIMEOUT_SECONDS"`
	RevocationCacheTTL        int64 `json:",default=300,env=VOUCH_REVOCATION_CACHE_TTL"`
	ReputationBaseline        int   `json:",default=50,env=VOUCH_REPUTATION_BASELINE"`
	ReputationDecayWindowDays int   `json:",default=7,env=VOUCH_REPUTATION_DECAY_WINDOW_DAYS"`
	MaxDelegationDepth        int   `json:",default=5,env=VOUCH_MAX_DELEGATION_DEPTH"`

	Redis    RedisConfig    `json:",optional"`
	Postgres PostgresConfig `json:",optional"`
}

// RedisConfig mirrors the shape of thirdparty/cache.RedisConfig, reused
// here for the distributed key cache, replay guard, and reputation store
// backends.
type RedisConfig struct {
	Host     string `json:",env=VOUCH_REDIS_HOST"`
	Port     int    `json:",default=6379,env=VOUCH_REDIS_PORT"`
	Password string `json:",optional,env=VOUCH_REDIS_PASSWORD"`
	DB       int    `json:",default=0,env=VOUCH_REDIS_DB"`

	ConnectTimeoutSeconds int64 `json:",default=5,env=VOUCH_REDIS_CONNECT_TIMEOUT_SECONDS"`
}

// ConnectTimeout returns the Redis connect-timeout as a time.Duration.
func (c RedisConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}

// PostgresConfig backs the SQL revocation store.
type PostgresConfig struct {
	Host     string `json:",env=VOUCH_POSTGRES_HOST"`
	Port     int    `json:",default=5432,env=VOUCH_POSTGRES_PORT"`
	User     string `json:",env=VOUCH_POSTGRES_USER"`
	Password string `json:",optional,env=VOUCH_POSTGRES_PASSWORD"`
	DBName   string `json:",env=VOUCH_POSTGRES_DBNAME"`
	SSLMode  string `json:",default=disable,env=VOUCH_POSTGRES_SSLMODE"`

	MaxOpenConns           int   `json:",default=25,env=VOUCH_POSTGRES_MAX_OPEN_CONNS"`
	MaxIdleConns           int   `json:",default=25,env=VOUCH_POSTGRES_MAX_IDLE_CONNS"`
	ConnMaxLifetimeSeconds int64 `json:",default=300,env=VOUCH_POSTGRES_CONN_MAX_LIFETIME_SECONDS"`
}

// ConnMaxLifetime returns the Postgres pool's connection lifetime as a
// time.Duration.
func (c PostgresConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeSeconds) * time.Second
}

// DefaultConfig returns a Config with every field set to its documented
// default, suitable for tests and for callers that do not need conf.Load.
func DefaultConfig() Config {
	return Config{
		ClockSkewSeconds:          30,
		DefaultTokenExpiry:        300,
		MaxTokenExpiry:            3600,
		CacheMaxSize:              10000,
		CacheTTLSeconds:           300,
		ReplayMaxSize:             100000,
		ReplayGraceSeconds:        60,
		ResolverTimeoutSeconds:    10,
		RevocationCacheTTL:        300,
		ReputationBaseline:        50,
		ReputationDecayWindowDays: 7,
		MaxDelegationDepth:        5,
		Redis: RedisConfig{
			Port:                  6379,
			ConnectTimeoutSeconds: 5,
		},
		Postgres: PostgresConfig{
			Port:                   5432,
			SSLMode:                "disable",
			MaxOpenConns:           25,
			MaxIdleConns:           25,
			ConnMaxLifetimeSeconds: 300,
		},
	}
}

// ResolverTimeout returns the identity resolver's HTTP timeout as a
// time.Duration.
func (c Config) ResolverTimeout() time.Duration {
	return time.Duration(c.ResolverTimeoutSeconds) * time.Second
}

// CacheTTL returns the key cache's default entry lifetime as a
// time.Duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}
