package config

import "time"

// Refresh token store drivers
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type StoreConfig interface {
	GetStoreDriver() string
	GetPostgresDSN() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisPrefix() string
	// GetRetention is how long an expired record is kept before reaping
	GetRetention() time.Duration
}

type storeSection struct {
	Driver   string `yaml:"driver"`
	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	RetentionMs int64 `yaml:"retentionMs"`
}

type Store struct {
	file storeSection
}

var _ StoreConfig = Store{}

func (s Store) GetStoreDriver() string {
	return GetEnv("STORE_DRIVER", orDefault(s.file.Driver, StoreMemory))
}

func (s Store) GetPostgresDSN() string {
	return GetEnv("DATABASE_URL", s.file.Postgres.DSN)
}

func (s Store) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", orDefault(s.file.Redis.Addr, "localhost:6379"))
}

func (s Store) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", s.file.Redis.Password)
}

func (s Store) GetRedisDB() int {
	return getInt("REDIS_DB", s.file.Redis.DB)
}

func (s Store) GetRedisPrefix() string {
	return GetEnv("REDIS_PREFIX", orDefault(s.file.Redis.Prefix, "refresh"))
}

func (s Store) GetRetention() time.Duration {
	return getMillis("STORE_RETENTION_MS", s.file.RetentionMs, 24*time.Hour)
}
