package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

type Config struct {
	DatabaseDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// CDCStream is the Redis stream device-change events are published to.
	CDCStream string

	// RealtimeStatusPrefix is the key prefix for cached tracker live status.
	RealtimeStatusPrefix string

	SnowflakeNode int64
}

func Load() (Config, error) {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("DATABASE_DSN", "postgres://localhost:5432/orbitlink?sslmode=disable")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CDC_STREAM", "orbitlink:cdc")
	v.SetDefault("REALTIME_STATUS_PREFIX", "tracker:rt:")
	v.SetDefault("SNOWFLAKE_NODE", 1)

	return Config{
		DatabaseDSN:          v.GetString("DATABASE_DSN"),
		RedisAddr:            v.GetString("REDIS_ADDR"),
		RedisPassword:        v.GetString("REDIS_PASSWORD"),
		RedisDB:              v.GetInt("REDIS_DB"),
		CDCStream:            v.GetString("CDC_STREAM"),
		RealtimeStatusPrefix: v.GetString("REALTIME_STATUS_PREFIX"),
		SnowflakeNode:        v.GetInt64("SNOWFLAKE_NODE"),
	}, nil
}

var Module = fx.Module("config",
	fx.Provide(Load),
)
