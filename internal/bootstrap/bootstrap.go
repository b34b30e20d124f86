package bootstrap

import (
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/electionwatch/atlas-backend/internal/config"
	"github.com/electionwatch/atlas-backend/pkg/logger"
)

type Bootstrap struct {
	Log   *slog.Logger
	DB    *sqlx.DB
	Redis *redis.Client
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewJSONHandler)
	bs.DB, err = InitPostgres(cfg.PostgresURL)
	if err != nil {
		return bs, err
	}
	bs.Redis = InitRedis(cfg.RedisURL, bs.Log)

	return bs, nil
}

func (bs *Bootstrap) Close() {
	if bs.DB != nil {
		bs.DB.Close()
	}
	if bs.Redis != nil {
		bs.Redis.Close()
	}
}
