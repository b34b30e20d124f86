package bootstrap

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// InitRedis returns nil when no URL is configured; the cache layer treats
// a nil client as "caching disabled" rather than an error.
func InitRedis(url string, log *slog.Logger) *redis.Client {
	if url == "" {
		return nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("invalid redis url, caching disabled", "error", err)
		return nil
	}
	return redis.NewClient(opts)
}
