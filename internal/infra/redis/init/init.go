package infra_redis_init

import (
	"log"
	"net"

	"github.com/NicolasKocher/sprint-poker/internal/config"
	"github.com/go-redis/redis"
)

// MustEstablishConn dials the redis instance backing the session store and
// exits on failure: without it every mutation would 500 anyway.
func MustEstablishConn(cfg config.RedisCache) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping().Err(); err != nil {
		log.Fatalf("session store: redis ping failed: %v", err)
	}

	return client
}
