package app

import (
	"log"

	"github.com/NicolasKocher/sprint-poker/internal/config"
	http_init "github.com/NicolasKocher/sprint-poker/internal/delivery/http/init"
	http_session "github.com/NicolasKocher/sprint-poker/internal/delivery/http/session"
	infra_memory_session "github.com/NicolasKocher/sprint-poker/internal/infra/memory/session"
	infra_pg_init "github.com/NicolasKocher/sprint-poker/internal/infra/postgres/init"
	infra_postgres_session "github.com/NicolasKocher/sprint-poker/internal/infra/postgres/session"
	infra_redis_init "github.com/NicolasKocher/sprint-poker/internal/infra/redis/init"
	infra_redis_session "github.com/NicolasKocher/sprint-poker/internal/infra/redis/session"
	usecase_session "github.com/NicolasKocher/sprint-poker/internal/usecase/session"
)

const sessionKeyPrefix = "session"

func Go(cfg *config.Config) {
	sessionStore := buildSessionStore(cfg)
	sessionUC := usecase_session.New(sessionStore, nil)

	controllerPool := http_init.NewControllerPool()
	controllerPool.Add(http_session.New(sessionUC))

	controllerPool.Register()
	controllerPool.RunAll(cfg.HTTP.Port)
}

// One repository interface, one adapter picked by config. Keeps the
// endpoint code identical across storage backends.
func buildSessionStore(cfg *config.Config) usecase_session.SessionRepository {
	switch cfg.Store.Backend {
	case "memory":
		return infra_memory_session.New()
	case "redis":
		redisConn := infra_redis_init.MustEstablishConn(cfg.Redis)
		return infra_redis_session.New(redisConn, sessionKeyPrefix, cfg.Redis.SessionTTL)
	case "postgres":
		pgConn := infra_pg_init.MustEstablishConn(cfg.Postgres)
		return infra_postgres_session.New(pgConn)
	default:
		log.Fatalf("unknown store backend: %s", cfg.Store.Backend)
		return nil
	}
}
