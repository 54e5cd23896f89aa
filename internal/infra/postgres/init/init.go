package infra_pg_init

import (
	"fmt"
	"log"

	"github.com/NicolasKocher/sprint-poker/internal/config"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// MustEstablishConn opens the postgres pool backing the session store and
// exits on failure. Connect also pings, so a bad DSN surfaces at startup
// rather than on the first mutation.
func MustEstablishConn(cfg config.Postgres) *sqlx.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.SSLMode,
	)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		log.Fatalf("session store: postgres connect failed: %v", err)
	}

	return db
}
