package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type HTTPServer struct {
	Host string
	Port string
}

type Store struct {
	// Backend selects the session store: memory, redis or postgres.
	Backend string
}

type RedisCache struct {
	Host     string
	Port     string
	Password string
	// DB is the logical database index, so sessions can share an instance
	// with other tenants.
	DB int
	// SessionTTL ages out rooms nobody bothered to leave. Zero disables it.
	SessionTTL time.Duration
}

type Postgres struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type Config struct {
	HTTP     HTTPServer
	Store    Store
	Redis    RedisCache
	Postgres Postgres
}

const logtag = "[config]"

func Load() *Config {
	configPath := flag.String("config", "", "path env file")
	flag.Parse()

	if *configPath != "" {
		if err := godotenv.Load(*configPath); err != nil {
			log.Fatalf("%s err loading env from file : %v", logtag, err)
		}
		log.Printf("%s using env from : %s", logtag, *configPath)
	} else {
		log.Printf("%s using env from .env", logtag)
		_ = godotenv.Load()
	}

	cfg := &Config{
		HTTP:     *newHTTP(),
		Store:    *newStore(),
		Redis:    *newRedis(),
		Postgres: *newPostgres(),
	}

	log.Printf("%s backend config : %+v\n", logtag, cfg)
	return cfg
}

func newHTTP() *HTTPServer {
	return &HTTPServer{
		Port: getenv("HTTP_PORT", "8080"),
		Host: getenv("HTTP_HOST", "localhost"),
	}
}

func newStore() *Store {
	return &Store{
		Backend: getenv("STORE_BACKEND", "memory"),
	}
}

func newRedis() *RedisCache {
	ttlHours, err := strconv.Atoi(getenv("SESSION_TTL_HOURS", "24"))
	if err != nil || ttlHours < 0 {
		ttlHours = 24
	}

	db, err := strconv.Atoi(getenv("REDIS_DB", "0"))
	if err != nil || db < 0 {
		db = 0
	}

	return &RedisCache{
		Port:       getenv("REDIS_PORT", "6379"),
		Host:       getenv("REDIS_HOST", "redis"),
		Password:   getenv("REDIS_PASSWORD", ""),
		DB:         db,
		SessionTTL: time.Duration(ttlHours) * time.Hour,
	}
}

func newPostgres() *Postgres {
	return &Postgres{
		Host:     getenv("DB_HOST", "localhost"),
		Port:     getenv("DB_PORT", "5432"),
		User:     getenv("DB_USER", "admin"),
		Password: getenv("DB_PASSWORD", "shared"),
		DBName:   getenv("DB_NAME", "poker"),
		SSLMode:  getenv("DB_SSLMODE", "disable"),
	}
}

func getenv(key, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		fmt.Printf("%s %s undefined. Using default value %s\n", logtag, key, defaultValue)
		return defaultValue
	}
	fmt.Printf("%s %s = %s\n", logtag, key, val)
	return val
}
