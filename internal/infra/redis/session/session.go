package infra_redis_session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/NicolasKocher/sprint-poker/internal/model"
	usecase_session "github.com/NicolasKocher/sprint-poker/internal/usecase/session"
	"github.com/go-redis/redis"
)

// Driver persists each session as one JSON blob under <prefix>:<code>.
// A non-zero TTL is refreshed on every save so abandoned rooms age out even
// when no client ever sends the final leave.
type Driver struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func New(client *redis.Client, prefix string, ttl time.Duration) *Driver {
	return &Driver{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (d *Driver) Load(_ context.Context, code model.RoomCode) (model.Session, error) {
	raw, err := d.client.Get(d.key(code)).Result()
	if err != nil {
		if err == redis.Nil {
			return model.Session{}, usecase_session.ErrSessionNotFound
		}
		return model.Session{}, err
	}

	var session model.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return model.Session{}, err
	}
	return session, nil
}

func (d *Driver) Save(_ context.Context, session model.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}

	return d.client.Set(d.key(session.ID), string(raw), d.ttl).Err()
}

func (d *Driver) Delete(_ context.Context, code model.RoomCode) error {
	return d.client.Del(d.key(code)).Err()
}

func (d *Driver) key(code model.RoomCode) string {
	if d.prefix == "" {
		return string(code)
	}
	return d.prefix + ":" + string(code)
}
