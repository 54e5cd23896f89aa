package infra_postgres_session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/NicolasKocher/sprint-poker/internal/model"
	usecase_session "github.com/NicolasKocher/sprint-poker/internal/usecase/session"
	"github.com/jmoiron/sqlx"
)

// Driver stores each session as a single jsonb blob keyed by room code.
// Expected schema:
//
//	CREATE TABLE IF NOT EXISTS sessions (
//	    code       TEXT PRIMARY KEY,
//	    record     JSONB NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL
//	);
type Driver struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Driver {
	return &Driver{db: db}
}

type sessionDTO struct {
	Code      string    `db:"code"`
	Record    []byte    `db:"record"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (d *Driver) Load(ctx context.Context, code model.RoomCode) (model.Session, error) {
	var dto sessionDTO

	query := `
        SELECT code, record, updated_at
        FROM sessions
        WHERE code = $1
    `

	if err := d.db.GetContext(ctx, &dto, query, string(code)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Session{}, usecase_session.ErrSessionNotFound
		}
		return model.Session{}, err
	}

	var session model.Session
	if err := json.Unmarshal(dto.Record, &session); err != nil {
		return model.Session{}, err
	}
	return session, nil
}

func (d *Driver) Save(ctx context.Context, session model.Session) error {
	record, err := json.Marshal(session)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO sessions (code, record, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (code) DO UPDATE
        SET record = EXCLUDED.record, updated_at = EXCLUDED.updated_at
    `

	// pq would send []byte as bytea, the jsonb column wants text input.
	_, err = d.db.ExecContext(ctx, query, string(session.ID), string(record))
	return err
}

func (d *Driver) Delete(ctx context.Context, code model.RoomCode) error {
	query := `
        DELETE FROM sessions
        WHERE code = $1
    `

	_, err := d.db.ExecContext(ctx, query, string(code))
	return err
}
