package infra_memory_session

import (
	"context"
	"sync"

	"github.com/NicolasKocher/sprint-poker/internal/model"
	usecase_session "github.com/NicolasKocher/sprint-poker/internal/usecase/session"
)

// Driver keeps sessions in an in-process map. Used by tests and single-node
// dev runs; the contract matches the networked backends: whole-record
// overwrite, no compare-and-swap.
type Driver struct {
	mu       sync.RWMutex
	sessions map[model.RoomCode]model.Session
}

func New() *Driver {
	return &Driver{
		sessions: make(map[model.RoomCode]model.Session),
	}
}

func (d *Driver) Load(_ context.Context, code model.RoomCode) (model.Session, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	session, ok := d.sessions[code]
	if !ok {
		return model.Session{}, usecase_session.ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (d *Driver) Save(_ context.Context, session model.Session) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.sessions[session.ID] = session.Clone()
	return nil
}

func (d *Driver) Delete(_ context.Context, code model.RoomCode) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.sessions, code)
	return nil
}
