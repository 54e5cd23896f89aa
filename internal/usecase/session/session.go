package usecase_session

import (
	"context"
	"errors"
	"fmt"

	"github.com/NicolasKocher/sprint-poker/internal/model"
	"github.com/jonboulle/clockwork"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidState    = errors.New("invalid game state")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInternal        = errors.New("internal error")
)

// SessionRepository is the key-value store contract: read the latest record,
// overwrite the whole record, delete it. There is no compare-and-swap, so two
// concurrent mutations of the same room can race and the later write wins.
// Accepted: rooms are small, conflicts are rare, and every client re-fetches
// on its poll tick, so a lost join or vote self-heals on retry.
type SessionRepository interface {
	Load(ctx context.Context, code model.RoomCode) (model.Session, error)
	Save(ctx context.Context, session model.Session) error
	Delete(ctx context.Context, code model.RoomCode) error
}

type Usecase struct {
	sessions SessionRepository
	clock    clockwork.Clock
}

func New(sessions SessionRepository, clock clockwork.Clock) *Usecase {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Usecase{
		sessions: sessions,
		clock:    clock,
	}
}

// Create builds a fresh Idle room with the given user as host. A concurrent
// record under the same code is silently overwritten.
func (u *Usecase) Create(ctx context.Context, code model.RoomCode, host model.Participant) (model.Session, error) {
	if err := validParticipant(host); err != nil {
		return model.Session{}, err
	}

	session := model.Session{
		ID:              code,
		HostID:          host.ID,
		Participants:    []model.Participant{host},
		Votes:           map[string]model.TShirtSize{},
		GameState:       model.StateIdle,
		VotingStartTime: nil,
	}
	if err := u.sessions.Save(ctx, session); err != nil {
		return model.Session{}, errors.Join(ErrInternal, err)
	}
	return session, nil
}

func (u *Usecase) Get(ctx context.Context, code model.RoomCode) (model.Session, error) {
	return u.load(ctx, code)
}

// Join appends the user, or updates the stored name in place when the same id
// returns under a new name. Joining twice with identical data is a no-op and
// skips the store write.
func (u *Usecase) Join(ctx context.Context, code model.RoomCode, user model.Participant) (model.Session, error) {
	if err := validParticipant(user); err != nil {
		return model.Session{}, err
	}

	session, err := u.load(ctx, code)
	if err != nil {
		return model.Session{}, err
	}

	modified := false
	if i := session.ParticipantIndex(user.ID); i == -1 {
		session.Participants = append(session.Participants, user)
		modified = true
	} else if session.Participants[i].Name != user.Name {
		session.Participants[i].Name = user.Name
		modified = true
	}

	if modified {
		if err := u.sessions.Save(ctx, session); err != nil {
			return model.Session{}, errors.Join(ErrInternal, err)
		}
	}
	return session, nil
}

// Leave removes the participant and their vote. The last participant leaving
// dissolves the room (deleted == true, no empty record persists). A departing
// host hands the room to the first remaining participant and forces Idle; a
// departing non-voter whose absence completes the quorum finishes the round.
// Leaving a room one is not part of is a no-op.
func (u *Usecase) Leave(ctx context.Context, code model.RoomCode, userID string) (session model.Session, deleted bool, err error) {
	session, err = u.load(ctx, code)
	if err != nil {
		return model.Session{}, false, err
	}

	i := session.ParticipantIndex(userID)
	if i == -1 {
		return session, false, nil
	}

	session.Participants = append(session.Participants[:i], session.Participants[i+1:]...)
	delete(session.Votes, userID)

	if len(session.Participants) == 0 {
		if err := u.sessions.Delete(ctx, code); err != nil {
			return model.Session{}, false, errors.Join(ErrInternal, err)
		}
		return model.Session{}, true, nil
	}

	if session.HostID == userID {
		session.HostID = session.Participants[0].ID
		resetToIdle(&session)
	} else if session.GameState == model.StateVoting && session.FullQuorum() {
		session.GameState = model.StateFinished
		session.VotingStartTime = nil
	}

	if err := u.sessions.Save(ctx, session); err != nil {
		return model.Session{}, false, errors.Join(ErrInternal, err)
	}
	return session, false, nil
}

// StartVoting is legal only from Idle. It clears previous votes and anchors
// the shared countdown at the current time.
func (u *Usecase) StartVoting(ctx context.Context, code model.RoomCode) (model.Session, error) {
	session, err := u.load(ctx, code)
	if err != nil {
		return model.Session{}, err
	}

	if session.GameState != model.StateIdle {
		return model.Session{}, fmt.Errorf("%w: cannot start voting, current state: %s", ErrInvalidState, session.GameState)
	}

	now := u.clock.Now().UnixMilli()
	session.GameState = model.StateVoting
	session.Votes = map[string]model.TShirtSize{}
	session.VotingStartTime = &now

	if err := u.sessions.Save(ctx, session); err != nil {
		return model.Session{}, errors.Join(ErrInternal, err)
	}
	return session, nil
}

// FinishVoting moves the room to Finished, keeping the cast votes for the
// result view. Idempotent: every client races to call it on timer expiry and
// duplicate calls are harmless.
func (u *Usecase) FinishVoting(ctx context.Context, code model.RoomCode) (model.Session, error) {
	session, err := u.load(ctx, code)
	if err != nil {
		return model.Session{}, err
	}

	session.GameState = model.StateFinished
	session.VotingStartTime = nil

	if err := u.sessions.Save(ctx, session); err != nil {
		return model.Session{}, errors.Join(ErrInternal, err)
	}
	return session, nil
}

// ResetVoting returns the room to Idle and discards all votes.
func (u *Usecase) ResetVoting(ctx context.Context, code model.RoomCode) (model.Session, error) {
	session, err := u.load(ctx, code)
	if err != nil {
		return model.Session{}, err
	}

	resetToIdle(&session)

	if err := u.sessions.Save(ctx, session); err != nil {
		return model.Session{}, errors.Join(ErrInternal, err)
	}
	return session, nil
}

// CastVote records the user's size while the round is open. Re-voting
// overwrites: the last accepted vote wins.
func (u *Usecase) CastVote(ctx context.Context, code model.RoomCode, userID string, size model.TShirtSize) (model.Session, error) {
	if userID == "" {
		return model.Session{}, fmt.Errorf("%w: missing user id", ErrInvalidInput)
	}
	if !size.Valid() {
		return model.Session{}, fmt.Errorf("%w: unknown size %q", ErrInvalidInput, size)
	}

	session, err := u.load(ctx, code)
	if err != nil {
		return model.Session{}, err
	}

	if session.GameState != model.StateVoting {
		return model.Session{}, fmt.Errorf("%w: voting is not active, current state: %s", ErrInvalidState, session.GameState)
	}

	session.Votes[userID] = size

	if err := u.sessions.Save(ctx, session); err != nil {
		return model.Session{}, errors.Join(ErrInternal, err)
	}
	return session, nil
}

func (u *Usecase) load(ctx context.Context, code model.RoomCode) (model.Session, error) {
	session, err := u.sessions.Load(ctx, code)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return model.Session{}, ErrSessionNotFound
		}
		return model.Session{}, errors.Join(ErrInternal, err)
	}
	return session, nil
}

func resetToIdle(session *model.Session) {
	session.GameState = model.StateIdle
	session.Votes = map[string]model.TShirtSize{}
	session.VotingStartTime = nil
}

func validParticipant(p model.Participant) error {
	if p.ID == "" || p.Name == "" {
		return fmt.Errorf("%w: participant id and name required", ErrInvalidInput)
	}
	return nil
}
