package client_poker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/NicolasKocher/sprint-poker/internal/model"
	"github.com/jonboulle/clockwork"
)

// Intent says what the caller wants on mount when the room does not exist
// yet: create it, or fail with ErrRoomNotFound.
type Intent int

const (
	IntentJoin Intent = iota
	IntentCreate
)

var ErrRoomNotFound = errors.New("room not found")

// Options tune the two independent ticks of the loop. Zero values fall back
// to the documented defaults.
type Options struct {
	// PollInterval is the re-fetch cadence observing other participants'
	// mutations. Default 1 s.
	PollInterval time.Duration
	// TickInterval drives the local countdown. Default 500 ms.
	TickInterval time.Duration
	// VoteDuration is the round budget measured from the server anchor.
	VoteDuration time.Duration
	// Clock defaults to the real clock.
	Clock clockwork.Clock
}

func (o *Options) withDefaults() {
	if o.PollInterval <= 0 {
		o.PollInterval = time.Second
	}
	if o.TickInterval <= 0 {
		o.TickInterval = 500 * time.Millisecond
	}
	if o.VoteDuration <= 0 {
		o.VoteDuration = model.VoteDuration
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
}

// Reconciler approximates real-time sync without a persistent connection:
// it periodically re-fetches the record and replaces the local view
// wholesale, and derives a countdown from the server-supplied anchor on its
// own faster tick. The first client whose countdown hits zero finishes the
// round; every participant races to do so and the duplicate calls are
// harmless.
type Reconciler struct {
	api    *Client
	code   model.RoomCode
	user   model.Participant
	opts   Options
	logger *slog.Logger

	onUpdate    func(model.Session)
	onCountdown func(remaining time.Duration)

	mu             sync.RWMutex
	session        model.Session
	hasSession     bool
	finishedAnchor int64

	cancel context.CancelFunc
	loops  sync.WaitGroup
}

func NewReconciler(api *Client, code model.RoomCode, user model.Participant, opts Options) *Reconciler {
	opts.withDefaults()
	return &Reconciler{
		api:    api,
		code:   code,
		user:   user,
		opts:   opts,
		logger: slog.Default(),
	}
}

// OnUpdate registers the view callback, invoked from the loop goroutines on
// every observed record. Set before Start.
func (r *Reconciler) OnUpdate(fn func(model.Session)) {
	r.onUpdate = fn
}

// OnCountdown registers the countdown callback, invoked on every local tick
// while a round is open. Set before Start.
func (r *Reconciler) OnCountdown(fn func(remaining time.Duration)) {
	r.onCountdown = fn
}

// Start performs the mount sequence and launches the poll and countdown
// loops. Mount: load the room; absent with IntentCreate creates it, absent
// with IntentJoin fails with ErrRoomNotFound and no polling starts; present
// without the caller listed joins it.
func (r *Reconciler) Start(ctx context.Context, intent Intent) error {
	session, err := r.mount(ctx, intent)
	if err != nil {
		return err
	}
	r.setSession(session)

	loopCtx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	r.loops.Add(2)
	go r.pollLoop(loopCtx)
	go r.countdownLoop(loopCtx)
	return nil
}

func (r *Reconciler) mount(ctx context.Context, intent Intent) (model.Session, error) {
	session, err := r.api.GetSession(ctx, r.code)
	if err != nil {
		if !IsNotFound(err) {
			return model.Session{}, err
		}
		if intent != IntentCreate {
			return model.Session{}, ErrRoomNotFound
		}
		return r.api.CreateSession(ctx, r.code, r.user)
	}

	if session.ParticipantIndex(r.user.ID) == -1 {
		return r.api.JoinSession(ctx, r.code, r.user)
	}
	return session, nil
}

// Session returns the last reconciled view.
func (r *Reconciler) Session() (model.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.session, r.hasSession
}

// Stop cancels both loops. In-flight requests are not cancelled, their
// results are simply dropped.
func (r *Reconciler) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	r.loops.Wait()
	r.cancel = nil
}

// Close stops the loops and sends the best-effort departure signal.
func (r *Reconciler) Close() {
	r.Stop()
	r.api.LeaveAsync(r.code, r.user.ID)
}

func (r *Reconciler) pollLoop(ctx context.Context) {
	defer r.loops.Done()

	ticker := r.opts.Clock.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			session, err := r.api.GetSession(ctx, r.code)
			if err != nil {
				// Transient by assumption: the room may not exist yet during
				// a creation race, or the store hiccuped. Retry next tick.
				r.logger.Debug("poll failed", slog.String("error", err.Error()))
				continue
			}
			r.setSession(session)
		}
	}
}

func (r *Reconciler) countdownLoop(ctx context.Context) {
	defer r.loops.Done()

	ticker := r.opts.Clock.NewTicker(r.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			r.tickCountdown(ctx)
		}
	}
}

func (r *Reconciler) tickCountdown(ctx context.Context) {
	session, ok := r.Session()
	if !ok || session.GameState != model.StateVoting || session.VotingStartTime == nil {
		return
	}

	anchor := *session.VotingStartTime
	elapsed := time.Duration(r.opts.Clock.Now().UnixMilli()-anchor) * time.Millisecond
	remaining := r.opts.VoteDuration - elapsed
	if remaining < 0 {
		remaining = 0
	}

	if r.onCountdown != nil {
		r.onCountdown(remaining)
	}

	if remaining > 0 {
		return
	}

	r.mu.Lock()
	alreadyFinished := r.finishedAnchor == anchor
	r.mu.Unlock()
	if alreadyFinished {
		return
	}

	session, err := r.api.FinishVoting(ctx, r.code)
	if err != nil {
		// Treated as transient, the next tick retries against the same anchor.
		r.logger.Debug("finish voting failed", slog.String("error", err.Error()))
		return
	}

	r.mu.Lock()
	r.finishedAnchor = anchor
	r.mu.Unlock()
	r.setSession(session)
}

func (r *Reconciler) setSession(session model.Session) {
	r.mu.Lock()
	r.session = session
	r.hasSession = true
	r.mu.Unlock()

	if r.onUpdate != nil {
		r.onUpdate(session)
	}
}
