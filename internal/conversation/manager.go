package conversation

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/pixelbot/core/logger"
	"github.com/m3rciful/pixelbot/core/telegram/state"
)

// ErrBusy is returned while another transition for the same user is running.
var ErrBusy = state.ErrBusy

// Options configures a Manager.
type Options struct {
	TTL                 time.Duration
	MaxLanguageAttempts int
	Now                 func() time.Time
}

// Manager owns the sessions of all users.
type Manager struct {
	store   *state.Store[Session]
	machine Machine
}

// NewManager builds a Manager with an empty store.
func NewManager(opts Options) *Manager {
	return &Manager{
		store:   state.NewStore[Session](state.Options{TTL: opts.TTL}),
		machine: Machine{MaxLanguageAttempts: opts.MaxLanguageAttempts, Now: opts.Now},
	}
}

// Begin leases the user's session. Callers must End the returned Txn.
func (m *Manager) Begin(ctx context.Context, userID int64) (*Txn, error) {
	lease, err := m.store.Acquire(ctx, userID)
	if err != nil {
		logger.FSM.LogAttrs(ctx, slog.LevelDebug, "fsm.busy", slog.Int64("user_id", userID))
		return nil, err
	}
	txn := &Txn{lease: lease, machine: m.machine}
	txn.begin = txn.Session()
	return txn, nil
}

// Peek returns the stored session; Idle users get a zero session.
func (m *Manager) Peek(userID int64) Session {
	s, ok := m.store.Peek(userID)
	if !ok {
		return Session{UserID: userID}
	}
	return s
}

// InProgress reports whether the user has a live flow or a running transition.
func (m *Manager) InProgress(userID int64) bool {
	return m.store.Busy(userID) || m.Peek(userID).Flow != nil
}

// Busy reports whether a transition for the user is running.
func (m *Manager) Busy(userID int64) bool { return m.store.Busy(userID) }

// Interrupt cancels the running transition of the user, if any.
func (m *Manager) Interrupt(userID int64) bool { return m.store.Interrupt(userID) }

// Len returns the number of stored sessions.
func (m *Manager) Len() int { return m.store.Len() }

// Txn is one leased transition window.
type Txn struct {
	lease   *state.Lease[Session]
	machine Machine
	begin   Session
}

// Context is cancelled when the transition is interrupted.
func (t *Txn) Context() context.Context { return t.lease.Context() }

// Session returns the current session.
func (t *Txn) Session() Session {
	s := t.lease.Value()
	s.UserID = t.lease.UserID()
	return s
}

// Apply runs ev through the machine and stages the resulting session.
func (t *Txn) Apply(ev Event) (Transition, error) {
	from := t.Session()
	tr, err := t.machine.Next(from, ev)
	if err != nil {
		return Transition{}, err
	}
	t.store(tr.Session)

	ctx := logger.WithFlow(t.Context(), flowName(tr.Session, from))
	logger.FSM.LogAttrs(ctx, slog.LevelDebug, "fsm.transition",
		slog.String("from", from.State().String()),
		slog.String("to", tr.Session.State().String()),
		slog.Int("effect", int(tr.Effect)),
	)
	return tr, nil
}

// Reset drops the session, leaving the user Idle.
func (t *Txn) Reset() {
	t.lease.Reset()
}

// Rollback stages the session the transaction started with, undoing every
// applied transition.
func (t *Txn) Rollback() {
	t.store(t.begin)
}

// End releases the lease, writing back the staged session.
// Idle sessions are not kept.
func (t *Txn) End() {
	if t.lease.Value().Flow == nil {
		t.lease.Reset()
	}
	t.lease.Release()
}

func (t *Txn) store(s Session) {
	if s.Flow == nil {
		t.lease.Reset()
		return
	}
	_ = t.lease.Set(s)
}

func flowName(to, from Session) string {
	if to.Flow != nil {
		return to.Flow.Name()
	}
	if from.Flow != nil {
		return from.Flow.Name()
	}
	return ""
}
