package state

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

var (
	// ErrBusy is returned when the user already holds a lease.
	ErrBusy = errors.New("state: session busy")
	// ErrReleased is returned when a lease is used after Release.
	ErrReleased = errors.New("state: lease released")
)

// Options configures a Store.
type Options struct {
	// TTL bounds how long an untouched session is kept; zero means 24h.
	TTL time.Duration
	// CleanupInterval controls how often expired sessions are purged; zero means 10m.
	CleanupInterval time.Duration
}

type entry[T any] struct {
	value  T
	busy   bool
	cancel context.CancelFunc
}

// Store keeps one value per user id. Reads are lock-free snapshots; writes
// happen only through a Lease, and only one lease per user may be outstanding.
type Store[T any] struct {
	mu      sync.Mutex
	entries *cache.Cache
}

// NewStore builds an empty store.
func NewStore[T any](opts Options) *Store[T] {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = 10 * time.Minute
	}
	return &Store[T]{entries: cache.New(opts.TTL, opts.CleanupInterval)}
}

func key(userID int64) string { return strconv.FormatInt(userID, 10) }

func (s *Store[T]) lookup(userID int64) (*entry[T], bool) {
	v, ok := s.entries.Get(key(userID))
	if !ok {
		return nil, false
	}
	return v.(*entry[T]), true
}

// Acquire grants exclusive access to the user's value. The returned lease
// carries a context derived from ctx that Interrupt cancels.
func (s *Store[T]) Acquire(ctx context.Context, userID int64) (*Lease[T], error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(userID)
	if ok && e.busy {
		return nil, ErrBusy
	}
	if !ok {
		e = &entry[T]{}
	}
	leaseCtx, cancel := context.WithCancel(ctx)
	e.busy = true
	e.cancel = cancel
	s.entries.Set(key(userID), e, cache.DefaultExpiration)

	return &Lease[T]{store: s, userID: userID, ctx: leaseCtx, cancel: cancel, value: e.value}, nil
}

// Peek returns a snapshot of the stored value and whether one exists.
func (s *Store[T]) Peek(userID int64) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(userID)
	if !ok {
		var zero T
		return zero, false
	}
	return e.value, true
}

// Busy reports whether a lease for the user is outstanding.
func (s *Store[T]) Busy(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(userID)
	return ok && e.busy
}

// Interrupt cancels the context of an outstanding lease. It reports whether
// a lease was interrupted.
func (s *Store[T]) Interrupt(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.lookup(userID)
	if !ok || !e.busy || e.cancel == nil {
		return false
	}
	e.cancel()
	return true
}

// Len returns the number of stored sessions, including leased ones.
func (s *Store[T]) Len() int {
	return s.entries.ItemCount()
}

func (s *Store[T]) release(userID int64, value T, drop bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if drop {
		s.entries.Delete(key(userID))
		return
	}
	s.entries.Set(key(userID), &entry[T]{value: value}, cache.DefaultExpiration)
}

// Lease is the exclusive right to read and replace one user's value.
type Lease[T any] struct {
	store  *Store[T]
	userID int64
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	value    T
	drop     bool
	released bool
}

// UserID returns the id the lease was granted for.
func (l *Lease[T]) UserID() int64 { return l.userID }

// Context is cancelled when the lease is interrupted or released.
func (l *Lease[T]) Context() context.Context { return l.ctx }

// Value returns the current value held by the lease.
func (l *Lease[T]) Value() T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value
}

// Set replaces the value written back on Release.
func (l *Lease[T]) Set(v T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.released {
		return ErrReleased
	}
	l.value = v
	l.drop = false
	return nil
}

// Reset marks the session for removal on Release.
func (l *Lease[T]) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero T
	l.value = zero
	l.drop = true
}

// Release writes the value back and frees the user. It is safe to call more than once.
func (l *Lease[T]) Release() {
	l.mu.Lock()
	if l.released {
		l.mu.Unlock()
		return
	}
	l.released = true
	value, drop := l.value, l.drop
	l.mu.Unlock()

	l.store.release(l.userID, value, drop)
	l.cancel()
}
