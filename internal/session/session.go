// Package session owns the authentication credential and its lifecycle.
//
// The session is always in exactly one of three phases: Loading until the
// persisted credential has been resolved, then Anonymous or Authenticated.
// Login and Logout persist the credential before publishing the new phase,
// so a crash between the two leaves disk and memory consistent with "not
// yet transitioned". A credential is only observable in the Authenticated
// phase; partial states are unrepresentable.
package session

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Phase is the process-wide session state.
type Phase int

const (
	// Loading means the persisted credential has not been resolved yet.
	Loading Phase = iota
	// Anonymous means no credential is present.
	Anonymous
	// Authenticated means a credential is present.
	Authenticated
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Credential is the (token, user id) pair proving an authenticated session.
type Credential struct {
	Token  string
	UserID int64
}

// Storage persists the credential between process runs.
type Storage interface {
	// Load returns the stored credential, or ok=false if none is stored.
	Load() (cred Credential, ok bool, err error)
	// Save stores the credential durably.
	Save(Credential) error
	// Clear erases the stored credential. Clearing an empty store is not
	// an error.
	Clear() error
}

// Store is the single source of truth for the session phase and the
// credential's durability. Every transition is observed synchronously by
// all subscribers. Login and Logout must not overlap; the front end
// serializes them by disabling the triggering control while one is in
// flight.
type Store struct {
	mu       sync.Mutex
	phase    Phase
	cred     Credential
	restored bool
	subs     map[int]func(Phase, Credential)
	nextSub  int
	storage  Storage
	log      *zap.Logger
}

// New returns a Store in the Loading phase.
func New(storage Storage, log *zap.Logger) *Store {
	return &Store{
		phase:   Loading,
		subs:    make(map[int]func(Phase, Credential)),
		storage: storage,
		log:     log,
	}
}

// Restore reads the persisted credential and moves the store out of the
// Loading phase, exactly once. It fails soft: a read error and an absent
// credential both resolve to Anonymous, never to an error surfaced to the
// user. Calling Restore again is a no-op.
func (s *Store) Restore() {
	s.mu.Lock()
	if s.restored {
		s.mu.Unlock()
		return
	}
	s.restored = true

	cred, ok, err := s.storage.Load()
	if err != nil {
		s.log.Warn("credential restore failed, starting anonymous", zap.Error(err))
		ok = false
	}
	if ok && cred.Token != "" {
		s.phase = Authenticated
		s.cred = cred
	} else {
		s.phase = Anonymous
		s.cred = Credential{}
	}
	phase, current, subs := s.phase, s.cred, s.snapshotSubs()
	s.mu.Unlock()

	s.log.Info("session restored", zap.Stringer("phase", phase))
	for _, fn := range subs {
		fn(phase, current)
	}
}

// Login persists the credential durably, then publishes the Authenticated
// phase to all current subscribers and future readers.
func (s *Store) Login(token string, userID int64) error {
	cred := Credential{Token: token, UserID: userID}
	if err := s.storage.Save(cred); err != nil {
		return fmt.Errorf("persisting credential: %w", err)
	}

	s.mu.Lock()
	s.phase = Authenticated
	s.cred = cred
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(Authenticated, cred)
	}
	return nil
}

// Logout erases the persisted credential, then publishes the Anonymous
// phase. It is purely local and succeeds without network connectivity.
func (s *Store) Logout() error {
	if err := s.storage.Clear(); err != nil {
		return fmt.Errorf("clearing credential: %w", err)
	}

	s.mu.Lock()
	s.phase = Anonymous
	s.cred = Credential{}
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(Anonymous, Credential{})
	}
	return nil
}

// Phase returns the current session phase.
func (s *Store) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Credential returns the current credential. ok is false unless the
// session is Authenticated.
func (s *Store) Credential() (Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != Authenticated {
		return Credential{}, false
	}
	return s.cred, true
}

// Token implements the gateway's token source. ok is false unless the
// session is Authenticated.
func (s *Store) Token() (string, bool) {
	cred, ok := s.Credential()
	return cred.Token, ok
}

// Subscribe registers fn to be called synchronously on every phase
// transition. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Phase, Credential)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// snapshotSubs must be called with s.mu held.
func (s *Store) snapshotSubs() []func(Phase, Credential) {
	out := make([]func(Phase, Credential), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}
