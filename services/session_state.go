// services/session_state.go
package services

import (
	"context"
	"log"
	"sync"
	"time"

	"token-claim-service/models"

	"github.com/jonboulle/clockwork"
)

// SessionState is the live projection of one logged-in session: the last
// store-confirmed user row and the claim status derived from it. It only feeds
// the countdown; claims are always decided by ClaimService against the store.
type SessionState struct {
	SessionID string

	mu     sync.RWMutex
	user   models.UserAccount
	status ClaimStatus
	subs   map[chan ClaimStatus]struct{}

	clock  clockwork.Clock
	cancel context.CancelFunc
	done   chan struct{}
}

// Snapshot returns the current projection.
func (s *SessionState) Snapshot() (models.UserAccount, ClaimStatus) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.status
}

// Apply replaces the projection with a store-confirmed user row and publishes
// the recomputed status immediately.
func (s *SessionState) Apply(user models.UserAccount) {
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	s.refresh()
}

// Subscribe returns a channel receiving every recomputed status. The channel
// holds one pending value; slow readers skip ticks rather than block the ticker.
func (s *SessionState) Subscribe() (<-chan ClaimStatus, func()) {
	ch := make(chan ClaimStatus, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			if _, ok := s.subs[ch]; ok {
				delete(s.subs, ch)
				close(ch)
			}
			s.mu.Unlock()
		})
	}
}

func (s *SessionState) refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = ComputeStatus(s.user.LastClaim, s.clock.Now().UTC())
	for ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s.status
	}
}

func (s *SessionState) run(ctx context.Context, tick time.Duration) {
	defer close(s.done)
	ticker := s.clock.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.refresh()
		}
	}
}

func (s *SessionState) stop() {
	s.cancel()
	<-s.done
	s.mu.Lock()
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
	s.mu.Unlock()
}

// SessionStates owns the SessionState of every open session.
type SessionStates struct {
	mu     sync.Mutex
	states map[string]*SessionState
	clock  clockwork.Clock
	tick   time.Duration
}

func NewSessionStates(clock clockwork.Clock, tick time.Duration) *SessionStates {
	return &SessionStates{
		states: make(map[string]*SessionState),
		clock:  clock,
		tick:   tick,
	}
}

// Open starts the state of a session, or refreshes it if already open.
func (m *SessionStates) Open(sessionID string, user models.UserAccount) *SessionState {
	m.mu.Lock()
	if st, ok := m.states[sessionID]; ok {
		m.mu.Unlock()
		st.Apply(user)
		return st
	}

	ctx, cancel := context.WithCancel(context.Background())
	st := &SessionState{
		SessionID: sessionID,
		user:      user,
		subs:      make(map[chan ClaimStatus]struct{}),
		clock:     m.clock,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	st.status = ComputeStatus(user.LastClaim, m.clock.Now().UTC())
	m.states[sessionID] = st
	m.mu.Unlock()

	go st.run(ctx, m.tick)
	return st
}

func (m *SessionStates) Get(sessionID string) (*SessionState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[sessionID]
	return st, ok
}

// ApplyUser pushes a confirmed user row to every open session of that user.
func (m *SessionStates) ApplyUser(user models.UserAccount) {
	m.mu.Lock()
	var targets []*SessionState
	for _, st := range m.states {
		st.mu.RLock()
		match := st.user.ID == user.ID
		st.mu.RUnlock()
		if match {
			targets = append(targets, st)
		}
	}
	m.mu.Unlock()

	for _, st := range targets {
		st.Apply(user)
	}
}

// Close tears down a session's state and its subscribers.
func (m *SessionStates) Close(sessionID string) {
	m.mu.Lock()
	st, ok := m.states[sessionID]
	delete(m.states, sessionID)
	m.mu.Unlock()
	if ok {
		st.stop()
	}
}

// SessionChecker tells whether a session may keep its live state.
type SessionChecker interface {
	IsActive(ctx context.Context, sessionID string) (bool, error)
}

// CloseInactive tears down the state of every session the checker no longer
// accepts (expired, revoked or pruned) and returns how many were closed.
func (m *SessionStates) CloseInactive(ctx context.Context, checker SessionChecker) (int, error) {
	m.mu.Lock()
	ids := make([]string, 0, len(m.states))
	for id := range m.states {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	closed := 0
	for _, id := range ids {
		active, err := checker.IsActive(ctx, id)
		if err != nil {
			return closed, err
		}
		if !active {
			m.Close(id)
			closed++
		}
	}
	if closed > 0 {
		log.Printf("⏹️ [STATE] closed %d inactive session state(s)", closed)
	}
	return closed, nil
}

// CloseAll is used on shutdown.
func (m *SessionStates) CloseAll() {
	m.mu.Lock()
	states := m.states
	m.states = make(map[string]*SessionState)
	m.mu.Unlock()
	for _, st := range states {
		st.stop()
	}
	log.Printf("⏹️ [STATE] closed %d session state(s)", len(states))
}

// Len reports the number of open sessions.
func (m *SessionStates) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.states)
}
