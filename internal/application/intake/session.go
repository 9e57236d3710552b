package intake

import (
	"container/list"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/faction-bank/internal/domain/entity"
)

// Phase is the step a prompt session is waiting on
type Phase int

const (
	PhaseForm Phase = iota + 1
	PhaseCondition
)

// Session is one in-flight entry prompt
type Session struct {
	ID      string
	Owner   entity.Member
	Phase   Phase
	Amount  int64
	Comment string

	expiresAt time.Time
}

// SessionStore keeps prompt sessions for an idle timeout, evicting the
// least recently used ones beyond maxEntries
type SessionStore struct {
	mu         sync.Mutex
	items      map[string]*list.Element
	order      *list.List
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

// NewSessionStore creates a store with the given idle timeout and capacity
func NewSessionStore(ttl time.Duration, maxEntries int) *SessionStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 10000
	}
	return &SessionStore{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Open starts a new session in the form phase
func (s *SessionStore) Open(owner entity.Member) Session {
	sess := &Session{ID: uuid.NewString(), Owner: owner, Phase: PhaseForm}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess.expiresAt = s.now().Add(s.ttl)
	s.items[sess.ID] = s.order.PushFront(sess)
	s.trim()
	return *sess
}

// Get returns a live session
func (s *SessionStore) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.live(id)
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// Update stores a changed session and restarts its idle timer.
// It returns false when the session already expired or was taken.
func (s *SessionStore) Update(sess Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.live(sess.ID)
	if !ok {
		return false
	}
	*cur = sess
	cur.expiresAt = s.now().Add(s.ttl)
	s.order.MoveToFront(s.items[sess.ID])
	return true
}

// Take removes and returns a live session, so only one caller can finish it
func (s *SessionStore) Take(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.live(id)
	if !ok {
		return Session{}, false
	}
	s.order.Remove(s.items[id])
	delete(s.items, id)
	return *sess, true
}

// Sweep drops expired sessions and returns how many were removed
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for elem := s.order.Back(); elem != nil; {
		prev := elem.Prev()
		sess := elem.Value.(*Session)
		if now.After(sess.expiresAt) {
			s.order.Remove(elem)
			delete(s.items, sess.ID)
			removed++
		}
		elem = prev
	}
	return removed
}

// Len returns the number of stored sessions, expired or not
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *SessionStore) live(id string) (*Session, bool) {
	elem, ok := s.items[id]
	if !ok {
		return nil, false
	}
	sess := elem.Value.(*Session)
	if s.now().After(sess.expiresAt) {
		s.order.Remove(elem)
		delete(s.items, id)
		return nil, false
	}
	return sess, true
}

func (s *SessionStore) trim() {
	for len(s.items) > s.maxEntries {
		elem := s.order.Back()
		if elem == nil {
			return
		}
		delete(s.items, elem.Value.(*Session).ID)
		s.order.Remove(elem)
	}
}
