package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"petpal/internal/ports/session"
)

type Store struct {
	mu   sync.RWMutex
	byID map[string]session.Session
	now  func() time.Time
}

func NewStore() *Store {
	return &Store{
		byID: make(map[string]session.Session),
		now:  time.Now,
	}
}

// WithClock es para tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Save(ctx context.Context, sess session.Session) error {
	if strings.TrimSpace(sess.ID) == "" {
		return errors.New("session id required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.purgeExpiredLocked()
	s.byID[sess.ID] = sess
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (session.Session, error) {
	s.mu.RLock()
	sess, ok := s.byID[id]
	s.mu.RUnlock()

	if !ok {
		return session.Session{}, session.ErrNotFound
	}
	if !sess.ExpiresAt.IsZero() && !s.now().Before(sess.ExpiresAt) {
		_ = s.Delete(ctx, id)
		return session.Session{}, session.ErrNotFound
	}
	return sess, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byID, id)
	return nil
}

func (s *Store) purgeExpiredLocked() {
	now := s.now()
	for id, sess := range s.byID {
		if !sess.ExpiresAt.IsZero() && !now.Before(sess.ExpiresAt) {
			delete(s.byID, id)
		}
	}
}
