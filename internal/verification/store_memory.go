package verification

import (
	"context"
	"sync"
	"time"

	id "onboard/pkg/domain"
	"onboard/pkg/platform/sentinel"
)

type storedCode struct {
	record    CodeRecord
	expiresAt time.Time
}

type channelKey struct {
	identityID id.IdentityID
	channel    Channel
}

// InMemoryStore holds codes and verified flags behind a mutex.
type InMemoryStore struct {
	mu       sync.RWMutex
	codes    map[channelKey]storedCode
	verified map[channelKey]bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		codes:    make(map[channelKey]storedCode),
		verified: make(map[channelKey]bool),
	}
}

func (s *InMemoryStore) PutCode(_ context.Context, identityID id.IdentityID, channel Channel, record CodeRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[channelKey{identityID, channel}] = storedCode{
		record:    record,
		expiresAt: record.IssuedAt.Add(ttl),
	}
	return nil
}

func (s *InMemoryStore) GetCode(_ context.Context, identityID id.IdentityID, channel Channel) (CodeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.codes[channelKey{identityID, channel}]
	if !ok {
		return CodeRecord{}, sentinel.ErrNotFound
	}
	if time.Now().After(stored.expiresAt) {
		return CodeRecord{}, sentinel.ErrExpired
	}
	return stored.record, nil
}

func (s *InMemoryStore) DeleteCode(_ context.Context, identityID id.IdentityID, channel Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, channelKey{identityID, channel})
	return nil
}

func (s *InMemoryStore) MarkVerified(_ context.Context, identityID id.IdentityID, channel Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verified[channelKey{identityID, channel}] = true
	return nil
}

func (s *InMemoryStore) IsVerified(_ context.Context, identityID id.IdentityID, channel Channel) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.verified[channelKey{identityID, channel}], nil
}
