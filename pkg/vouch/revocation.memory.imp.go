// File: revocation.memory.imp.go

package vouch

import (
	"context"
	"sync"

	"github.com/zeromicro/go-zero/core/logx"
)

// MemoryRevocationStore is an in-memory, authoritative RevocationStore for
// single-instance deployments and testing.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	records map[Identifier]RevocationRecord
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{records: make(map[Identifier]RevocationRecord)}
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, record RevocationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.Identifier] = record
	logx.Infof("vouch: revoked %s: %s", record.Identifier, record.Reason)
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, identifier Identifier) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[identifier]
	if !ok {
		return false, nil
	}
	return isEffective(record, unixNow()), nil
}

func (s *MemoryRevocationStore) Get(_ context.Context, identifier Identifier) (*RevocationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[identifier]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (s *MemoryRevocationStore) List(_ context.Context) ([]RevocationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RevocationRecord, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record)
	}
	return out, nil
}

func (s *MemoryRevocationStore) Reinstate(_ context.Context, identifier Identifier) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[identifier]; !ok {
		return false, nil
	}
	delete(s.records, identifier)
	logx.Infof("vouch: reinstated %s", identifier)
	return true, nil
}
