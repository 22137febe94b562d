package memory

import (
	"context"
	"sync"

	"github.com/BrandonDHaskell/rollcall/internal/rollcall/store"
	"github.com/BrandonDHaskell/rollcall/internal/rollcall/types"
)

type PersonStore struct {
	mu      sync.RWMutex
	people  map[string]types.Person
	failErr error
}

func NewPersonStore() *PersonStore {
	return &PersonStore{people: make(map[string]types.Person)}
}

// FailWith makes every subsequent call fail. Test-only helper.
func (s *PersonStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

func (s *PersonStore) UpsertPerson(_ context.Context, p types.Person) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return false, store.Unavailable("UpsertPerson", s.failErr)
	}

	for tag, other := range s.people {
		if tag != p.TagID && other.EmployeeID == p.EmployeeID {
			return false, &store.ConflictError{EmployeeID: p.EmployeeID}
		}
	}

	_, existed := s.people[p.TagID]
	s.people[p.TagID] = p
	return !existed, nil
}

func (s *PersonStore) GetPerson(_ context.Context, tagID string) (*types.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failErr != nil {
		return nil, store.Unavailable("GetPerson", s.failErr)
	}
	p, ok := s.people[tagID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *PersonStore) GetPeople(_ context.Context, tagIDs []string) (map[string]types.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failErr != nil {
		return nil, store.Unavailable("GetPeople", s.failErr)
	}
	out := make(map[string]types.Person, len(tagIDs))
	for _, id := range tagIDs {
		if p, ok := s.people[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *PersonStore) CountPeople(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failErr != nil {
		return 0, store.Unavailable("CountPeople", s.failErr)
	}
	return len(s.people), nil
}
