package identity

import (
	"context"
	"sync"

	"github.com/ground-x/feedscore/errs"
	"github.com/ground-x/feedscore/types"
)

// MapStore is an in-memory IdentityStore: a registry of address -> public
// encryption key, populated out of band (e.g. from account registration
// events upstream of this module). It stands in for the real identity
// directory at the node's boundary (spec §1 non-goals: credential/identity
// infrastructure lives outside the feeds core).
type MapStore struct {
	mu   sync.RWMutex
	keys map[types.Address]types.EncryptKey
}

func NewMapStore() *MapStore {
	return &MapStore{keys: make(map[types.Address]types.EncryptKey)}
}

func (s *MapStore) Register(addr types.Address, key types.EncryptKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[addr] = key
}

func (s *MapStore) EncryptKeyFor(ctx context.Context, addr types.Address) (types.EncryptKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.keys[addr]
	if !ok {
		return "", errs.New(errs.NotFound, "no encryption key registered for address")
	}
	return key, nil
}
