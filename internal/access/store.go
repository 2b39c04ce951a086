package access

import (
	"sync"

	"github.com/clinicore/access-management/internal/catalog"
)

// Store holds the local override maps. It is the explicit state object
// passed into the resolver and synchronizer rather than an ambient
// singleton, which keeps the engine testable in isolation.
//
// Local state is a cache of the remote permission record collection: it can
// be discarded and rebuilt from a fetch at any time via ReplaceAll.
//
// All mutations are idempotent. Module ids are not validated against the
// catalog; an unknown id sits in the maps with no observable effect until
// the catalog gains it.
type Store struct {
	mu        sync.RWMutex
	overrides Overrides
}

func NewStore() *Store {
	return &Store{overrides: NewOverrides()}
}

// Snapshot returns a deep copy safe to resolve against while mutations
// continue on the store.
func (s *Store) Snapshot() Overrides {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overrides.Clone()
}

// ReplaceAll swaps in override maps rebuilt from a fetch, discarding any
// optimistic local edits.
func (s *Store) ReplaceAll(ov Overrides) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides = ov
}

func (s *Store) GrantToRole(role catalog.Role, moduleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides.Roles[role].Grant(moduleID)
}

func (s *Store) RevokeFromRole(role catalog.Role, moduleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides.Roles[role].Revoke(moduleID)
}

// ResetRole replaces the role's override with an empty one, restoring pure
// catalog defaults for that role.
func (s *Store) ResetRole(role catalog.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides.Roles[role] = NewOverride()
}

func (s *Store) GrantToUser(username, moduleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides.User(username).Grant(moduleID)
}

func (s *Store) RevokeFromUser(username, moduleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides.User(username).Revoke(moduleID)
}

// ResetUser deletes the user's entry entirely, so the user falls back to
// pure role resolution.
func (s *Store) ResetUser(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides.Users, username)
}

// ResetAll restores the empty state: one empty override per role, no user
// entries.
func (s *Store) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides = NewOverrides()
}
