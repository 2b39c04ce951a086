package access

import (
	"sort"

	"github.com/clinicore/access-management/internal/catalog"
)

// PermissionType classifies a remote permission record: an explicit grant or
// an explicit revocation of one module for one scope.
type PermissionType string

const (
	PermissionAdded   PermissionType = "ADDED"
	PermissionRemoved PermissionType = "REMOVED"
)

func (t PermissionType) Valid() bool {
	return t == PermissionAdded || t == PermissionRemoved
}

// PermissionRecord is a single remote-persisted fact from which override
// maps are rebuilt. Role is always present; a non-empty Username makes the
// record user-scoped (the role then only records the user's role at the
// time of the edit, for bookkeeping).
type PermissionRecord struct {
	ID       int64
	Role     catalog.Role
	Username string
	ModuleID string
	Type     PermissionType
}

// UserScoped reports whether the record targets a single user rather than a
// whole role.
func (r PermissionRecord) UserScoped() bool {
	return r.Username != ""
}

// UpsertEntry is the write-side shape pushed to the permission backend.
type UpsertEntry struct {
	Role     catalog.Role
	Username string
	ModuleID string
	Type     PermissionType
}

// ModuleSet is a set of module ids. Sets absorb duplicate records, which is
// what makes the converter idempotent.
type ModuleSet map[string]struct{}

func NewModuleSet(ids ...string) ModuleSet {
	s := make(ModuleSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s ModuleSet) Add(id string)      { s[id] = struct{}{} }
func (s ModuleSet) Remove(id string)   { delete(s, id) }
func (s ModuleSet) Has(id string) bool { _, ok := s[id]; return ok }
func (s ModuleSet) Len() int           { return len(s) }

// Values returns the ids sorted, for stable JSON output and comparisons.
func (s ModuleSet) Values() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s ModuleSet) clone() ModuleSet {
	out := make(ModuleSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Override adjusts default module visibility for one scope (a role or a
// single user). Invariant: Additional and Removed are disjoint; mutators
// always clear an id from the opposite set before inserting it.
type Override struct {
	Additional ModuleSet
	Removed    ModuleSet
}

func NewOverride() *Override {
	return &Override{
		Additional: NewModuleSet(),
		Removed:    NewModuleSet(),
	}
}

func (o *Override) IsEmpty() bool {
	return o.Additional.Len() == 0 && o.Removed.Len() == 0
}

// Grant records an explicit module grant, displacing any revocation of the
// same id at this layer.
func (o *Override) Grant(moduleID string) {
	o.Removed.Remove(moduleID)
	o.Additional.Add(moduleID)
}

// Revoke records an explicit module revocation, displacing any grant of the
// same id at this layer.
func (o *Override) Revoke(moduleID string) {
	o.Additional.Remove(moduleID)
	o.Removed.Add(moduleID)
}

func (o *Override) clone() *Override {
	return &Override{
		Additional: o.Additional.clone(),
		Removed:    o.Removed.clone(),
	}
}

// Overrides is the in-memory projection of the remote permission record
// collection. The role map is always fully populated for every enum role;
// the user map is sparse: an absent username inherits role resolution
// unchanged.
type Overrides struct {
	Roles map[catalog.Role]*Override
	Users map[string]*Override
}

func NewOverrides() Overrides {
	ov := Overrides{
		Roles: make(map[catalog.Role]*Override, len(catalog.Roles())),
		Users: make(map[string]*Override),
	}
	for _, role := range catalog.Roles() {
		ov.Roles[role] = NewOverride()
	}
	return ov
}

// User returns the override for username, creating an empty one on first
// use.
func (ov Overrides) User(username string) *Override {
	o, ok := ov.Users[username]
	if !ok {
		o = NewOverride()
		ov.Users[username] = o
	}
	return o
}

// Clone deep-copies the maps so snapshots are safe to read while mutations
// continue.
func (ov Overrides) Clone() Overrides {
	out := Overrides{
		Roles: make(map[catalog.Role]*Override, len(ov.Roles)),
		Users: make(map[string]*Override, len(ov.Users)),
	}
	for role, o := range ov.Roles {
		out.Roles[role] = o.clone()
	}
	for username, o := range ov.Users {
		out.Users[username] = o.clone()
	}
	return out
}
