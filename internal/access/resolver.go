package access

import (
	"github.com/clinicore/access-management/internal/catalog"
)

// Resolve computes the final visible module list for a role/username pair.
// Pure and total: same inputs, same ordered output, no I/O.
//
// Per module, layered most-specific-last:
//
//  1. start from catalog default role membership
//  2. apply the role override, removal first, then addition; within one
//     layer an explicit grant beats an explicit revocation
//  3. if username has an override entry, apply it the same way; the user
//     layer dominates the role layer
//
// Resolution iterates the catalog, never the override sets, so override
// entries referencing unknown module ids are inert rather than errors.
func Resolve(cat *catalog.Catalog, role catalog.Role, username string, ov Overrides) []catalog.ModuleDescriptor {
	var userOverride *Override
	if username != "" {
		userOverride = ov.Users[username]
	}
	roleOverride := ov.Roles[role]

	visible := make([]catalog.ModuleDescriptor, 0, cat.Len())
	for _, m := range cat.All() {
		allowed := m.DefaultFor(role)

		if roleOverride != nil {
			if roleOverride.Removed.Has(m.ID) {
				allowed = false
			}
			if roleOverride.Additional.Has(m.ID) {
				allowed = true
			}
		}

		if userOverride != nil {
			if userOverride.Removed.Has(m.ID) {
				allowed = false
			}
			if userOverride.Additional.Has(m.ID) {
				allowed = true
			}
		}

		if allowed {
			visible = append(visible, m)
		}
	}

	return visible
}
