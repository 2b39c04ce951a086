package access

// Convert folds a flat list of remote permission records into override
// maps. The function is pure, order-independent and idempotent: sets absorb
// duplicates, so Convert(r) == Convert(shuffle(r)) == Convert(append(r, r...)).
//
// Records carrying a role outside the enum are skipped; the remote store
// does not validate them and the engine has no bucket to file them under.
func Convert(records []PermissionRecord) Overrides {
	ov := NewOverrides()

	for _, rec := range records {
		var target *Override
		if rec.UserScoped() {
			target = ov.User(rec.Username)
		} else {
			var ok bool
			target, ok = ov.Roles[rec.Role]
			if !ok {
				continue
			}
		}

		switch rec.Type {
		case PermissionAdded:
			target.Additional.Add(rec.ModuleID)
		case PermissionRemoved:
			target.Removed.Add(rec.ModuleID)
		}
	}

	return ov
}
