package permission

import (
	"github.com/clinicore/access-management/internal/access"
	"github.com/clinicore/access-management/internal/catalog"
	permissionDatamodel "github.com/clinicore/access-management/internal/core/datamodel/permission"
)

// Record is the domain view of one persisted permission fact. A record with
// an empty Username is role-scoped; otherwise it targets a single user and
// Role only documents that user's role at the time of the edit.
type Record struct {
	ID       int64
	Role     catalog.Role
	Username string
	ModuleID string
	Type     access.PermissionType
}

func (r *Record) UserScoped() bool {
	return r.Username != ""
}

func ToDataModel(r *Record) *permissionDatamodel.PermissionRecord {
	return &permissionDatamodel.PermissionRecord{
		ID:       r.ID,
		Role:     string(r.Role),
		Username: r.Username,
		ModuleID: r.ModuleID,
		Type:     string(r.Type),
	}
}

func FromDataModel(m *permissionDatamodel.PermissionRecord) *Record {
	return &Record{
		ID:       m.ID,
		Role:     catalog.Role(m.Role),
		Username: m.Username,
		ModuleID: m.ModuleID,
		Type:     access.PermissionType(m.Type),
	}
}
