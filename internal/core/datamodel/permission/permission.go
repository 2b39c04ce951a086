package permission

import "time"

// PermissionRecord is the persisted permission fact. Username is empty for
// role-scoped records; the composite unique index keeps at most one record
// per (role, username, module_id) tuple so upserts update the type in
// place.
type PermissionRecord struct {
	ID        int64     `gorm:"primaryKey"`
	Role      string    `gorm:"column:role;size:32;not null;uniqueIndex:idx_permission_scope"`
	Username  string    `gorm:"column:username;size:128;not null;default:'';uniqueIndex:idx_permission_scope"`
	ModuleID  string    `gorm:"column:module_id;size:64;not null;uniqueIndex:idx_permission_scope"`
	Type      string    `gorm:"column:permission_type;size:16;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (PermissionRecord) TableName() string {
	return "permission_records"
}
