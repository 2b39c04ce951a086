package postgres

import (
	permissionDatamodel "github.com/clinicore/access-management/internal/core/datamodel/permission"
	"github.com/clinicore/access-management/internal/permission"
	"gorm.io/gorm"
)

type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) permission.RepositoryAPI {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) GetAll() ([]*permissionDatamodel.PermissionRecord, error) {
	var records []*permissionDatamodel.PermissionRecord
	err := r.db.Order("id ASC").Find(&records).Error
	return records, err
}

// GetByRole returns only role-scoped records: records carrying a username
// belong to that user, even though they also store the user's role.
func (r *PermissionRepository) GetByRole(role string) ([]*permissionDatamodel.PermissionRecord, error) {
	var records []*permissionDatamodel.PermissionRecord
	err := r.db.Where("role = ? AND username = ''", role).Order("id ASC").Find(&records).Error
	return records, err
}

func (r *PermissionRepository) GetByUsername(username string) ([]*permissionDatamodel.PermissionRecord, error) {
	var records []*permissionDatamodel.PermissionRecord
	err := r.db.Where("username = ?", username).Order("id ASC").Find(&records).Error
	return records, err
}

func (r *PermissionRepository) GetByScope(role, username, moduleID string) (*permissionDatamodel.PermissionRecord, error) {
	var record permissionDatamodel.PermissionRecord
	err := r.db.Where("role = ? AND username = ? AND module_id = ?", role, username, moduleID).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *PermissionRepository) Create(record *permissionDatamodel.PermissionRecord) error {
	return r.db.Create(record).Error
}

func (r *PermissionRepository) Update(record *permissionDatamodel.PermissionRecord) error {
	return r.db.Save(record).Error
}

func (r *PermissionRepository) Delete(id int64) (int64, error) {
	result := r.db.Delete(&permissionDatamodel.PermissionRecord{}, id)
	return result.RowsAffected, result.Error
}
