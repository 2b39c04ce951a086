package permission

import (
	"log/slog"

	"github.com/clinicore/access-management/internal"
	"github.com/clinicore/access-management/internal/access"
	"github.com/clinicore/access-management/internal/catalog"
	permissionDatamodel "github.com/clinicore/access-management/internal/core/datamodel/permission"
)

type RepositoryAPI interface {
	GetAll() ([]*permissionDatamodel.PermissionRecord, error)
	GetByRole(role string) ([]*permissionDatamodel.PermissionRecord, error)
	GetByUsername(username string) ([]*permissionDatamodel.PermissionRecord, error)
	GetByScope(role, username, moduleID string) (*permissionDatamodel.PermissionRecord, error)
	Create(record *permissionDatamodel.PermissionRecord) error
	Update(record *permissionDatamodel.PermissionRecord) error
	Delete(id int64) (int64, error)
}

// Service is the server side of the permission store: plain record CRUD.
// It validates role and type against the closed enums but deliberately does
// NOT validate module ids against the catalog: overrides for ids the
// catalog does not (yet) know are stored and stay inert during resolution.
type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) ListAll() ([]*Record, error) {
	rows, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list permission records", "error", err)
		return nil, err
	}
	return fromDataModels(rows), nil
}

func (s *Service) ListByRole(role string) ([]*Record, error) {
	if _, err := catalog.ParseRole(role); err != nil {
		return nil, internal.ErrInvalidRole
	}

	rows, err := s.repo.GetByRole(role)
	if err != nil {
		s.logger.Error("failed to list permission records by role", "role", role, "error", err)
		return nil, err
	}
	return fromDataModels(rows), nil
}

func (s *Service) ListByUsername(username string) ([]*Record, error) {
	if username == "" {
		return nil, internal.NewValidationError("username is required", internal.ErrCodeInvalidUsername)
	}

	rows, err := s.repo.GetByUsername(username)
	if err != nil {
		s.logger.Error("failed to list permission records by username", "username", username, "error", err)
		return nil, err
	}
	return fromDataModels(rows), nil
}

// ListForIdentity returns the records one session should see: the records
// scoped to its role plus the records scoped to its username.
func (s *Service) ListForIdentity(role catalog.Role, username string) ([]*Record, error) {
	roleRows, err := s.repo.GetByRole(string(role))
	if err != nil {
		s.logger.Error("failed to list role permission records", "role", role, "error", err)
		return nil, err
	}

	userRows, err := s.repo.GetByUsername(username)
	if err != nil {
		s.logger.Error("failed to list user permission records", "username", username, "error", err)
		return nil, err
	}

	return fromDataModels(append(roleRows, userRows...)), nil
}

// Upsert keeps at most one record per (role, username, module_id) tuple: an
// existing record gets its type replaced, otherwise a new record is
// created.
func (s *Service) Upsert(req UpsertRequest) (*Record, error) {
	role, err := catalog.ParseRole(req.Role)
	if err != nil {
		return nil, internal.ErrInvalidRole
	}

	permType := access.PermissionType(req.Type)
	if !permType.Valid() {
		return nil, internal.NewValidationError("permission_type must be ADDED or REMOVED", internal.ErrCodeValidationFailed)
	}

	if req.ModuleID == "" {
		return nil, internal.NewValidationError("module_id is required", internal.ErrCodeInvalidModuleID)
	}

	existing, err := s.repo.GetByScope(req.Role, req.Username, req.ModuleID)
	if err != nil {
		s.logger.Error("failed to look up permission record", "module_id", req.ModuleID, "error", err)
		return nil, err
	}

	if existing != nil {
		existing.Role = string(role)
		existing.Type = req.Type
		if err := s.repo.Update(existing); err != nil {
			s.logger.Error("failed to update permission record", "record_id", existing.ID, "error", err)
			return nil, err
		}
		return FromDataModel(existing), nil
	}

	record := ToDataModel(&Record{
		Role:     role,
		Username: req.Username,
		ModuleID: req.ModuleID,
		Type:     permType,
	})
	if err := s.repo.Create(record); err != nil {
		s.logger.Error("failed to create permission record", "module_id", req.ModuleID, "error", err)
		return nil, err
	}

	s.logger.Info("permission record upserted",
		"record_id", record.ID,
		"role", record.Role,
		"username", record.Username,
		"module_id", record.ModuleID,
		"type", record.Type)
	return FromDataModel(record), nil
}

func (s *Service) Delete(id int64) error {
	affected, err := s.repo.Delete(id)
	if err != nil {
		s.logger.Error("failed to delete permission record", "record_id", id, "error", err)
		return err
	}
	if affected == 0 {
		return internal.ErrPermissionNotFound
	}
	return nil
}

func fromDataModels(rows []*permissionDatamodel.PermissionRecord) []*Record {
	records := make([]*Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, FromDataModel(row))
	}
	return records
}
