package access

import (
	"context"
	"log/slog"

	"github.com/clinicore/access-management/internal"
	"github.com/clinicore/access-management/internal/catalog"
)

// BackendAPI is the permission record store the synchronizer talks to. The
// REST implementation lives in internal/permissionapi; tests substitute
// mocks.
type BackendAPI interface {
	ListAll(ctx context.Context) ([]PermissionRecord, error)
	ListByRole(ctx context.Context, role catalog.Role) ([]PermissionRecord, error)
	ListByUsername(ctx context.Context, username string) ([]PermissionRecord, error)
	Upsert(ctx context.Context, entry UpsertEntry) (PermissionRecord, error)
	Delete(ctx context.Context, id int64) error
}

// Service bridges the local override store to the remote permission
// backend.
//
// Mutations follow a two-phase protocol: the local store is updated first
// (optimistic), then the corresponding record is pushed. On push failure the
// local edit is NOT rolled back: the error surfaces to the caller, whose
// contract is to resynchronize via FetchAll. The remote store is the source
// of truth; FetchAll fully overwrites local state.
//
// The shared store serves the admin mutation flow only. Session reads go
// through ModulesForSession, which resolves against the session's own
// fetched records so concurrent sessions cannot replace each other's view
// between fetch and resolve.
type Service struct {
	catalog *catalog.Catalog
	store   *Store
	backend BackendAPI
	logger  *slog.Logger
}

func NewService(cat *catalog.Catalog, store *Store, backend BackendAPI, logger *slog.Logger) *Service {
	return &Service{
		catalog: cat,
		store:   store,
		backend: backend,
		logger:  logger,
	}
}

// VisibleModules resolves the module list for a role/username pair against
// the current local state. Pass an empty username for pure role resolution.
func (s *Service) VisibleModules(role catalog.Role, username string) []catalog.ModuleDescriptor {
	return Resolve(s.catalog, role, username, s.store.Snapshot())
}

// FetchAll retrieves every permission record and rebuilds local state from
// it. Admin sessions use this so edits operate on ground truth.
func (s *Service) FetchAll(ctx context.Context) error {
	records, err := s.backend.ListAll(ctx)
	if err != nil {
		s.logger.Error("fetch all permissions failed", "error", err)
		return internal.NewSyncError("failed to fetch permission records", internal.ErrCodeSyncFetchFailed, err)
	}

	s.store.ReplaceAll(Convert(records))
	s.logger.Info("permission state rebuilt from remote", "records", len(records))
	return nil
}

// FetchMine retrieves the records applicable to one session (the caller's
// role-scoped records plus their user-scoped records) and returns the
// overrides built from them. The shared store is left alone: the result
// belongs to this session only, and writing it to the store would let
// concurrent sessions overwrite each other's view.
func (s *Service) FetchMine(ctx context.Context, role catalog.Role, username string) (Overrides, error) {
	roleRecords, err := s.backend.ListByRole(ctx, role)
	if err != nil {
		s.logger.Error("fetch role permissions failed", "role", role, "error", err)
		return Overrides{}, internal.NewSyncError("failed to fetch role permission records", internal.ErrCodeSyncFetchFailed, err)
	}

	userRecords, err := s.backend.ListByUsername(ctx, username)
	if err != nil {
		s.logger.Error("fetch user permissions failed", "username", username, "error", err)
		return Overrides{}, internal.NewSyncError("failed to fetch user permission records", internal.ErrCodeSyncFetchFailed, err)
	}

	return Convert(append(roleRecords, userRecords...)), nil
}

// ModulesForSession fetches the caller's slice of the permission store and
// resolves it in one step. Fetch and resolve share one overrides value, so
// the result is consistent no matter what other sessions do in between.
func (s *Service) ModulesForSession(ctx context.Context, role catalog.Role, username string) ([]catalog.ModuleDescriptor, error) {
	ov, err := s.FetchMine(ctx, role, username)
	if err != nil {
		return nil, err
	}
	return Resolve(s.catalog, role, username, ov), nil
}

// GrantToRole applies the grant locally, then pushes it. See the type
// comment for the failure contract.
func (s *Service) GrantToRole(ctx context.Context, role catalog.Role, moduleID string) error {
	s.store.GrantToRole(role, moduleID)
	return s.push(ctx, UpsertEntry{Role: role, ModuleID: moduleID, Type: PermissionAdded})
}

func (s *Service) RevokeFromRole(ctx context.Context, role catalog.Role, moduleID string) error {
	s.store.RevokeFromRole(role, moduleID)
	return s.push(ctx, UpsertEntry{Role: role, ModuleID: moduleID, Type: PermissionRemoved})
}

// GrantToUser applies a user-level grant. The role parameter records the
// user's current role on the remote record for bookkeeping; resolution
// never reads it back for user-scoped records.
func (s *Service) GrantToUser(ctx context.Context, role catalog.Role, username, moduleID string) error {
	s.store.GrantToUser(username, moduleID)
	return s.push(ctx, UpsertEntry{Role: role, Username: username, ModuleID: moduleID, Type: PermissionAdded})
}

func (s *Service) RevokeFromUser(ctx context.Context, role catalog.Role, username, moduleID string) error {
	s.store.RevokeFromUser(username, moduleID)
	return s.push(ctx, UpsertEntry{Role: role, Username: username, ModuleID: moduleID, Type: PermissionRemoved})
}

func (s *Service) push(ctx context.Context, entry UpsertEntry) error {
	if _, err := s.backend.Upsert(ctx, entry); err != nil {
		s.logger.Error("permission push failed, local state left optimistic",
			"role", entry.Role,
			"username", entry.Username,
			"module_id", entry.ModuleID,
			"type", entry.Type,
			"error", err)
		return internal.NewSyncError("failed to push permission record", internal.ErrCodeSyncPushFailed, err)
	}
	return nil
}

// ResetRoleRemote deletes every record scoped to role, one by one, then
// resets the role locally. Not atomic: a failure partway through aborts the
// sequence and leaves the remote store in a mixed state that the next
// FetchAll will faithfully reflect.
func (s *Service) ResetRoleRemote(ctx context.Context, role catalog.Role) error {
	records, err := s.backend.ListByRole(ctx, role)
	if err != nil {
		return internal.NewSyncError("failed to list role permission records", internal.ErrCodeSyncFetchFailed, err)
	}

	if err := s.deleteAll(ctx, records); err != nil {
		return err
	}

	s.store.ResetRole(role)
	s.logger.Info("role overrides reset", "role", role, "deleted", len(records))
	return nil
}

// ResetUserRemote deletes every record scoped to username, then drops the
// user's local entry. Same non-atomicity as ResetRoleRemote.
func (s *Service) ResetUserRemote(ctx context.Context, username string) error {
	records, err := s.backend.ListByUsername(ctx, username)
	if err != nil {
		return internal.NewSyncError("failed to list user permission records", internal.ErrCodeSyncFetchFailed, err)
	}

	if err := s.deleteAll(ctx, records); err != nil {
		return err
	}

	s.store.ResetUser(username)
	s.logger.Info("user overrides reset", "username", username, "deleted", len(records))
	return nil
}

// ResetAllRemote deletes every record, then resets local state entirely.
func (s *Service) ResetAllRemote(ctx context.Context) error {
	records, err := s.backend.ListAll(ctx)
	if err != nil {
		return internal.NewSyncError("failed to list permission records", internal.ErrCodeSyncFetchFailed, err)
	}

	if err := s.deleteAll(ctx, records); err != nil {
		return err
	}

	s.store.ResetAll()
	s.logger.Info("all overrides reset", "deleted", len(records))
	return nil
}

func (s *Service) deleteAll(ctx context.Context, records []PermissionRecord) error {
	for _, rec := range records {
		if err := s.backend.Delete(ctx, rec.ID); err != nil {
			s.logger.Error("permission delete failed mid-batch",
				"record_id", rec.ID,
				"module_id", rec.ModuleID,
				"error", err)
			return internal.NewSyncError("failed to delete permission record", internal.ErrCodeSyncDeleteFailed, err)
		}
	}
	return nil
}

// Overrides exposes the current local override maps, for the admin screen.
func (s *Service) Overrides() Overrides {
	return s.store.Snapshot()
}
