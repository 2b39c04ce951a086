package access_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/clinicore/access-management/internal"
	"github.com/clinicore/access-management/internal/access"
	"github.com/clinicore/access-management/internal/catalog"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// MockBackend implements access.BackendAPI for testing.
type MockBackend struct {
	records []access.PermissionRecord
	nextID  int64

	failList   bool
	failUpsert bool
	failDelete bool
	failError  error

	// failDeleteAfter aborts deletes once this many have succeeded; -1
	// disables the trip wire.
	failDeleteAfter int
	deleted         []int64
	upserts         []access.UpsertEntry
}

func NewMockBackend() *MockBackend {
	return &MockBackend{nextID: 1, failDeleteAfter: -1}
}

func (m *MockBackend) Add(rec access.PermissionRecord) access.PermissionRecord {
	rec.ID = m.nextID
	m.nextID++
	m.records = append(m.records, rec)
	return rec
}

func (m *MockBackend) ListAll(ctx context.Context) ([]access.PermissionRecord, error) {
	if m.failList {
		return nil, m.failError
	}
	return append([]access.PermissionRecord{}, m.records...), nil
}

func (m *MockBackend) ListByRole(ctx context.Context, role catalog.Role) ([]access.PermissionRecord, error) {
	if m.failList {
		return nil, m.failError
	}
	var out []access.PermissionRecord
	for _, rec := range m.records {
		if rec.Role == role && !rec.UserScoped() {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *MockBackend) ListByUsername(ctx context.Context, username string) ([]access.PermissionRecord, error) {
	if m.failList {
		return nil, m.failError
	}
	var out []access.PermissionRecord
	for _, rec := range m.records {
		if rec.Username == username {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *MockBackend) Upsert(ctx context.Context, entry access.UpsertEntry) (access.PermissionRecord, error) {
	if m.failUpsert {
		return access.PermissionRecord{}, m.failError
	}
	m.upserts = append(m.upserts, entry)
	return m.Add(access.PermissionRecord{
		Role:     entry.Role,
		Username: entry.Username,
		ModuleID: entry.ModuleID,
		Type:     entry.Type,
	}), nil
}

func (m *MockBackend) Delete(ctx context.Context, id int64) error {
	if m.failDelete {
		return m.failError
	}
	if m.failDeleteAfter >= 0 && len(m.deleted) >= m.failDeleteAfter {
		return m.failError
	}
	m.deleted = append(m.deleted, id)
	for i, rec := range m.records {
		if rec.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			break
		}
	}
	return nil
}

var _ = Describe("Service", func() {
	var (
		backend *MockBackend
		store   *access.Store
		service *access.Service
		ctx     context.Context
	)

	testCatalog := func() *catalog.Catalog {
		return catalog.MustNewCatalog([]catalog.ModuleDescriptor{
			{ID: "dashboard", DefaultRoles: []catalog.Role{catalog.RoleAdmin, catalog.RoleDoctor}},
			{ID: "reports", DefaultRoles: []catalog.Role{catalog.RoleAdmin}},
		})
	}

	BeforeEach(func() {
		backend = NewMockBackend()
		store = access.NewStore()
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = access.NewService(testCatalog(), store, backend, lg)
		ctx = context.Background()
	})

	Describe("FetchAll", func() {
		It("should rebuild local state from the remote records", func() {
			store.GrantToRole(catalog.RoleDoctor, "stale-local-edit")
			backend.Add(access.PermissionRecord{Role: catalog.RoleDoctor, ModuleID: "reports", Type: access.PermissionAdded})

			Expect(service.FetchAll(ctx)).To(Succeed())

			ov := service.Overrides()
			Expect(ov.Roles[catalog.RoleDoctor].Additional.Has("reports")).To(BeTrue())
			Expect(ov.Roles[catalog.RoleDoctor].Additional.Has("stale-local-edit")).To(BeFalse())
		})

		It("should surface a sync error and keep local state on failure", func() {
			store.GrantToRole(catalog.RoleDoctor, "reports")
			backend.failList = true
			backend.failError = errors.New("backend down")

			err := service.FetchAll(ctx)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeSync))

			Expect(service.Overrides().Roles[catalog.RoleDoctor].Additional.Has("reports")).To(BeTrue())
		})
	})

	Describe("FetchMine", func() {
		It("should merge the caller's role and user records", func() {
			backend.Add(access.PermissionRecord{Role: catalog.RoleDoctor, ModuleID: "reports", Type: access.PermissionAdded})
			backend.Add(access.PermissionRecord{Role: catalog.RoleDoctor, Username: "drsmith", ModuleID: "dashboard", Type: access.PermissionRemoved})
			// Another user's record must not leak into this session.
			backend.Add(access.PermissionRecord{Role: catalog.RoleDoctor, Username: "drjones", ModuleID: "reports", Type: access.PermissionRemoved})

			ov, err := service.FetchMine(ctx, catalog.RoleDoctor, "drsmith")
			Expect(err).NotTo(HaveOccurred())

			Expect(ov.Roles[catalog.RoleDoctor].Additional.Has("reports")).To(BeTrue())
			Expect(ov.Users["drsmith"].Removed.Has("dashboard")).To(BeTrue())
			Expect(ov.Users).NotTo(HaveKey("drjones"))
		})

		It("should leave the shared store untouched", func() {
			store.GrantToRole(catalog.RoleDoctor, "reports")
			backend.Add(access.PermissionRecord{Role: catalog.RoleNurse, Username: "nblake", ModuleID: "dashboard", Type: access.PermissionAdded})

			_, err := service.FetchMine(ctx, catalog.RoleNurse, "nblake")
			Expect(err).NotTo(HaveOccurred())

			ov := service.Overrides()
			Expect(ov.Roles[catalog.RoleDoctor].Additional.Has("reports")).To(BeTrue())
			Expect(ov.Users).NotTo(HaveKey("nblake"))
		})

		It("should surface a sync error when a list fails", func() {
			backend.failList = true
			backend.failError = errors.New("backend down")

			_, err := service.FetchMine(ctx, catalog.RoleDoctor, "drsmith")
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeSyncFetchFailed))
		})
	})

	Describe("ModulesForSession", func() {
		It("should apply a user-level revocation to that session", func() {
			backend.Add(access.PermissionRecord{Role: catalog.RoleDoctor, Username: "drsmith", ModuleID: "dashboard", Type: access.PermissionRemoved})

			modules, err := service.ModulesForSession(ctx, catalog.RoleDoctor, "drsmith")
			Expect(err).NotTo(HaveOccurred())
			Expect(moduleIDs(modules)).NotTo(ContainElement("dashboard"))
		})

		It("should keep one session's view intact across another session's fetch", func() {
			backend.Add(access.PermissionRecord{Role: catalog.RoleDoctor, Username: "drsmith", ModuleID: "dashboard", Type: access.PermissionRemoved})

			modules, err := service.ModulesForSession(ctx, catalog.RoleDoctor, "drsmith")
			Expect(err).NotTo(HaveOccurred())
			Expect(moduleIDs(modules)).NotTo(ContainElement("dashboard"))

			// Another session fetching in between must not resurrect the
			// revoked module for drsmith.
			_, err = service.FetchMine(ctx, catalog.RoleNurse, "bob")
			Expect(err).NotTo(HaveOccurred())

			modules, err = service.ModulesForSession(ctx, catalog.RoleDoctor, "drsmith")
			Expect(err).NotTo(HaveOccurred())
			Expect(moduleIDs(modules)).NotTo(ContainElement("dashboard"))
		})
	})

	Describe("optimistic mutations", func() {
		It("should apply locally and push the matching record", func() {
			Expect(service.GrantToRole(ctx, catalog.RoleDoctor, "reports")).To(Succeed())

			Expect(service.Overrides().Roles[catalog.RoleDoctor].Additional.Has("reports")).To(BeTrue())
			Expect(backend.upserts).To(HaveLen(1))
			Expect(backend.upserts[0]).To(Equal(access.UpsertEntry{
				Role:     catalog.RoleDoctor,
				ModuleID: "reports",
				Type:     access.PermissionAdded,
			}))
		})

		It("should record the user's role on user-level pushes", func() {
			Expect(service.RevokeFromUser(ctx, catalog.RoleDoctor, "drsmith", "reports")).To(Succeed())

			Expect(backend.upserts[0]).To(Equal(access.UpsertEntry{
				Role:     catalog.RoleDoctor,
				Username: "drsmith",
				ModuleID: "reports",
				Type:     access.PermissionRemoved,
			}))
		})

		It("should keep the optimistic local edit when the push fails", func() {
			backend.failUpsert = true
			backend.failError = errors.New("write refused")

			err := service.GrantToRole(ctx, catalog.RoleDoctor, "reports")
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeSyncPushFailed))

			// Local state stays optimistic; the caller resynchronizes.
			Expect(service.Overrides().Roles[catalog.RoleDoctor].Additional.Has("reports")).To(BeTrue())
		})

		It("should resolve against optimistic state immediately", func() {
			Expect(service.GrantToRole(ctx, catalog.RoleDoctor, "reports")).To(Succeed())

			Expect(moduleIDs(service.VisibleModules(catalog.RoleDoctor, ""))).
				To(Equal([]string{"dashboard", "reports"}))
		})
	})

	Describe("remote resets", func() {
		BeforeEach(func() {
			backend.Add(access.PermissionRecord{Role: catalog.RoleDoctor, ModuleID: "reports", Type: access.PermissionAdded})
			backend.Add(access.PermissionRecord{Role: catalog.RoleDoctor, ModuleID: "dashboard", Type: access.PermissionRemoved})
			backend.Add(access.PermissionRecord{Role: catalog.RoleDoctor, Username: "drsmith", ModuleID: "reports", Type: access.PermissionRemoved})
			Expect(service.FetchAll(ctx)).To(Succeed())
		})

		It("should delete each role-scoped record and reset the role locally", func() {
			Expect(service.ResetRoleRemote(ctx, catalog.RoleDoctor)).To(Succeed())

			Expect(backend.deleted).To(Equal([]int64{1, 2}))
			Expect(service.Overrides().Roles[catalog.RoleDoctor].IsEmpty()).To(BeTrue())
			// User-scoped records survive a role reset.
			Expect(service.Overrides().Users).To(HaveKey("drsmith"))
		})

		It("should delete user records and drop the user's entry", func() {
			Expect(service.ResetUserRemote(ctx, "drsmith")).To(Succeed())

			Expect(backend.deleted).To(Equal([]int64{3}))
			Expect(service.Overrides().Users).NotTo(HaveKey("drsmith"))
		})

		It("should clear everything on ResetAllRemote", func() {
			Expect(service.ResetAllRemote(ctx)).To(Succeed())

			Expect(backend.deleted).To(HaveLen(3))
			ov := service.Overrides()
			for _, role := range catalog.Roles() {
				Expect(ov.Roles[role].IsEmpty()).To(BeTrue())
			}
			Expect(ov.Users).To(BeEmpty())
		})

		It("should abort mid-batch on a delete failure and keep local state", func() {
			backend.failDeleteAfter = 1
			backend.failError = errors.New("delete refused")

			err := service.ResetRoleRemote(ctx, catalog.RoleDoctor)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeSyncDeleteFailed))

			// One delete landed remotely, the local reset never ran: a
			// later FetchAll reflects the mixed remote state.
			Expect(backend.deleted).To(HaveLen(1))
			Expect(service.Overrides().Roles[catalog.RoleDoctor].IsEmpty()).To(BeFalse())

			Expect(service.FetchAll(ctx)).To(Succeed())
			ov := service.Overrides()
			Expect(ov.Roles[catalog.RoleDoctor].Additional.Has("reports")).To(BeFalse())
			Expect(ov.Roles[catalog.RoleDoctor].Removed.Has("dashboard")).To(BeTrue())
		})
	})
})
