package access_test

import (
	"github.com/clinicore/access-management/internal/access"
	"github.com/clinicore/access-management/internal/catalog"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Store", func() {
	var store *access.Store

	BeforeEach(func() {
		store = access.NewStore()
	})

	Describe("role mutations", func() {
		It("should keep additional and removed sets disjoint", func() {
			store.RevokeFromRole(catalog.RoleDoctor, "reports")
			store.GrantToRole(catalog.RoleDoctor, "reports")

			ov := store.Snapshot()
			Expect(ov.Roles[catalog.RoleDoctor].Additional.Has("reports")).To(BeTrue())
			Expect(ov.Roles[catalog.RoleDoctor].Removed.Has("reports")).To(BeFalse())

			store.RevokeFromRole(catalog.RoleDoctor, "reports")

			ov = store.Snapshot()
			Expect(ov.Roles[catalog.RoleDoctor].Additional.Has("reports")).To(BeFalse())
			Expect(ov.Roles[catalog.RoleDoctor].Removed.Has("reports")).To(BeTrue())
		})

		It("should be idempotent", func() {
			store.GrantToRole(catalog.RoleNurse, "lab-results")
			first := store.Snapshot()

			store.GrantToRole(catalog.RoleNurse, "lab-results")
			Expect(store.Snapshot()).To(Equal(first))
		})

		It("should reset one role without touching the others", func() {
			store.GrantToRole(catalog.RoleDoctor, "reports")
			store.GrantToRole(catalog.RoleNurse, "reports")

			store.ResetRole(catalog.RoleDoctor)

			ov := store.Snapshot()
			Expect(ov.Roles[catalog.RoleDoctor].IsEmpty()).To(BeTrue())
			Expect(ov.Roles[catalog.RoleNurse].Additional.Has("reports")).To(BeTrue())
		})
	})

	Describe("user mutations", func() {
		It("should create the user entry on first edit", func() {
			Expect(store.Snapshot().Users).To(BeEmpty())

			store.GrantToUser("drsmith", "reports")

			ov := store.Snapshot()
			Expect(ov.Users).To(HaveKey("drsmith"))
			Expect(ov.Users["drsmith"].Additional.Has("reports")).To(BeTrue())
		})

		It("should delete the entry entirely on reset", func() {
			store.GrantToUser("drsmith", "reports")
			store.ResetUser("drsmith")

			Expect(store.Snapshot().Users).NotTo(HaveKey("drsmith"))
		})

		It("should tolerate resetting an unknown user", func() {
			Expect(func() { store.ResetUser("ghost") }).NotTo(Panic())
		})
	})

	Describe("ResetAll", func() {
		It("should restore the empty state", func() {
			store.GrantToRole(catalog.RoleDoctor, "reports")
			store.RevokeFromUser("mrivera", "billing")

			store.ResetAll()

			ov := store.Snapshot()
			for _, role := range catalog.Roles() {
				Expect(ov.Roles[role].IsEmpty()).To(BeTrue())
			}
			Expect(ov.Users).To(BeEmpty())
		})
	})

	Describe("Snapshot", func() {
		It("should be isolated from later mutations", func() {
			store.GrantToRole(catalog.RoleDoctor, "reports")
			snap := store.Snapshot()

			store.RevokeFromRole(catalog.RoleDoctor, "reports")

			Expect(snap.Roles[catalog.RoleDoctor].Additional.Has("reports")).To(BeTrue())
		})
	})

	Describe("ReplaceAll", func() {
		It("should discard optimistic local edits", func() {
			store.GrantToRole(catalog.RoleDoctor, "reports")

			store.ReplaceAll(access.Convert([]access.PermissionRecord{
				{ID: 1, Role: catalog.RoleNurse, ModuleID: "doctors", Type: access.PermissionRemoved},
			}))

			ov := store.Snapshot()
			Expect(ov.Roles[catalog.RoleDoctor].IsEmpty()).To(BeTrue())
			Expect(ov.Roles[catalog.RoleNurse].Removed.Has("doctors")).To(BeTrue())
		})
	})
})
