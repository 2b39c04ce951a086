package access_test

import (
	"github.com/clinicore/access-management/internal/access"
	"github.com/clinicore/access-management/internal/catalog"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Convert", func() {
	var records []access.PermissionRecord

	BeforeEach(func() {
		records = []access.PermissionRecord{
			{ID: 1, Role: catalog.RoleDoctor, ModuleID: "reports", Type: access.PermissionAdded},
			{ID: 2, Role: catalog.RoleNurse, ModuleID: "doctors", Type: access.PermissionRemoved},
			{ID: 3, Role: catalog.RoleDoctor, Username: "drsmith", ModuleID: "prescriptions", Type: access.PermissionRemoved},
			{ID: 4, Role: catalog.RoleReceptionist, Username: "mrivera", ModuleID: "billing", Type: access.PermissionAdded},
		}
	})

	It("should fully populate the role map even with no records", func() {
		ov := access.Convert(nil)
		for _, role := range catalog.Roles() {
			Expect(ov.Roles).To(HaveKey(role))
			Expect(ov.Roles[role].IsEmpty()).To(BeTrue())
		}
		Expect(ov.Users).To(BeEmpty())
	})

	It("should file role records into role buckets and user records into user buckets", func() {
		ov := access.Convert(records)

		Expect(ov.Roles[catalog.RoleDoctor].Additional.Has("reports")).To(BeTrue())
		Expect(ov.Roles[catalog.RoleNurse].Removed.Has("doctors")).To(BeTrue())

		Expect(ov.Users).To(HaveLen(2))
		Expect(ov.Users["drsmith"].Removed.Has("prescriptions")).To(BeTrue())
		Expect(ov.Users["mrivera"].Additional.Has("billing")).To(BeTrue())

		// The role on a user-scoped record is bookkeeping only; it never
		// lands in the role bucket.
		Expect(ov.Roles[catalog.RoleDoctor].Removed.Has("prescriptions")).To(BeFalse())
	})

	It("should be idempotent over duplicated input", func() {
		once := access.Convert(records)
		twice := access.Convert(append(append([]access.PermissionRecord{}, records...), records...))
		Expect(twice).To(Equal(once))
	})

	It("should be order independent", func() {
		reversed := make([]access.PermissionRecord, 0, len(records))
		for i := len(records) - 1; i >= 0; i-- {
			reversed = append(reversed, records[i])
		}

		rotated := append(append([]access.PermissionRecord{}, records[2:]...), records[:2]...)

		expected := access.Convert(records)
		Expect(access.Convert(reversed)).To(Equal(expected))
		Expect(access.Convert(rotated)).To(Equal(expected))
	})

	It("should skip role records carrying a role outside the enum", func() {
		ov := access.Convert([]access.PermissionRecord{
			{ID: 9, Role: catalog.Role("INTERN"), ModuleID: "reports", Type: access.PermissionAdded},
		})

		for _, role := range catalog.Roles() {
			Expect(ov.Roles[role].IsEmpty()).To(BeTrue())
		}
	})

	It("should keep module ids unknown to the catalog", func() {
		ov := access.Convert([]access.PermissionRecord{
			{ID: 9, Role: catalog.RoleDoctor, ModuleID: "not-a-module", Type: access.PermissionAdded},
		})
		Expect(ov.Roles[catalog.RoleDoctor].Additional.Has("not-a-module")).To(BeTrue())
	})
})
