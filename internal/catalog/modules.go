package catalog

// Default returns the built-in clinic module catalog. Order here is display
// order; the resolver preserves it.
func Default() *Catalog {
	return MustNewCatalog([]ModuleDescriptor{
		{
			ID:           "dashboard",
			Path:         "/dashboard",
			Name:         "Dashboard",
			Icon:         "home",
			Description:  "Daily overview and quick actions",
			Color:        "#1976d2",
			Category:     "general",
			DefaultRoles: []Role{RoleAdmin, RoleDoctor, RoleNurse, RoleReceptionist},
		},
		{
			ID:           "patients",
			Path:         "/patients",
			Name:         "Patients",
			Icon:         "people",
			Description:  "Patient registry and clinical records",
			Color:        "#388e3c",
			Category:     "clinical",
			DefaultRoles: []Role{RoleAdmin, RoleDoctor, RoleNurse, RoleReceptionist},
		},
		{
			ID:           "doctors",
			Path:         "/doctors",
			Name:         "Doctors",
			Icon:         "badge",
			Description:  "Practitioner directory and schedules",
			Color:        "#0288d1",
			Category:     "clinical",
			DefaultRoles: []Role{RoleAdmin, RoleReceptionist},
		},
		{
			ID:           "appointments",
			Path:         "/appointments",
			Name:         "Appointments",
			Icon:         "event",
			Description:  "Appointment booking and calendar",
			Color:        "#7b1fa2",
			Category:     "clinical",
			DefaultRoles: []Role{RoleAdmin, RoleDoctor, RoleNurse, RoleReceptionist},
		},
		{
			ID:           "prescriptions",
			Path:         "/prescriptions",
			Name:         "Prescriptions",
			Icon:         "medication",
			Description:  "Prescription writing and history",
			Color:        "#c2185b",
			Category:     "clinical",
			DefaultRoles: []Role{RoleAdmin, RoleDoctor},
		},
		{
			ID:           "lab-results",
			Path:         "/lab-results",
			Name:         "Lab Results",
			Icon:         "science",
			Description:  "Laboratory orders and results",
			Color:        "#00796b",
			Category:     "clinical",
			DefaultRoles: []Role{RoleAdmin, RoleDoctor, RoleNurse},
		},
		{
			ID:           "reports",
			Path:         "/reports",
			Name:         "Reports",
			Icon:         "assessment",
			Description:  "Operational and clinical reporting",
			Color:        "#f57c00",
			Category:     "management",
			DefaultRoles: []Role{RoleAdmin},
		},
		{
			ID:           "billing",
			Path:         "/billing",
			Name:         "Billing",
			Icon:         "receipt",
			Description:  "Invoicing and payment tracking",
			Color:        "#5d4037",
			Category:     "management",
			DefaultRoles: []Role{RoleAdmin, RoleReceptionist},
		},
		{
			ID:           "user-admin",
			Path:         "/admin/users",
			Name:         "User Administration",
			Icon:         "manage_accounts",
			Description:  "Accounts, roles and module access",
			Color:        "#455a64",
			Category:     "administration",
			DefaultRoles: []Role{RoleAdmin},
		},
		{
			ID:           "settings",
			Path:         "/settings",
			Name:         "Settings",
			Icon:         "settings",
			Description:  "Clinic configuration and preferences",
			Color:        "#616161",
			Category:     "administration",
			DefaultRoles: []Role{RoleAdmin},
		},
	})
}
