package catalog

import (
	"fmt"
)

// Role is the closed set of user categories. No value may be added at
// runtime; default module visibility is defined per role in the catalog.
type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleDoctor       Role = "DOCTOR"
	RoleNurse        Role = "NURSE"
	RoleReceptionist Role = "RECEPTIONIST"
)

var allRoles = []Role{RoleAdmin, RoleDoctor, RoleNurse, RoleReceptionist}

// Roles returns every enum value in declaration order.
func Roles() []Role {
	out := make([]Role, len(allRoles))
	copy(out, allRoles)
	return out
}

func (r Role) Valid() bool {
	for _, role := range allRoles {
		if r == role {
			return true
		}
	}
	return false
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// ModuleDescriptor describes one application feature/page. Descriptors are
// pure data; the engine never mutates them after catalog construction.
type ModuleDescriptor struct {
	ID           string `json:"id"`
	Path         string `json:"path"`
	Name         string `json:"name"`
	Icon         string `json:"icon"`
	Description  string `json:"description"`
	Color        string `json:"color"`
	Category     string `json:"category"`
	DefaultRoles []Role `json:"default_roles"`
}

// DefaultFor reports whether the module is visible to role absent any
// override.
func (m ModuleDescriptor) DefaultFor(role Role) bool {
	for _, r := range m.DefaultRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Catalog is the ordered, immutable registry of all modules. It is supplied
// once at startup and never re-fetched or mutated.
type Catalog struct {
	modules []ModuleDescriptor
	byID    map[string]int
}

// NewCatalog builds a catalog from descriptors, rejecting duplicate ids.
func NewCatalog(modules []ModuleDescriptor) (*Catalog, error) {
	c := &Catalog{
		modules: make([]ModuleDescriptor, len(modules)),
		byID:    make(map[string]int, len(modules)),
	}
	copy(c.modules, modules)

	for i, m := range c.modules {
		if m.ID == "" {
			return nil, fmt.Errorf("module at index %d has empty id", i)
		}
		if _, exists := c.byID[m.ID]; exists {
			return nil, fmt.Errorf("duplicate module id %q", m.ID)
		}
		c.byID[m.ID] = i
	}

	return c, nil
}

// MustNewCatalog panics on invalid input; used for the built-in catalog.
func MustNewCatalog(modules []ModuleDescriptor) *Catalog {
	c, err := NewCatalog(modules)
	if err != nil {
		panic(err)
	}
	return c
}

// All returns the descriptors in catalog order. Callers must not modify the
// returned slice.
func (c *Catalog) All() []ModuleDescriptor {
	return c.modules
}

func (c *Catalog) ByID(id string) (ModuleDescriptor, bool) {
	i, ok := c.byID[id]
	if !ok {
		return ModuleDescriptor{}, false
	}
	return c.modules[i], true
}

func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}

func (c *Catalog) Len() int {
	return len(c.modules)
}
