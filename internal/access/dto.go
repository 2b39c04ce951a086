package access

import (
	"github.com/clinicore/access-management/internal/catalog"
)

type ModuleResponse struct {
	ID          string `json:"id"`
	Path        string `json:"path"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Category    string `json:"category"`
}

type ModulesResponse struct {
	Modules []ModuleResponse `json:"modules"`
}

func ToModuleResponse(m catalog.ModuleDescriptor) ModuleResponse {
	return ModuleResponse{
		ID:          m.ID,
		Path:        m.Path,
		Name:        m.Name,
		Icon:        m.Icon,
		Description: m.Description,
		Color:       m.Color,
		Category:    m.Category,
	}
}

func ToModulesResponse(modules []catalog.ModuleDescriptor) ModulesResponse {
	out := ModulesResponse{Modules: make([]ModuleResponse, 0, len(modules))}
	for _, m := range modules {
		out.Modules = append(out.Modules, ToModuleResponse(m))
	}
	return out
}

type OverrideResponse struct {
	AdditionalModules []string `json:"additional_modules"`
	RemovedModules    []string `json:"removed_modules"`
}

type OverridesResponse struct {
	Roles map[string]OverrideResponse `json:"roles"`
	Users map[string]OverrideResponse `json:"users"`
}

func ToOverridesResponse(ov Overrides) OverridesResponse {
	out := OverridesResponse{
		Roles: make(map[string]OverrideResponse, len(ov.Roles)),
		Users: make(map[string]OverrideResponse, len(ov.Users)),
	}
	for role, o := range ov.Roles {
		out.Roles[string(role)] = OverrideResponse{
			AdditionalModules: o.Additional.Values(),
			RemovedModules:    o.Removed.Values(),
		}
	}
	for username, o := range ov.Users {
		out.Users[username] = OverrideResponse{
			AdditionalModules: o.Additional.Values(),
			RemovedModules:    o.Removed.Values(),
		}
	}
	return out
}

// UserAccessRequest carries the role recorded alongside user-level edits.
type UserAccessRequest struct {
	Role string `json:"role"`
}
