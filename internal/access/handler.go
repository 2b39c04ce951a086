package access

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/clinicore/access-management/internal"
	"github.com/clinicore/access-management/internal/catalog"
	"github.com/clinicore/access-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ModulesForSession(ctx context.Context, role catalog.Role, username string) ([]catalog.ModuleDescriptor, error)
	FetchAll(ctx context.Context) error
	GrantToRole(ctx context.Context, role catalog.Role, moduleID string) error
	RevokeFromRole(ctx context.Context, role catalog.Role, moduleID string) error
	GrantToUser(ctx context.Context, role catalog.Role, username, moduleID string) error
	RevokeFromUser(ctx context.Context, role catalog.Role, username, moduleID string) error
	ResetRoleRemote(ctx context.Context, role catalog.Role) error
	ResetUserRemote(ctx context.Context, username string) error
	ResetAllRemote(ctx context.Context) error
	Overrides() Overrides
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// GetMyModules returns the resolved module list for the calling session,
// fetched and resolved as one unit so concurrent sessions cannot disturb
// the result.
func (h *Handler) GetMyModules(w http.ResponseWriter, r *http.Request) {
	identity, ok := internal.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	modules, err := h.Service.ModulesForSession(r.Context(), identity.Role, identity.Username)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToModulesResponse(modules))
}

// GetOverrides returns the full override maps, rebuilt from ground truth so
// admin edits never operate on a stale cache.
func (h *Handler) GetOverrides(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.FetchAll(r.Context()); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToOverridesResponse(h.Service.Overrides()))
}

func (h *Handler) GrantToRole(w http.ResponseWriter, r *http.Request) {
	role, moduleID, ok := h.roleAndModule(w, r)
	if !ok {
		return
	}

	if err := h.Service.GrantToRole(r.Context(), role, moduleID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToOverridesResponse(h.Service.Overrides()))
}

func (h *Handler) RevokeFromRole(w http.ResponseWriter, r *http.Request) {
	role, moduleID, ok := h.roleAndModule(w, r)
	if !ok {
		return
	}

	if err := h.Service.RevokeFromRole(r.Context(), role, moduleID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToOverridesResponse(h.Service.Overrides()))
}

func (h *Handler) GrantToUser(w http.ResponseWriter, r *http.Request) {
	username, moduleID, role, ok := h.userModuleAndRole(w, r)
	if !ok {
		return
	}

	if err := h.Service.GrantToUser(r.Context(), role, username, moduleID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToOverridesResponse(h.Service.Overrides()))
}

func (h *Handler) RevokeFromUser(w http.ResponseWriter, r *http.Request) {
	username, moduleID, role, ok := h.userModuleAndRole(w, r)
	if !ok {
		return
	}

	if err := h.Service.RevokeFromUser(r.Context(), role, username, moduleID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToOverridesResponse(h.Service.Overrides()))
}

func (h *Handler) ResetRole(w http.ResponseWriter, r *http.Request) {
	role, err := catalog.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Service.ResetRoleRemote(r.Context(), role); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToOverridesResponse(h.Service.Overrides()))
}

func (h *Handler) ResetUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		h.WriteError(w, http.StatusBadRequest, "username is required")
		return
	}

	if err := h.Service.ResetUserRemote(r.Context(), username); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToOverridesResponse(h.Service.Overrides()))
}

func (h *Handler) ResetAll(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.ResetAllRemote(r.Context()); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToOverridesResponse(h.Service.Overrides()))
}

func (h *Handler) roleAndModule(w http.ResponseWriter, r *http.Request) (catalog.Role, string, bool) {
	role, err := catalog.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return "", "", false
	}

	moduleID := chi.URLParam(r, "moduleID")
	if moduleID == "" {
		h.WriteError(w, http.StatusBadRequest, "module id is required")
		return "", "", false
	}

	return role, moduleID, true
}

func (h *Handler) userModuleAndRole(w http.ResponseWriter, r *http.Request) (string, string, catalog.Role, bool) {
	username := chi.URLParam(r, "username")
	if username == "" {
		h.WriteError(w, http.StatusBadRequest, "username is required")
		return "", "", "", false
	}

	moduleID := chi.URLParam(r, "moduleID")
	if moduleID == "" {
		h.WriteError(w, http.StatusBadRequest, "module id is required")
		return "", "", "", false
	}

	var req UserAccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return "", "", "", false
	}

	role, err := catalog.ParseRole(req.Role)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return "", "", "", false
	}

	return username, moduleID, role, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		status, body := appErr.ToHTTPResponse()
		h.WriteJSON(w, status, body)
		return
	}
	h.WriteError(w, http.StatusInternalServerError, err.Error())
}
