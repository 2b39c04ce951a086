package permission

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/clinicore/access-management/internal"
	"github.com/clinicore/access-management/internal/catalog"
	"github.com/clinicore/access-management/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListAll() ([]*Record, error)
	ListByRole(role string) ([]*Record, error)
	ListByUsername(username string) ([]*Record, error)
	ListForIdentity(role catalog.Role, username string) ([]*Record, error)
	Upsert(req UpsertRequest) (*Record, error)
	Delete(id int64) error
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

// ListRecords serves the privileged listing, optionally filtered by role or
// username query parameters.
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	var (
		records []*Record
		err     error
	)

	switch {
	case r.URL.Query().Get("role") != "":
		records, err = h.Service.ListByRole(r.URL.Query().Get("role"))
	case r.URL.Query().Get("username") != "":
		records, err = h.Service.ListByUsername(r.URL.Query().Get("username"))
	default:
		records, err = h.Service.ListAll()
	}

	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToRecordsResponse(records))
}

// ListMyRecords serves the records applicable to the calling session.
func (h *Handler) ListMyRecords(w http.ResponseWriter, r *http.Request) {
	identity, ok := internal.IdentityFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	records, err := h.Service.ListForIdentity(identity.Role, identity.Username)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToRecordsResponse(records))
}

func (h *Handler) UpsertRecord(w http.ResponseWriter, r *http.Request) {
	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Service.Upsert(req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, record.ToResponse())
}

func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	if err := h.Service.Delete(id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := internal.IsAppError(err); ok {
		status, body := appErr.ToHTTPResponse()
		h.WriteJSON(w, status, body)
		return
	}
	h.WriteError(w, http.StatusInternalServerError, err.Error())
}
