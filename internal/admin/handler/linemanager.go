package handler

import (
	"net/http"

	"github.com/attendly/attendance-backend/internal/admin/service"
	"github.com/attendly/attendance-backend/pkg/httputil"
	"github.com/attendly/attendance-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// LineManagerHandler handles line manager endpoints
type LineManagerHandler struct {
	service *service.LineManagerService
	logger  *logger.Logger
}

// NewLineManagerHandler creates a new line manager handler
func NewLineManagerHandler(svc *service.LineManagerService, log *logger.Logger) *LineManagerHandler {
	return &LineManagerHandler{
		service: svc,
		logger:  log,
	}
}

// List lists line managers
func (h *LineManagerHandler) List(w http.ResponseWriter, r *http.Request) {
	managers, err := h.service.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, managers)
}

// Create creates a line manager and assigns the team
func (h *LineManagerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateLineManagerRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, result)
}

// Team shows a manager's team members
func (h *LineManagerHandler) Team(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	view, err := h.service.ViewTeam(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, view)
}

// Delete removes a line manager and its team back-references
func (h *LineManagerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
