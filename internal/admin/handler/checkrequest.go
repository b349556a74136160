package handler

import (
	"net/http"

	"github.com/attendly/attendance-backend/internal/admin/service"
	"github.com/attendly/attendance-backend/pkg/httputil"
	"github.com/attendly/attendance-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// CheckRequestHandler handles check request and device token endpoints
type CheckRequestHandler struct {
	requests *service.CheckRequestService
	tokens   *service.TokenService
	logger   *logger.Logger
}

// NewCheckRequestHandler creates a new check request handler
func NewCheckRequestHandler(requests *service.CheckRequestService, tokens *service.TokenService, log *logger.Logger) *CheckRequestHandler {
	return &CheckRequestHandler{
		requests: requests,
		tokens:   tokens,
		logger:   log,
	}
}

// Create creates a pending check request
func (h *CheckRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCheckRequestRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	cr, err := h.requests.Create(r.Context(), &req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, cr)
}

// UpdateStatus approves or rejects a check request
func (h *CheckRequestHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req service.UpdateCheckRequestStatusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	cr, err := h.requests.UpdateStatus(r.Context(), id, &req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, cr)
}

// StoreToken registers the caller's device token
func (h *CheckRequestHandler) StoreToken(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if err := httputil.DecodeJSON(r, &body); err != nil {
		httputil.Error(w, err)
		return
	}

	req := service.StoreTokenRequest{UserID: chi.URLParam(r, "userId"), Token: body.Token}
	if err := h.tokens.Store(r.Context(), &req); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]bool{"success": true})
}
