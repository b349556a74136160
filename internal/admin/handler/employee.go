package handler

import (
	"net/http"

	"github.com/attendly/attendance-backend/internal/admin/service"
	"github.com/attendly/attendance-backend/internal/admin/spreadsheet"
	"github.com/attendly/attendance-backend/pkg/httputil"
	"github.com/attendly/attendance-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// EmployeeHandler handles employee endpoints
type EmployeeHandler struct {
	service  *service.EmployeeService
	importer *service.Importer
	maxRows  int
	logger   *logger.Logger
}

// NewEmployeeHandler creates a new employee handler
func NewEmployeeHandler(svc *service.EmployeeService, importer *service.Importer, maxRows int, log *logger.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		service:  svc,
		importer: importer,
		maxRows:  maxRows,
		logger:   log,
	}
}

// List lists all employees
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	employees, err := h.service.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, employees)
}

// Create adds one employee
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateEmployeeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	emp, err := h.service.Create(r.Context(), &req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, emp)
}

// Delete deletes an employee
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// Import adds employees from a workbook or JSON rows
func (h *EmployeeHandler) Import(w http.ResponseWriter, r *http.Request) {
	rows, err := readRows(r, h.maxRows)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, h.importer.ImportEmployees(r.Context(), rows))
}

// Template serves the employee import template
func (h *EmployeeHandler) Template(w http.ResponseWriter, r *http.Request) {
	sendTemplate(w, spreadsheet.EmployeeTemplate)
}
