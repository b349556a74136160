package handler

import (
	"net/http"

	"github.com/attendly/attendance-backend/internal/admin/service"
	"github.com/attendly/attendance-backend/internal/admin/spreadsheet"
	"github.com/attendly/attendance-backend/pkg/httputil"
	"github.com/attendly/attendance-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// MasterSheetHandler handles MasterSheet and overtime endpoints
type MasterSheetHandler struct {
	service  *service.MasterSheetService
	importer *service.Importer
	maxRows  int
	logger   *logger.Logger
}

// NewMasterSheetHandler creates a new MasterSheet handler
func NewMasterSheetHandler(svc *service.MasterSheetService, importer *service.Importer, maxRows int, log *logger.Logger) *MasterSheetHandler {
	return &MasterSheetHandler{
		service:  svc,
		importer: importer,
		maxRows:  maxRows,
		logger:   log,
	}
}

// List lists MasterSheet records
func (h *MasterSheetHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, list)
}

// Delete deletes a MasterSheet record
func (h *MasterSheetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// Import adds MasterSheet records from a workbook or JSON rows
func (h *MasterSheetHandler) Import(w http.ResponseWriter, r *http.Request) {
	rows, err := readRows(r, h.maxRows)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, h.importer.ImportMasterSheet(r.Context(), rows))
}

// Template serves the MasterSheet import template
func (h *MasterSheetHandler) Template(w http.ResponseWriter, r *http.Request) {
	sendTemplate(w, spreadsheet.MasterSheetTemplate)
}

// ImportOvertime flags existing records from a workbook or JSON rows
func (h *MasterSheetHandler) ImportOvertime(w http.ResponseWriter, r *http.Request) {
	rows, err := readRows(r, h.maxRows)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, h.importer.ImportOvertime(r.Context(), rows))
}

// OvertimeTemplate serves the overtime import template
func (h *MasterSheetHandler) OvertimeTemplate(w http.ResponseWriter, r *http.Request) {
	sendTemplate(w, spreadsheet.OvertimeTemplate)
}

// ToggleOvertime flips one record's overtime flag
func (h *MasterSheetHandler) ToggleOvertime(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	emp, err := h.service.ToggleOvertime(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, emp)
}

// MarkOvertime flags the selected records in one batch
func (h *MasterSheetHandler) MarkOvertime(w http.ResponseWriter, r *http.Request) {
	var req service.MarkOvertimeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	count, err := h.service.MarkOvertime(r.Context(), &req)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]int{"marked": count})
}
