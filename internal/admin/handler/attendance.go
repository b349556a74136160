package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/attendly/attendance-backend/internal/admin/service"
	"github.com/attendly/attendance-backend/internal/admin/spreadsheet"
	"github.com/attendly/attendance-backend/pkg/httputil"
	"github.com/attendly/attendance-backend/pkg/logger"
)

// AttendanceHandler handles attendance endpoints
type AttendanceHandler struct {
	service *service.AttendanceService
	logger  *logger.Logger
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(svc *service.AttendanceService, log *logger.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service: svc,
		logger:  log,
	}
}

func attendanceFilter(r *http.Request) service.AttendanceFilter {
	q := r.URL.Query()
	return service.AttendanceFilter{
		EmployeeID: q.Get("employee_id"),
		Date:       q.Get("date"),
	}
}

// List lists attendance rows
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.List(r.Context(), attendanceFilter(r))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, views)
}

// Export serves the attendance listing as an xlsx report
func (h *AttendanceHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ExportAttendance(r.Context(), attendanceFilter(r))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to generate attendance report")
		httputil.Error(w, err)
		return
	}

	filename := fmt.Sprintf("attendance-%s.xlsx", time.Now().Format("2006-01-02"))
	httputil.Attachment(w, filename, spreadsheet.ContentTypeXLSX, data)
}
