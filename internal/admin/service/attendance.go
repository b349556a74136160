package service

import (
	"context"
	"sort"
	"time"

	"github.com/attendly/attendance-backend/internal/admin/domain"
	"github.com/attendly/attendance-backend/internal/admin/repository"
	"github.com/attendly/attendance-backend/internal/admin/spreadsheet"
	"github.com/attendly/attendance-backend/pkg/errors"
	"github.com/attendly/attendance-backend/pkg/logger"
)

// DefaultHistoryLimit is how many days per employee the unfiltered listing
// reads.
const DefaultHistoryLimit = 30

// Placeholders shown for missing attendance fields
const (
	NotCheckedIn  = "Not checked in"
	NotCheckedOut = "Not checked out"
	UnknownValue  = "Unknown"
)

// AttendanceFilter narrows the listing. Both fields are optional.
type AttendanceFilter struct {
	EmployeeID string
	Date       string
}

// AttendanceView is one rendered row of the attendance table.
type AttendanceView struct {
	EmployeeID   string `json:"employeeId"`
	EmployeeName string `json:"employeeName"`
	Date         string `json:"date"`
	CheckIn      string `json:"checkIn"`
	CheckOut     string `json:"checkOut"`
	TotalHours   string `json:"totalHours"`
	Status       string `json:"status"`
	Location     string `json:"location"`
}

// AttendanceService renders attendance history for the dashboard
type AttendanceService struct {
	employees    *repository.EmployeeRepository
	attendance   *repository.AttendanceRepository
	normalizer   domain.Normalizer
	historyLimit int
	logger       *logger.Logger
}

// NewAttendanceService creates a new attendance service. Timestamp strings
// without an offset are read in loc.
func NewAttendanceService(
	employees *repository.EmployeeRepository,
	attendance *repository.AttendanceRepository,
	loc *time.Location,
	historyLimit int,
	log *logger.Logger,
) *AttendanceService {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &AttendanceService{
		employees:    employees,
		attendance:   attendance,
		normalizer:   domain.Normalizer{Location: loc},
		historyLimit: historyLimit,
		logger:       log,
	}
}

// List returns attendance rows.
//   - no filter: the latest days of every employee, newest first
//   - employee (and optional date): that employee's days, newest first
//   - date only: every employee's record for that day
func (s *AttendanceService) List(ctx context.Context, filter AttendanceFilter) ([]AttendanceView, error) {
	if filter.EmployeeID != "" {
		return s.listForEmployee(ctx, filter.EmployeeID, filter.Date)
	}

	employees, err := s.employees.List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]AttendanceView, 0)
	for _, emp := range employees {
		var records []*repository.AttendanceRecord
		if filter.Date != "" {
			records, err = s.attendance.ListByDate(ctx, emp.ID, filter.Date)
		} else {
			records, err = s.attendance.ListByEmployee(ctx, emp.ID, "", s.historyLimit)
		}
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			views = append(views, s.render(rec, emp.Name))
		}
	}

	if filter.Date == "" {
		sortByDateDesc(views)
	}
	return views, nil
}

func (s *AttendanceService) listForEmployee(ctx context.Context, employeeID, date string) ([]AttendanceView, error) {
	var name string
	emp, err := s.employees.GetByID(ctx, employeeID)
	switch {
	case err == nil:
		name = emp.Name
	case !errors.Is(err, errors.ErrNotFound):
		return nil, err
	}

	records, err := s.attendance.ListByEmployee(ctx, employeeID, date, 0)
	if err != nil {
		return nil, err
	}

	views := make([]AttendanceView, 0, len(records))
	for _, rec := range records {
		views = append(views, s.render(rec, name))
	}
	return views, nil
}

// ExportAttendance renders the listing as an xlsx report.
func (s *AttendanceService) ExportAttendance(ctx context.Context, filter AttendanceFilter) ([]byte, error) {
	views, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	rows := make([][]any, 0, len(views))
	for _, v := range views {
		rows = append(rows, []any{v.EmployeeName, v.Date, v.CheckIn, v.CheckOut, v.TotalHours, v.Status, v.Location})
	}

	return spreadsheet.Table{
		Sheet:   "Attendance",
		Headers: spreadsheet.AttendanceReportHeaders,
		Rows:    rows,
		Widths:  []float64{28, 12, 12, 12, 12, 12, 24},
	}.XLSX()
}

func (s *AttendanceService) render(rec *repository.AttendanceRecord, employeeName string) AttendanceView {
	view := AttendanceView{
		EmployeeID:   rec.EmployeeID,
		EmployeeName: firstNonEmpty(rec.EmployeeName, employeeName, UnknownValue),
		Date:         rec.Date,
		CheckIn:      NotCheckedIn,
		CheckOut:     NotCheckedOut,
		TotalHours:   domain.ZeroDuration,
		Status:       firstNonEmpty(rec.WorkStatus, domain.WorkPending),
		Location:     firstNonEmpty(rec.Location, UnknownValue),
	}

	if rec.CheckIn.Present() {
		view.CheckIn = s.normalizer.FormatClock(rec.CheckIn)
	}
	if rec.CheckOut.Present() {
		view.CheckOut = s.normalizer.FormatClock(rec.CheckOut)
	}

	switch {
	case rec.CheckIn.Present() && rec.CheckOut.Present():
		view.TotalHours = s.normalizer.Duration(rec.CheckIn, rec.CheckOut)
	case rec.TotalHours != 0:
		view.TotalHours = domain.DecimalHoursToClock(rec.TotalHours)
	}
	return view
}

// sortByDateDesc orders rows newest first. Rows without a date compare
// equal to everything and keep their place.
func sortByDateDesc(views []AttendanceView) {
	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i].Date, views[j].Date
		if a == "" || b == "" {
			return false
		}
		return a > b
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
