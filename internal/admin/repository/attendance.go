package repository

import (
	"context"

	"github.com/attendly/attendance-backend/internal/admin/domain"
	"github.com/attendly/attendance-backend/pkg/docstore"
)

// AttendanceRecord is one employee day, keyed by its date. The mobile app
// writes these; the admin side only reads them.
type AttendanceRecord struct {
	ID           string
	EmployeeID   string
	EmployeeName string
	Date         string
	CheckIn      domain.TimeValue
	CheckOut     domain.TimeValue
	TotalHours   float64
	WorkStatus   string
	Location     string
}

func attendanceFromSnapshot(employeeID string, snap *docstore.Snapshot) *AttendanceRecord {
	f := fields(snap.Data)
	return &AttendanceRecord{
		ID:           snap.ID(),
		EmployeeID:   employeeID,
		EmployeeName: f.str("employeeName"),
		Date:         f.str("date"),
		CheckIn:      f.timeValue("checkIn"),
		CheckOut:     f.timeValue("checkOut"),
		TotalHours:   f.number("totalHours"),
		WorkStatus:   f.str("workStatus"),
		Location:     f.str("location"),
	}
}

// AttendanceRepository reads the attendance subcollection of each employee
type AttendanceRepository struct {
	store docstore.Store
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(store docstore.Store) *AttendanceRepository {
	return &AttendanceRepository{store: store}
}

// ListByEmployee returns an employee's days, newest first. An empty date
// returns every day; limit <= 0 means no limit.
func (r *AttendanceRepository) ListByEmployee(ctx context.Context, employeeID, date string, limit int) ([]*AttendanceRecord, error) {
	q := docstore.Query{OrderBy: "date", Desc: true, Limit: limit}
	if date != "" {
		q.Where = []docstore.Filter{{Field: "date", Value: date}}
	}
	return r.query(ctx, employeeID, q)
}

// ListByDate returns an employee's records for one day in store order.
func (r *AttendanceRepository) ListByDate(ctx context.Context, employeeID, date string) ([]*AttendanceRecord, error) {
	return r.query(ctx, employeeID, docstore.Eq("date", date))
}

func (r *AttendanceRepository) query(ctx context.Context, employeeID string, q docstore.Query) ([]*AttendanceRecord, error) {
	snaps, err := r.store.Query(ctx, attendanceColl(employeeID), q)
	if err != nil {
		return nil, err
	}

	records := make([]*AttendanceRecord, 0, len(snaps))
	for _, snap := range snaps {
		records = append(records, attendanceFromSnapshot(employeeID, snap))
	}
	return records, nil
}
