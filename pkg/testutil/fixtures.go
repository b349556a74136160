package testutil

import (
	"fmt"
	"time"
)

// FixtureFactory creates document fixtures with sensible defaults. Fixtures
// are plain maps in the stored document shape so they can be written to any
// store directly.
type FixtureFactory struct {
	sequence int
}

// NewFixtureFactory creates a new fixture factory
func NewFixtureFactory() *FixtureFactory {
	return &FixtureFactory{sequence: 0}
}

// nextSeq returns the next sequence number for unique values
func (f *FixtureFactory) nextSeq() int {
	f.sequence++
	return f.sequence
}

// Fixture is a document body that options can modify.
type Fixture map[string]any

// With sets one field.
func With(field string, value any) func(Fixture) {
	return func(d Fixture) {
		d[field] = value
	}
}

// Without removes one field.
func Without(field string) func(Fixture) {
	return func(d Fixture) {
		delete(d, field)
	}
}

func apply(d Fixture, opts []func(Fixture)) map[string]any {
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Employee creates an app-side employee document
func (f *FixtureFactory) Employee(opts ...func(Fixture)) map[string]any {
	seq := f.nextSeq()
	return apply(Fixture{
		"pin":                   fmt.Sprintf("%04d", 1000+seq),
		"name":                  fmt.Sprintf("Employee %d", seq),
		"designation":           "Technician",
		"department":            "Operations",
		"email":                 fmt.Sprintf("employee%d@test.attendly.io", seq),
		"phone":                 "+1555000" + fmt.Sprintf("%04d", seq),
		"country":               "Pakistan",
		"birthdate":             "01/15/1990",
		"registrationCompleted": false,
		"profileCompleted":      false,
		"faceRegistered":        false,
	}, opts)
}

// MasterSheetEmployee creates a MasterSheet document keyed by employee number
func (f *FixtureFactory) MasterSheetEmployee(number string, opts ...func(Fixture)) map[string]any {
	seq := f.nextSeq()
	return apply(Fixture{
		"employeeNumber": number,
		"employeeName":   fmt.Sprintf("Staff %d", seq),
		"designation":    "Engineer",
		"salary":         float64(50000 + seq),
		"createdBy":      "Default",
		"hasOvertime":    false,
	}, opts)
}

// Attendance creates an attendance document for one day. Check-in and
// check-out are stored as epoch-seconds structures.
func (f *FixtureFactory) Attendance(employeeName, date string, checkIn, checkOut time.Time, opts ...func(Fixture)) map[string]any {
	d := Fixture{
		"employeeName": employeeName,
		"date":         date,
		"workStatus":   "Pending",
		"location":     "Head Office",
	}
	if !checkIn.IsZero() {
		d["checkIn"] = epoch(checkIn)
	}
	if !checkOut.IsZero() {
		d["checkOut"] = epoch(checkOut)
		d["workStatus"] = "Completed"
	}
	return apply(d, opts)
}

// CheckRequest creates a pending check-out request
func (f *FixtureFactory) CheckRequest(employeeID, lineManagerID string, opts ...func(Fixture)) map[string]any {
	seq := f.nextSeq()
	return apply(Fixture{
		"employeeId":    employeeID,
		"employeeName":  fmt.Sprintf("Requester %d", seq),
		"lineManagerId": lineManagerID,
		"locationName":  "Client Site",
		"requestType":   "check-out",
		"status":        "pending",
	}, opts)
}

// At parses a "2006-01-02" date and "15:04" clock as UTC. It panics on
// malformed input.
func At(date, clock string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", date+" "+clock)
	if err != nil {
		panic(err)
	}
	return t
}

func epoch(t time.Time) map[string]any {
	return map[string]any{
		"seconds":     t.Unix(),
		"nanoseconds": t.Nanosecond(),
	}
}
