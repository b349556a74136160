package repository

import (
	"context"
	"time"

	"github.com/attendly/attendance-backend/pkg/docstore"
)

// Employee is an app user who checks in and out. The pin is the natural key.
type Employee struct {
	ID                    string     `json:"id"`
	PIN                   string     `json:"pin"`
	Name                  string     `json:"name"`
	Designation           string     `json:"designation"`
	Department            string     `json:"department"`
	Email                 string     `json:"email"`
	Phone                 string     `json:"phone"`
	Country               string     `json:"country"`
	Birthdate             string     `json:"birthdate"`
	RegistrationCompleted bool       `json:"registrationCompleted"`
	ProfileCompleted      bool       `json:"profileCompleted"`
	FaceRegistered        bool       `json:"faceRegistered"`
	CreatedAt             *time.Time `json:"createdAt,omitempty"`
	LastUpdated           *time.Time `json:"lastUpdated,omitempty"`
}

func employeeFromSnapshot(snap *docstore.Snapshot) *Employee {
	f := fields(snap.Data)
	return &Employee{
		ID:                    snap.ID(),
		PIN:                   f.str("pin"),
		Name:                  f.str("name"),
		Designation:           f.str("designation"),
		Department:            f.str("department"),
		Email:                 f.str("email"),
		Phone:                 f.str("phone"),
		Country:               f.str("country"),
		Birthdate:             f.str("birthdate"),
		RegistrationCompleted: f.boolean("registrationCompleted"),
		ProfileCompleted:      f.boolean("profileCompleted"),
		FaceRegistered:        f.boolean("faceRegistered"),
		CreatedAt:             f.time("createdAt"),
		LastUpdated:           f.time("lastUpdated"),
	}
}

// EmployeeRepository handles employee documents
type EmployeeRepository struct {
	store docstore.Store
}

// NewEmployeeRepository creates a new employee repository
func NewEmployeeRepository(store docstore.Store) *EmployeeRepository {
	return &EmployeeRepository{store: store}
}

// List returns every employee
func (r *EmployeeRepository) List(ctx context.Context) ([]*Employee, error) {
	snaps, err := r.store.List(ctx, employeesColl)
	if err != nil {
		return nil, err
	}

	employees := make([]*Employee, 0, len(snaps))
	for _, snap := range snaps {
		employees = append(employees, employeeFromSnapshot(snap))
	}
	return employees, nil
}

// GetByID retrieves an employee by document id
func (r *EmployeeRepository) GetByID(ctx context.Context, id string) (*Employee, error) {
	snap, err := r.store.Get(ctx, employeesColl.Doc(id))
	if err != nil {
		return nil, storeError(err, "employee")
	}
	return employeeFromSnapshot(snap), nil
}

// PINExists reports whether any employee already uses pin. The check is a
// plain read; two concurrent inserts of the same pin can both pass it.
func (r *EmployeeRepository) PINExists(ctx context.Context, pin string) (bool, error) {
	snaps, err := r.store.Query(ctx, employeesColl, docstore.Query{
		Where: []docstore.Filter{{Field: "pin", Value: pin}},
		Limit: 1,
	})
	if err != nil {
		return false, err
	}
	return len(snaps) > 0, nil
}

// Create adds a new employee with an auto-generated id. Onboarding flags
// start false and both timestamps are set by the store.
func (r *EmployeeRepository) Create(ctx context.Context, emp *Employee) error {
	ref, err := r.store.Add(ctx, employeesColl, map[string]any{
		"pin":                   emp.PIN,
		"name":                  emp.Name,
		"designation":           emp.Designation,
		"department":            emp.Department,
		"email":                 emp.Email,
		"phone":                 emp.Phone,
		"country":               emp.Country,
		"birthdate":             emp.Birthdate,
		"registrationCompleted": false,
		"profileCompleted":      false,
		"faceRegistered":        false,
		"createdAt":             docstore.ServerTimestamp,
		"lastUpdated":           docstore.ServerTimestamp,
	})
	if err != nil {
		return err
	}

	emp.ID = ref.ID()
	return nil
}

// Delete removes an employee. Attendance history under the employee is kept.
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, employeesColl.Doc(id))
}
