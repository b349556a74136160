package repository

import (
	"context"
	"time"

	"github.com/attendly/attendance-backend/pkg/docstore"
)

// Defaults written by imports and overtime updates
const (
	DefaultCreatedBy     = "Default"
	DefaultOvertimeLabel = "Yes"
	NoOvertimeLabel      = "No"
)

// MasterSheetEmployee is the HR record of an employee, stored under the
// id "EMP" + four digit employee number.
type MasterSheetEmployee struct {
	ID                    string     `json:"id"`
	EmployeeNumber        string     `json:"employeeNumber"`
	EmployeeName          string     `json:"employeeName"`
	Designation           string     `json:"designation"`
	Salary                float64    `json:"salary"`
	CreatedBy             string     `json:"createdBy"`
	CreatedOn             *time.Time `json:"createdOn,omitempty"`
	HasOvertime           bool       `json:"hasOvertime"`
	Overtime              string     `json:"overtime,omitempty"`
	OvertimeUpdatedAt     *time.Time `json:"overtimeUpdatedAt,omitempty"`
	LineManagerID         string     `json:"lineManagerId,omitempty"`
	LineManagerName       string     `json:"lineManagerName,omitempty"`
	LineManagerDepartment string     `json:"lineManagerDepartment,omitempty"`
}

func masterSheetFromSnapshot(snap *docstore.Snapshot) *MasterSheetEmployee {
	f := fields(snap.Data)
	return &MasterSheetEmployee{
		ID:                    snap.ID(),
		EmployeeNumber:        f.str("employeeNumber"),
		EmployeeName:          f.str("employeeName"),
		Designation:           f.str("designation"),
		Salary:                f.number("salary"),
		CreatedBy:             f.str("createdBy"),
		CreatedOn:             f.time("createdOn"),
		HasOvertime:           f.boolean("hasOvertime"),
		Overtime:              f.str("overtime"),
		OvertimeUpdatedAt:     f.time("overtimeUpdatedAt"),
		LineManagerID:         f.str("lineManagerId"),
		LineManagerName:       f.str("lineManagerName"),
		LineManagerDepartment: f.str("lineManagerDepartment"),
	}
}

// MasterSheetRepository handles MasterSheet employee documents
type MasterSheetRepository struct {
	store docstore.Store
}

// NewMasterSheetRepository creates a new MasterSheet repository
func NewMasterSheetRepository(store docstore.Store) *MasterSheetRepository {
	return &MasterSheetRepository{store: store}
}

// List returns every record ordered by employee number. Records without an
// employee number are not listed.
func (r *MasterSheetRepository) List(ctx context.Context) ([]*MasterSheetEmployee, error) {
	snaps, err := r.store.Query(ctx, masterSheetColl, docstore.Query{OrderBy: "employeeNumber"})
	if err != nil {
		return nil, err
	}
	return masterSheetList(snaps), nil
}

// GetByID retrieves a record by its EMP id
func (r *MasterSheetRepository) GetByID(ctx context.Context, id string) (*MasterSheetEmployee, error) {
	snap, err := r.store.Get(ctx, masterSheetColl.Doc(id))
	if err != nil {
		return nil, storeError(err, "employee")
	}
	return masterSheetFromSnapshot(snap), nil
}

// EmployeeNumberExists queries the employeeNumber field, not the document
// id, so a document stored under the id with a different field value is not
// seen.
func (r *MasterSheetRepository) EmployeeNumberExists(ctx context.Context, employeeNumber string) (bool, error) {
	snaps, err := r.store.Query(ctx, masterSheetColl, docstore.Query{
		Where: []docstore.Filter{{Field: "employeeNumber", Value: employeeNumber}},
		Limit: 1,
	})
	if err != nil {
		return false, err
	}
	return len(snaps) > 0, nil
}

// ListByLineManager returns the records pointing back at a manager.
func (r *MasterSheetRepository) ListByLineManager(ctx context.Context, managerID string) ([]*MasterSheetEmployee, error) {
	snaps, err := r.store.Query(ctx, masterSheetColl, docstore.Eq("lineManagerId", managerID))
	if err != nil {
		return nil, err
	}
	return masterSheetList(snaps), nil
}

// Create stores a record under id, overwriting whatever was there.
func (r *MasterSheetRepository) Create(ctx context.Context, id string, emp *MasterSheetEmployee) error {
	createdBy := emp.CreatedBy
	if createdBy == "" {
		createdBy = DefaultCreatedBy
	}

	err := r.store.Set(ctx, masterSheetColl.Doc(id), map[string]any{
		"employeeNumber": emp.EmployeeNumber,
		"employeeName":   emp.EmployeeName,
		"designation":    emp.Designation,
		"salary":         emp.Salary,
		"createdBy":      createdBy,
		"createdOn":      docstore.ServerTimestamp,
	})
	if err != nil {
		return err
	}

	emp.ID = id
	emp.CreatedBy = createdBy
	return nil
}

// SetOvertime flags or clears overtime on an existing record.
func (r *MasterSheetRepository) SetOvertime(ctx context.Context, id string, hasOvertime bool, label string) error {
	return storeError(r.store.Update(ctx, masterSheetColl.Doc(id), overtimeFields(hasOvertime, label)), "employee")
}

// MarkOvertime flags every id in one atomic batch. If any id is missing
// nothing is written.
func (r *MasterSheetRepository) MarkOvertime(ctx context.Context, ids []string) error {
	writes := make([]docstore.Write, 0, len(ids))
	for _, id := range ids {
		writes = append(writes, docstore.UpdateWrite(masterSheetColl.Doc(id), overtimeFields(true, DefaultOvertimeLabel)))
	}
	return storeError(r.store.Commit(ctx, writes), "employee")
}

// AssignLineManager writes the manager back-reference onto a team member.
func (r *MasterSheetRepository) AssignLineManager(ctx context.Context, id string, manager *LineManager) error {
	err := r.store.Update(ctx, masterSheetColl.Doc(id), map[string]any{
		"lineManagerId":         manager.ManagerID,
		"lineManagerName":       manager.ManagerName,
		"lineManagerDepartment": manager.Department,
	})
	return storeError(err, "employee")
}

// ClearLineManager removes the manager back-reference from a record.
func (r *MasterSheetRepository) ClearLineManager(ctx context.Context, id string) error {
	err := r.store.Update(ctx, masterSheetColl.Doc(id), map[string]any{
		"lineManagerId":         docstore.DeleteField,
		"lineManagerName":       docstore.DeleteField,
		"lineManagerDepartment": docstore.DeleteField,
	})
	return storeError(err, "employee")
}

// Delete removes a record
func (r *MasterSheetRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, masterSheetColl.Doc(id))
}

func overtimeFields(hasOvertime bool, label string) map[string]any {
	return map[string]any{
		"hasOvertime":       hasOvertime,
		"overtime":          label,
		"overtimeUpdatedAt": docstore.ServerTimestamp,
	}
}

func masterSheetList(snaps []*docstore.Snapshot) []*MasterSheetEmployee {
	out := make([]*MasterSheetEmployee, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, masterSheetFromSnapshot(snap))
	}
	return out
}
