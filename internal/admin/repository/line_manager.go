package repository

import (
	"context"
	"time"

	"github.com/attendly/attendance-backend/pkg/docstore"
)

// LineManager groups team members under a MasterSheet employee. ManagerID
// is the manager's MasterSheet id; TeamMembers holds the raw tokens entered
// by the admin.
type LineManager struct {
	ID                    string     `json:"id"`
	ManagerID             string     `json:"managerId"`
	ManagerEmployeeNumber string     `json:"managerEmployeeNumber"`
	ManagerName           string     `json:"managerName"`
	Department            string     `json:"department"`
	TeamMembers           []string   `json:"teamMembers"`
	CreatedAt             *time.Time `json:"createdAt,omitempty"`
}

// LineManagerFromData decodes a line manager document body.
func LineManagerFromData(id string, data map[string]any) *LineManager {
	f := fields(data)
	return &LineManager{
		ID:                    id,
		ManagerID:             f.str("managerId"),
		ManagerEmployeeNumber: f.str("managerEmployeeNumber"),
		ManagerName:           f.str("managerName"),
		Department:            f.str("department"),
		TeamMembers:           f.strings("teamMembers"),
		CreatedAt:             f.time("createdAt"),
	}
}

// LineManagerRepository handles line manager documents
type LineManagerRepository struct {
	store docstore.Store
}

// NewLineManagerRepository creates a new line manager repository
func NewLineManagerRepository(store docstore.Store) *LineManagerRepository {
	return &LineManagerRepository{store: store}
}

// List returns every line manager
func (r *LineManagerRepository) List(ctx context.Context) ([]*LineManager, error) {
	snaps, err := r.store.List(ctx, lineManagersColl)
	if err != nil {
		return nil, err
	}

	managers := make([]*LineManager, 0, len(snaps))
	for _, snap := range snaps {
		managers = append(managers, LineManagerFromData(snap.ID(), snap.Data))
	}
	return managers, nil
}

// GetByID retrieves a line manager
func (r *LineManagerRepository) GetByID(ctx context.Context, id string) (*LineManager, error) {
	snap, err := r.store.Get(ctx, lineManagersColl.Doc(id))
	if err != nil {
		return nil, storeError(err, "line manager")
	}
	return LineManagerFromData(snap.ID(), snap.Data), nil
}

// Create adds a line manager with an auto-generated id
func (r *LineManagerRepository) Create(ctx context.Context, m *LineManager) error {
	team := m.TeamMembers
	if team == nil {
		team = []string{}
	}

	ref, err := r.store.Add(ctx, lineManagersColl, map[string]any{
		"managerId":             m.ManagerID,
		"managerEmployeeNumber": m.ManagerEmployeeNumber,
		"managerName":           m.ManagerName,
		"department":            m.Department,
		"teamMembers":           team,
		"createdAt":             docstore.ServerTimestamp,
	})
	if err != nil {
		return err
	}

	m.ID = ref.ID()
	m.TeamMembers = team
	return nil
}

// Delete removes a line manager document
func (r *LineManagerRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, lineManagersColl.Doc(id))
}
