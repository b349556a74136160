package repository

import (
	"context"
	"time"

	"github.com/attendly/attendance-backend/internal/admin/domain"
	"github.com/attendly/attendance-backend/pkg/docstore"
)

// CheckRequest asks a line manager to approve a check-in or check-out made
// away from the registered location.
type CheckRequest struct {
	ID              string     `json:"id"`
	EmployeeID      string     `json:"employeeId"`
	EmployeeName    string     `json:"employeeName"`
	LineManagerID   string     `json:"lineManagerId"`
	LocationName    string     `json:"locationName"`
	RequestType     string     `json:"requestType"`
	Status          string     `json:"status"`
	ResponseMessage string     `json:"responseMessage,omitempty"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty"`
}

// CheckRequestFromData decodes a check request document body. A missing
// request type reads as check-out.
func CheckRequestFromData(id string, data map[string]any) *CheckRequest {
	f := fields(data)
	return &CheckRequest{
		ID:              id,
		EmployeeID:      f.str("employeeId"),
		EmployeeName:    f.str("employeeName"),
		LineManagerID:   f.str("lineManagerId"),
		LocationName:    f.str("locationName"),
		RequestType:     domain.RequestTypeOrDefault(f.str("requestType")),
		Status:          f.str("status"),
		ResponseMessage: f.str("responseMessage"),
		CreatedAt:       f.time("createdAt"),
		UpdatedAt:       f.time("updatedAt"),
	}
}

// CheckRequestRepository handles check request documents
type CheckRequestRepository struct {
	store docstore.Store
}

// NewCheckRequestRepository creates a new check request repository
func NewCheckRequestRepository(store docstore.Store) *CheckRequestRepository {
	return &CheckRequestRepository{store: store}
}

// GetByID retrieves a check request
func (r *CheckRequestRepository) GetByID(ctx context.Context, id string) (*CheckRequest, error) {
	snap, err := r.store.Get(ctx, checkRequestsColl.Doc(id))
	if err != nil {
		return nil, storeError(err, "check request")
	}
	return CheckRequestFromData(snap.ID(), snap.Data), nil
}

// Create adds a pending request
func (r *CheckRequestRepository) Create(ctx context.Context, req *CheckRequest) error {
	ref, err := r.store.Add(ctx, checkRequestsColl, map[string]any{
		"employeeId":    req.EmployeeID,
		"employeeName":  req.EmployeeName,
		"lineManagerId": req.LineManagerID,
		"locationName":  req.LocationName,
		"requestType":   req.RequestType,
		"status":        req.Status,
		"createdAt":     docstore.ServerTimestamp,
	})
	if err != nil {
		return err
	}

	req.ID = ref.ID()
	return nil
}

// UpdateStatus records the manager's decision
func (r *CheckRequestRepository) UpdateStatus(ctx context.Context, id, status, message string) error {
	err := r.store.Update(ctx, checkRequestsColl.Doc(id), map[string]any{
		"status":          status,
		"responseMessage": message,
		"updatedAt":       docstore.ServerTimestamp,
	})
	return storeError(err, "check request")
}
