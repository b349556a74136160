package service

import (
	"context"

	"github.com/attendly/attendance-backend/internal/admin/domain"
	"github.com/attendly/attendance-backend/internal/admin/repository"
	"github.com/attendly/attendance-backend/pkg/httputil"
	"github.com/attendly/attendance-backend/pkg/logger"
)

// CreateCheckRequestRequest is an employee asking to check in or out away
// from the registered location
type CreateCheckRequestRequest struct {
	EmployeeID    string `json:"employeeId" validate:"required"`
	EmployeeName  string `json:"employeeName" validate:"required"`
	LineManagerID string `json:"lineManagerId" validate:"required"`
	LocationName  string `json:"locationName"`
	RequestType   string `json:"requestType" validate:"omitempty,oneof=check-in check-out"`
}

// UpdateCheckRequestStatusRequest is a manager's decision
type UpdateCheckRequestStatusRequest struct {
	Status          string `json:"status" validate:"required,oneof=approved rejected"`
	ResponseMessage string `json:"responseMessage"`
}

// CheckRequestService handles check-in and check-out approval requests.
// Notifications follow from the document change events of its writes.
type CheckRequestService struct {
	requestRepo *repository.CheckRequestRepository
	logger      *logger.Logger
}

// NewCheckRequestService creates a new check request service
func NewCheckRequestService(requestRepo *repository.CheckRequestRepository, log *logger.Logger) *CheckRequestService {
	return &CheckRequestService{
		requestRepo: requestRepo,
		logger:      log,
	}
}

// Create stores a pending request
func (s *CheckRequestService) Create(ctx context.Context, req *CreateCheckRequestRequest) (*repository.CheckRequest, error) {
	if err := httputil.Validate(req); err != nil {
		return nil, err
	}

	cr := &repository.CheckRequest{
		EmployeeID:    req.EmployeeID,
		EmployeeName:  req.EmployeeName,
		LineManagerID: req.LineManagerID,
		LocationName:  req.LocationName,
		RequestType:   domain.RequestTypeOrDefault(req.RequestType),
		Status:        domain.StatusPending,
	}
	if err := s.requestRepo.Create(ctx, cr); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("request_id", cr.ID).
		Str("employee_id", cr.EmployeeID).
		Str("request_type", cr.RequestType).
		Msg("check request created")
	return cr, nil
}

// UpdateStatus approves or rejects a request
func (s *CheckRequestService) UpdateStatus(ctx context.Context, id string, req *UpdateCheckRequestStatusRequest) (*repository.CheckRequest, error) {
	if err := httputil.Validate(req); err != nil {
		return nil, err
	}

	if err := s.requestRepo.UpdateStatus(ctx, id, req.Status, req.ResponseMessage); err != nil {
		return nil, err
	}
	return s.requestRepo.GetByID(ctx, id)
}
