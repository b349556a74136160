package service

import (
	"context"

	"github.com/attendly/attendance-backend/internal/admin/repository"
	"github.com/attendly/attendance-backend/pkg/errors"
	"github.com/attendly/attendance-backend/pkg/httputil"
	"github.com/attendly/attendance-backend/pkg/logger"
)

// CreateEmployeeRequest is a manual single-employee submission
type CreateEmployeeRequest struct {
	PIN         string `json:"pin" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Designation string `json:"designation"`
	Department  string `json:"department"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone"`
	Country     string `json:"country"`
	Birthdate   string `json:"birthdate"`
}

// EmployeeService handles app-side employee records
type EmployeeService struct {
	employeeRepo *repository.EmployeeRepository
	logger       *logger.Logger
}

// NewEmployeeService creates a new employee service
func NewEmployeeService(employeeRepo *repository.EmployeeRepository, log *logger.Logger) *EmployeeService {
	return &EmployeeService{
		employeeRepo: employeeRepo,
		logger:       log,
	}
}

// List lists all employees
func (s *EmployeeService) List(ctx context.Context) ([]*repository.Employee, error) {
	return s.employeeRepo.List(ctx)
}

// Create validates and adds one employee. A pin already in use is rejected
// before anything is written.
func (s *EmployeeService) Create(ctx context.Context, req *CreateEmployeeRequest) (*repository.Employee, error) {
	if err := httputil.Validate(req); err != nil {
		return nil, err
	}

	exists, err := s.employeeRepo.PINExists(ctx, req.PIN)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.Conflict("This PIN is already in use. Please use a different PIN.")
	}

	emp := &repository.Employee{
		PIN:         req.PIN,
		Name:        req.Name,
		Designation: req.Designation,
		Department:  req.Department,
		Email:       req.Email,
		Phone:       req.Phone,
		Country:     req.Country,
		Birthdate:   req.Birthdate,
	}
	if err := s.employeeRepo.Create(ctx, emp); err != nil {
		return nil, err
	}

	s.logger.Info().Str("employee_id", emp.ID).Str("pin", emp.PIN).Msg("employee created")
	return emp, nil
}

// Delete removes an employee
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	return s.employeeRepo.Delete(ctx, id)
}
