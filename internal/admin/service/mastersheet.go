package service

import (
	"context"

	"github.com/attendly/attendance-backend/internal/admin/repository"
	"github.com/attendly/attendance-backend/pkg/errors"
	"github.com/attendly/attendance-backend/pkg/logger"
)

// MarkOvertimeRequest selects MasterSheet records by id
type MarkOvertimeRequest struct {
	IDs []string `json:"ids"`
}

// MasterSheetService handles MasterSheet records and overtime flags
type MasterSheetService struct {
	masterSheetRepo *repository.MasterSheetRepository
	logger          *logger.Logger
}

// NewMasterSheetService creates a new MasterSheet service
func NewMasterSheetService(masterSheetRepo *repository.MasterSheetRepository, log *logger.Logger) *MasterSheetService {
	return &MasterSheetService{
		masterSheetRepo: masterSheetRepo,
		logger:          log,
	}
}

// List returns records ordered by employee number
func (s *MasterSheetService) List(ctx context.Context) ([]*repository.MasterSheetEmployee, error) {
	return s.masterSheetRepo.List(ctx)
}

// Delete removes a record
func (s *MasterSheetService) Delete(ctx context.Context, id string) error {
	return s.masterSheetRepo.Delete(ctx, id)
}

// ToggleOvertime flips the overtime flag and returns the updated record.
func (s *MasterSheetService) ToggleOvertime(ctx context.Context, id string) (*repository.MasterSheetEmployee, error) {
	emp, err := s.masterSheetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := !emp.HasOvertime
	label := repository.NoOvertimeLabel
	if next {
		label = repository.DefaultOvertimeLabel
	}
	if err := s.masterSheetRepo.SetOvertime(ctx, id, next, label); err != nil {
		return nil, err
	}

	s.logger.Info().Str("doc_id", id).Bool("has_overtime", next).Msg("overtime toggled")
	return s.masterSheetRepo.GetByID(ctx, id)
}

// MarkOvertime flags every selected record in one batch. Either all of them
// are flagged or none is.
func (s *MasterSheetService) MarkOvertime(ctx context.Context, req *MarkOvertimeRequest) (int, error) {
	ids := make([]string, 0, len(req.IDs))
	seen := make(map[string]bool, len(req.IDs))
	for _, id := range req.IDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return 0, errors.BadRequest("select at least one employee")
	}

	if err := s.masterSheetRepo.MarkOvertime(ctx, ids); err != nil {
		return 0, err
	}

	s.logger.Info().Int("count", len(ids)).Msg("employees marked for overtime")
	return len(ids), nil
}
