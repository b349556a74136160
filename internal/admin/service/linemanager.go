package service

import (
	"context"
	"fmt"

	"github.com/attendly/attendance-backend/internal/admin/domain"
	"github.com/attendly/attendance-backend/internal/admin/repository"
	"github.com/attendly/attendance-backend/pkg/errors"
	"github.com/attendly/attendance-backend/pkg/httputil"
	"github.com/attendly/attendance-backend/pkg/logger"
)

// CreateLineManagerRequest names a MasterSheet employee as manager of a
// comma separated list of team member numbers.
type CreateLineManagerRequest struct {
	ManagerID   string `json:"managerId" validate:"required"`
	Department  string `json:"department" validate:"required"`
	TeamMembers string `json:"teamMembers"`
}

// LineManagerResult is the created manager with the outcome of each team
// member update.
type LineManagerResult struct {
	Manager *repository.LineManager `json:"manager"`
	Members []RowResult             `json:"members"`
}

// TeamView lists a manager's team the way the dashboard shows it
type TeamView struct {
	Manager *repository.LineManager `json:"manager"`
	Lines   []string                `json:"lines"`
}

// LineManagerService handles line managers and the back-references on
// their team members' MasterSheet records.
type LineManagerService struct {
	managerRepo     *repository.LineManagerRepository
	masterSheetRepo *repository.MasterSheetRepository
	logger          *logger.Logger
}

// NewLineManagerService creates a new line manager service
func NewLineManagerService(
	managerRepo *repository.LineManagerRepository,
	masterSheetRepo *repository.MasterSheetRepository,
	log *logger.Logger,
) *LineManagerService {
	return &LineManagerService{
		managerRepo:     managerRepo,
		masterSheetRepo: masterSheetRepo,
		logger:          log.WithComponent("line_managers"),
	}
}

// List lists all line managers
func (s *LineManagerService) List(ctx context.Context) ([]*repository.LineManager, error) {
	return s.managerRepo.List(ctx)
}

// Create stores the manager and then points every team member at it. A
// member that cannot be updated is reported and logged; the rest continue.
func (s *LineManagerService) Create(ctx context.Context, req *CreateLineManagerRequest) (*LineManagerResult, error) {
	if err := httputil.Validate(req); err != nil {
		return nil, err
	}

	source, err := s.masterSheetRepo.GetByID(ctx, req.ManagerID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.NotFound("manager in MasterSheet")
		}
		return nil, err
	}

	manager := &repository.LineManager{
		ManagerID:             req.ManagerID,
		ManagerEmployeeNumber: source.EmployeeNumber,
		ManagerName:           source.EmployeeName,
		Department:            req.Department,
		TeamMembers:           domain.ParseTeamMembers(req.TeamMembers),
	}
	if err := s.managerRepo.Create(ctx, manager); err != nil {
		return nil, err
	}

	results := make([]RowResult, 0, len(manager.TeamMembers))
	for n, token := range manager.TeamMembers {
		id := domain.TeamMemberID(token)
		result := RowResult{Row: n + 1, Key: token, DocID: id, Outcome: OutcomeUpdated}

		if err := s.masterSheetRepo.AssignLineManager(ctx, id, manager); err != nil {
			s.logger.Error().Err(err).
				Str("manager_id", manager.ManagerID).
				Str("doc_id", id).
				Msg("failed to update team member")
			result = failed(token, err)
			result.Row, result.DocID = n+1, id
			if errors.Is(err, errors.ErrNotFound) {
				result.Outcome = OutcomeNotFound
			}
		}
		results = append(results, result)
	}

	s.logger.Info().
		Str("manager_id", manager.ManagerID).
		Int("team_size", len(manager.TeamMembers)).
		Msg("line manager created")

	return &LineManagerResult{Manager: manager, Members: results}, nil
}

// ViewTeam resolves each team token against the MasterSheet.
func (s *LineManagerService) ViewTeam(ctx context.Context, id string) (*TeamView, error) {
	manager, err := s.managerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(manager.TeamMembers))
	for _, token := range manager.TeamMembers {
		member, err := s.masterSheetRepo.GetByID(ctx, domain.TeamMemberID(token))
		switch {
		case errors.Is(err, errors.ErrNotFound):
			lines = append(lines, fmt.Sprintf("%s - (Not found in MasterSheet)", token))
			continue
		case err != nil:
			return nil, err
		}

		designation := member.Designation
		if designation == "" {
			designation = "N/A"
		}
		lines = append(lines, fmt.Sprintf("%s - %s (%s)", member.EmployeeNumber, member.EmployeeName, designation))
	}

	return &TeamView{Manager: manager, Lines: lines}, nil
}

// Delete clears the back-reference from team members that still point at
// this manager, then removes the manager.
func (s *LineManagerService) Delete(ctx context.Context, id string) error {
	manager, err := s.managerRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	for _, token := range manager.TeamMembers {
		memberID := domain.TeamMemberID(token)
		member, err := s.masterSheetRepo.GetByID(ctx, memberID)
		if err != nil {
			if !errors.Is(err, errors.ErrNotFound) {
				s.logger.Error().Err(err).Str("doc_id", memberID).Msg("failed to read team member")
			}
			continue
		}
		if member.LineManagerID != manager.ManagerID {
			continue
		}
		if err := s.masterSheetRepo.ClearLineManager(ctx, memberID); err != nil {
			s.logger.Error().Err(err).
				Str("manager_id", manager.ManagerID).
				Str("doc_id", memberID).
				Msg("failed to clear team member")
		}
	}

	if err := s.managerRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("manager_id", manager.ManagerID).Msg("line manager deleted")
	return nil
}
