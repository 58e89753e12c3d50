package planning

import (
	"CafPlanner/internal/models/domain"
	"CafPlanner/internal/repositories"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Service materializes phase schedules for projects. A schedule run replaces
// every previously stored window of the project.
type Service struct {
	repo *repositories.Repository
	log  *slog.Logger
}

// New creates a new planning service.
func New(logger *slog.Logger, repo *repositories.Repository) *Service {
	return &Service{
		repo: repo,
		log:  logger.With(slog.String("component", "planning")),
	}
}

// ScheduleProject computes and persists the phase windows of a project from
// its current estimation, go-live date and program phase weights.
func (s *Service) ScheduleProject(ctx context.Context, projectID uuid.UUID) ([]Window, error) {
	op := "planning.ScheduleProject"
	log := s.log.With(
		slog.String("op", op),
		slog.String("projectID", projectID.String()),
	)

	project, err := s.repo.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if project.ProgramID == nil {
		return nil, fmt.Errorf("%s: no program attached: %w", op, ErrNotSchedulable)
	}

	phases, err := s.repo.GetProgramPhases(ctx, *project.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	goLive, err := s.goLiveDate(project)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	windows, err := Schedule(project.EstimationJH, goLive, phases)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows := make([]domain.ProjectPhase, 0, len(windows))
	for _, w := range windows {
		start := w.Start.Format(domain.DateLayout)
		end := w.End.Format(domain.DateLayout)
		rows = append(rows, domain.ProjectPhase{
			ProjectID: projectID,
			PhaseID:   w.PhaseID,
			StartDate: &start,
			EndDate:   &end,
		})
	}
	if err := s.repo.ReplaceProjectPhases(ctx, projectID, rows); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("phases scheduled",
		slog.Int("phases", len(windows)),
		slog.Time("goLive", goLive),
		slog.Int("estimationJH", project.EstimationJH))
	return windows, nil
}

// ProjectPhases returns the stored schedule windows of a project.
func (s *Service) ProjectPhases(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectPhase, error) {
	op := "planning.ProjectPhases"

	phases, err := s.repo.GetProjectPhases(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return phases, nil
}

// ResetProjectPhases rewrites a project's phase rows unscheduled (null
// dates). Used when the program, and therefore the phase set, changes.
func (s *Service) ResetProjectPhases(ctx context.Context, projectID uuid.UUID, programID int64) error {
	op := "planning.ResetProjectPhases"

	phases, err := s.repo.GetProgramPhases(ctx, programID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows := make([]domain.ProjectPhase, 0, len(phases))
	for _, p := range phases {
		rows = append(rows, domain.ProjectPhase{
			ProjectID: projectID,
			PhaseID:   p.PhaseID,
		})
	}
	if err := s.repo.ReplaceProjectPhases(ctx, projectID, rows); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("phases reset pending a fresh schedule",
		slog.String("projectID", projectID.String()),
		slog.Int64("programID", programID))
	return nil
}

// SetProgramPhaseWeight validates the 100% ceiling and writes the weight.
func (s *Service) SetProgramPhaseWeight(ctx context.Context, pp domain.ProgramPhase) error {
	op := "planning.SetProgramPhaseWeight"

	total, err := s.repo.SumProgramPhaseWeights(ctx, pp.ProgramID, pp.PhaseID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if total+pp.Weight > 100 {
		return fmt.Errorf("%s: total weight %.1f%%: %w", op, total+pp.Weight, ErrWeightCeiling)
	}

	return s.repo.UpsertProgramPhase(ctx, pp)
}

// goLiveDate parses the project's MEP date; absent the MEP the go-live
// defaults to today plus the estimation, mirroring the planning screen.
func (s *Service) goLiveDate(project *domain.Project) (time.Time, error) {
	if project.GoLiveDate == nil || *project.GoLiveDate == "" {
		return time.Now().AddDate(0, 0, project.EstimationJH), nil
	}
	goLive, err := time.Parse(domain.DateLayout, *project.GoLiveDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("date MEP %q: %w", *project.GoLiveDate, err)
	}
	return goLive, nil
}
