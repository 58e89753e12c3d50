package scoring

import (
	"CafPlanner/internal/estimation"
	"CafPlanner/internal/models/domain"
	"CafPlanner/internal/repositories"
	"CafPlanner/internal/utils/logger/sl"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Service runs the scoring cascade: criteria selections feed the composite
// scores, which feed the estimation, the WSJF score, the costing status and
// finally the portfolio-wide priority ranking.
type Service struct {
	repo       *repositories.Repository
	estimation *estimation.Service
	log        *slog.Logger
}

// New creates a new scoring service.
func New(logger *slog.Logger, repo *repositories.Repository, est *estimation.Service) *Service {
	return &Service{
		repo:       repo,
		estimation: est,
		log:        logger.With(slog.String("component", "scoring")),
	}
}

// Result is the outcome of a criteria write on a project.
type Result struct {
	ProjectID       uuid.UUID            `json:"projet_id"`
	ComplexityScore float64              `json:"score_complexite"`
	ValueScore      float64              `json:"score_valeur_metier"`
	WSJFScore       *float64             `json:"score_wsjf"`
	EstimationJH    int                  `json:"estimation_jh"`
	CostingStatus   domain.CostingStatus `json:"statut_chiffrage"`
	Priority        *int                 `json:"priority"`
	Warnings        []string             `json:"warnings,omitempty"`
}

// ApplySelections records a project's criterion selections (complexity
// and/or business value) and runs the full synchronous recompute cascade.
func (s *Service) ApplySelections(ctx context.Context, projectID uuid.UUID, complexityIDs, valueIDs []int64) (*Result, error) {
	op := "scoring.ApplySelections"
	log := s.log.With(
		slog.String("op", op),
		slog.String("projectID", projectID.String()),
	)

	if _, err := s.repo.GetProjectByID(ctx, projectID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, id := range complexityIDs {
		if _, err := s.repo.UpsertSelection(ctx, domain.KindComplexity, projectID, id); err != nil {
			return nil, fmt.Errorf("%s: complexity selection %d: %w", op, id, err)
		}
	}
	for _, id := range valueIDs {
		if _, err := s.repo.UpsertSelection(ctx, domain.KindBusinessValue, projectID, id); err != nil {
			return nil, fmt.Errorf("%s: value selection %d: %w", op, id, err)
		}
	}

	result, err := s.Recompute(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("selections applied",
		slog.Float64("scoreComplexite", result.ComplexityScore),
		slog.Float64("scoreValeurMetier", result.ValueScore),
		slog.Int("estimationJH", result.EstimationJH),
		slog.String("statutChiffrage", describeState(result.CostingStatus)))
	return result, nil
}

// Recompute refreshes every derived field of a project from its current
// criterion selections, then refreshes the global ranking.
func (s *Service) Recompute(ctx context.Context, projectID uuid.UUID) (*Result, error) {
	op := "scoring.Recompute"

	complexitySel, err := s.repo.GetSelectedCriteria(ctx, domain.KindComplexity, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	valueSel, err := s.repo.GetSelectedCriteria(ctx, domain.KindBusinessValue, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := &Result{
		ProjectID:       projectID,
		ComplexityScore: ComplexityScore(complexitySel),
		ValueScore:      ValueScore(valueSel),
	}

	// WSJF is undefined against a zero complexity score; the project is
	// left unranked and the condition reported as a warning.
	if wsjf, err := PriorityScore(result.ValueScore, result.ComplexityScore); err == nil {
		result.WSJFScore = &wsjf
	} else {
		result.Warnings = append(result.Warnings,
			"score WSJF non calculé : score de complexité nul")
	}

	project, err := s.repo.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	estimationJH := 0
	if project.DomainID != nil && result.ComplexityScore != 0 {
		est, err := s.estimation.Estimate(ctx, result.ComplexityScore, project.DomainID)
		switch {
		case err == nil:
			estimationJH = est.EffortJH
		case errors.Is(err, estimation.ErrNoMatchingRule):
			result.Warnings = append(result.Warnings,
				"aucune règle de complexité ne couvre ce score — estimation à 0")
		default:
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else {
		result.Warnings = append(result.Warnings,
			"domaine ou complexité manquants — estimation non calculée")
	}
	result.EstimationJH = estimationJH

	if err := s.repo.UpdateProjectScores(ctx, projectID,
		result.ComplexityScore, result.WSJFScore, estimationJH); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdateProjectValueScore(ctx, projectID, result.ValueScore); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.updateCostingStatus(ctx, projectID, complexitySel, result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.RecomputePriorities(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.repo.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result.Priority = updated.Priority

	return result, nil
}

// updateCostingStatus re-evaluates the chiffrage state from the filled
// libelle count and persists the status reference.
func (s *Service) updateCostingStatus(ctx context.Context, projectID uuid.UUID, complexitySel []domain.Criterion, result *Result) error {
	libelles, err := s.repo.ListCriterionLibelles(ctx, domain.KindComplexity)
	if err != nil {
		return err
	}

	state := CostingState(SelectionCount(complexitySel), len(libelles))
	result.CostingStatus = state

	statusID, err := s.repo.GetStatusIDByCode(ctx, state)
	if err != nil {
		// A missing referential row must not block the scoring write.
		s.log.Warn("costing status reference missing", sl.Err(err),
			slog.String("state", string(state)))
		return nil
	}
	return s.repo.SetProjectStatusRef(ctx, projectID, statusID)
}

// RecomputePriorities rewrites the priority of every ranked project and
// clears the priority of projects that lost their WSJF score.
func (s *Service) RecomputePriorities(ctx context.Context) (int, error) {
	op := "scoring.RecomputePriorities"

	if err := s.repo.ClearUnrankedPriorities(ctx); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	entries, err := s.repo.ListProjectsForRanking(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	ranked := Rank(entries)
	for _, e := range ranked {
		if err := s.repo.UpdateProjectPriority(ctx, e.ID, e.Rank); err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
	}

	s.log.Debug("priorities recomputed", slog.Int("projects", len(ranked)))
	return len(ranked), nil
}

// Ranking returns the portfolio ordered by priority.
func (s *Service) Ranking(ctx context.Context) ([]domain.Project, error) {
	op := "scoring.Ranking"
	projects, err := s.repo.ListRankedProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return projects, nil
}
