package estimation

import (
	"CafPlanner/internal/models/domain"
	"CafPlanner/internal/repositories"
	"CafPlanner/internal/utils/logger/sl"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Service runs the estimation engine against the stored rule table and
// cascades re-estimation when rules or domains change.
type Service struct {
	repo *repositories.Repository
	log  *slog.Logger
}

// New creates a new estimation service.
func New(logger *slog.Logger, repo *repositories.Repository) *Service {
	return &Service{
		repo: repo,
		log:  logger.With(slog.String("component", "estimation")),
	}
}

// Estimate computes the effort for a score under a domain. A missing domain
// reference degrades to a zero coefficient, per the estimation contract.
func (s *Service) Estimate(ctx context.Context, score float64, domainID *int64) (Estimate, error) {
	op := "estimation.Estimate"

	rules, err := s.repo.ListRules(ctx)
	if err != nil {
		return Estimate{}, fmt.Errorf("%s: %w", op, err)
	}

	var coefficient float64
	if domainID != nil {
		d, err := s.repo.GetDomainByID(ctx, *domainID)
		if err != nil {
			return Estimate{}, fmt.Errorf("%s: %w", op, err)
		}
		if d != nil {
			coefficient = d.Coefficient
		}
	}

	est, err := Compute(score, rules, coefficient)
	if err != nil {
		return Estimate{}, fmt.Errorf("%s: %w", op, err)
	}
	return est, nil
}

// EstimateProject recomputes and persists a project's effort estimation.
// A project without a domain or without a score keeps an estimation of zero.
func (s *Service) EstimateProject(ctx context.Context, projectID uuid.UUID) (int, error) {
	op := "estimation.EstimateProject"
	log := s.log.With(slog.String("op", op), slog.String("projectID", projectID.String()))

	project, err := s.repo.GetProjectByID(ctx, projectID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	effort, err := s.effortFor(ctx, project)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.SetProjectEstimation(ctx, projectID, effort); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("estimation recomputed", slog.Int("estimationJH", effort))
	return effort, nil
}

// effortFor computes the estimation for one project, degrading to zero when
// the domain or the score is missing, or when no rule covers the score.
func (s *Service) effortFor(ctx context.Context, project *domain.Project) (int, error) {
	if project.DomainID == nil || project.ComplexityScore == 0 {
		return 0, nil
	}

	est, err := s.Estimate(ctx, project.ComplexityScore, project.DomainID)
	if err != nil {
		if errors.Is(err, ErrNoMatchingRule) {
			s.log.Warn("no rule covers project score",
				slog.String("projectID", project.ID.String()),
				slog.Float64("score", project.ComplexityScore))
			return 0, nil
		}
		return 0, err
	}
	return est.EffortJH, nil
}

// AddRule validates and inserts a complexity rule, then re-estimates every
// project whose score falls in the new range.
func (s *Service) AddRule(ctx context.Context, rule domain.ComplexityRule) (int64, int, error) {
	op := "estimation.AddRule"

	rules, err := s.repo.ListRules(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := ValidateRange(rule, rules); err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.repo.CreateRule(ctx, rule)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", op, err)
	}

	recomputed, err := s.reestimateRange(ctx, rule.ScoreMin, rule.ScoreMax)
	if err != nil {
		return id, recomputed, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("rule added",
		slog.Int64("ruleID", id),
		slog.Int("projectsRecomputed", recomputed))
	return id, recomputed, nil
}

// UpdateRule validates and rewrites a rule, then re-estimates every project
// whose score falls in the old or the new range.
func (s *Service) UpdateRule(ctx context.Context, rule domain.ComplexityRule) (int, error) {
	op := "estimation.UpdateRule"

	previous, err := s.repo.GetRuleByID(ctx, rule.ID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	rules, err := s.repo.ListRules(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if err := ValidateRange(rule, rules); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.UpdateRule(ctx, rule); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	// Both the old and the new range are invalidated by the edit.
	minScore := min(previous.ScoreMin, rule.ScoreMin)
	maxScore := max(previous.ScoreMax, rule.ScoreMax)
	recomputed, err := s.reestimateRange(ctx, minScore, maxScore)
	if err != nil {
		return recomputed, fmt.Errorf("%s: %w", op, err)
	}
	return recomputed, nil
}

// DeleteRule removes a rule and re-estimates the projects it used to cover;
// their estimation falls back to zero unless another rule matches.
func (s *Service) DeleteRule(ctx context.Context, ruleID int64) (int, error) {
	op := "estimation.DeleteRule"

	previous, err := s.repo.GetRuleByID(ctx, ruleID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.DeleteRule(ctx, ruleID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	recomputed, err := s.reestimateRange(ctx, previous.ScoreMin, previous.ScoreMax)
	if err != nil {
		return recomputed, fmt.Errorf("%s: %w", op, err)
	}
	return recomputed, nil
}

// Rules returns the rule table in matching order.
func (s *Service) Rules(ctx context.Context) ([]domain.ComplexityRule, error) {
	op := "estimation.Rules"

	rules, err := s.repo.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rules, nil
}

// Domains returns the functional domain referential.
func (s *Service) Domains(ctx context.Context) ([]domain.Domain, error) {
	op := "estimation.Domains"

	domains, err := s.repo.ListDomains(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return domains, nil
}

// UpdateDomain rewrites a domain and re-estimates its projects.
func (s *Service) UpdateDomain(ctx context.Context, d domain.Domain) (int, error) {
	op := "estimation.UpdateDomain"

	if err := s.repo.UpdateDomain(ctx, d); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	projects, err := s.repo.ListProjectsByDomain(ctx, d.ID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	recomputed := 0
	for _, p := range projects {
		if p.ComplexityScore == 0 {
			continue
		}
		if _, err := s.EstimateProject(ctx, p.ID); err != nil {
			s.log.Error("re-estimation failed", sl.Err(err),
				slog.String("projectID", p.ID.String()))
			continue
		}
		recomputed++
	}
	return recomputed, nil
}

// DeleteDomain removes a domain. Dependent projects lose their domain
// reference and their estimation is reset to zero.
func (s *Service) DeleteDomain(ctx context.Context, domainID int64) error {
	op := "estimation.DeleteDomain"

	if err := s.repo.DeleteDomain(ctx, domainID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("domain deleted, dependent projects reset",
		slog.Int64("domainID", domainID))
	return nil
}

func (s *Service) reestimateRange(ctx context.Context, minScore, maxScore float64) (int, error) {
	projects, err := s.repo.ListProjectsInScoreRange(ctx, minScore, maxScore)
	if err != nil {
		return 0, err
	}

	recomputed := 0
	for _, p := range projects {
		if p.DomainID == nil || p.ComplexityScore == 0 {
			continue
		}
		if _, err := s.EstimateProject(ctx, p.ID); err != nil {
			s.log.Error("re-estimation failed", sl.Err(err),
				slog.String("projectID", p.ID.String()))
			continue
		}
		recomputed++
	}
	return recomputed, nil
}
