package capacity

import (
	"CafPlanner/internal/models/domain"
	"CafPlanner/internal/repositories"
	"context"
	"fmt"
	"log/slog"
)

// Service builds the yearly capacity reports from stored collaborators,
// profiles and project phases.
type Service struct {
	repo *repositories.Repository
	log  *slog.Logger
}

// New creates a new capacity service.
func New(logger *slog.Logger, repo *repositories.Repository) *Service {
	return &Service{
		repo: repo,
		log:  logger.With(slog.String("component", "capacity")),
	}
}

// Supply builds the available-capacity matrix (CAF disponible) for a year.
func (s *Service) Supply(ctx context.Context, year int) (*Matrix, []string, error) {
	op := "capacity.Supply"

	profiles, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	collabs, err := s.repo.ListCollaborators(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	reps, err := s.repo.ListRepartitions(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	calendar := BuildCalendar(year)
	matrix, warnings := AggregateSupply(year, calendar, profiles, collabs, reps)

	s.logWarnings(op, warnings)
	return matrix, warnings, nil
}

// Demand builds the required-capacity matrix (CAF requise) for a year from
// every active project phase.
func (s *Service) Demand(ctx context.Context, year int) (*Matrix, []string, error) {
	op := "capacity.Demand"

	profiles, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	lines, err := s.repo.ListDemandLines(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	calendar := BuildCalendar(year)
	matrix, warnings := AggregateDemand(year, calendar, profiles, lines)

	s.logWarnings(op, warnings)
	return matrix, warnings, nil
}

// SaveCollaborator writes one collaborator of the supply referential.
func (s *Service) SaveCollaborator(ctx context.Context, c domain.Collaborator) error {
	op := "capacity.SaveCollaborator"

	if err := s.repo.UpsertCollaborator(ctx, c); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("collaborator saved",
		slog.String("op", op),
		slog.String("matricule", c.Matricule))
	return nil
}

// logWarnings surfaces data-quality findings without failing the report.
func (s *Service) logWarnings(op string, warnings []string) {
	for _, w := range warnings {
		s.log.Warn("data quality", slog.String("op", op), slog.String("detail", w))
	}
}
