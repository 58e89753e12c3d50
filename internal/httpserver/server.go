package httpserver

import (
	"CafPlanner/internal/capacity"
	"CafPlanner/internal/config"
	"CafPlanner/internal/estimation"
	"CafPlanner/internal/models/domain"
	"CafPlanner/internal/planning"
	"CafPlanner/internal/scoring"
	"CafPlanner/internal/utils/logger/sl"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// CapacityService builds the yearly supply/demand matrices and maintains
// the supply referential.
type CapacityService interface {
	Supply(ctx context.Context, year int) (*capacity.Matrix, []string, error)
	Demand(ctx context.Context, year int) (*capacity.Matrix, []string, error)
	SaveCollaborator(ctx context.Context, c domain.Collaborator) error
}

// ScoringService applies criterion selections and maintains the ranking.
type ScoringService interface {
	ApplySelections(ctx context.Context, projectID uuid.UUID, complexityIDs, valueIDs []int64) (*scoring.Result, error)
	RecomputePriorities(ctx context.Context) (int, error)
	Ranking(ctx context.Context) ([]domain.Project, error)
}

// PlanningService materializes project phase schedules.
type PlanningService interface {
	ScheduleProject(ctx context.Context, projectID uuid.UUID) ([]planning.Window, error)
	ProjectPhases(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectPhase, error)
	ResetProjectPhases(ctx context.Context, projectID uuid.UUID, programID int64) error
	SetProgramPhaseWeight(ctx context.Context, pp domain.ProgramPhase) error
}

// EstimationService manages the rule and domain referentials and their
// recomputation cascades.
type EstimationService interface {
	Rules(ctx context.Context) ([]domain.ComplexityRule, error)
	AddRule(ctx context.Context, rule domain.ComplexityRule) (int64, int, error)
	UpdateRule(ctx context.Context, rule domain.ComplexityRule) (int, error)
	DeleteRule(ctx context.Context, ruleID int64) (int, error)
	Domains(ctx context.Context) ([]domain.Domain, error)
	UpdateDomain(ctx context.Context, d domain.Domain) (int, error)
	DeleteDomain(ctx context.Context, domainID int64) error
	Estimate(ctx context.Context, score float64, domainID *int64) (estimation.Estimate, error)
}

// Server is the thin JSON surface in front of the planning core.
type Server struct {
	srv        *http.Server
	cfg        *config.Config
	capacity   CapacityService
	scoring    ScoringService
	planning   PlanningService
	estimation EstimationService
	log        *slog.Logger
}

// New creates a new Server instance.
func New(
	logger *slog.Logger,
	cfg *config.Config,
	capacitySvc CapacityService,
	scoringSvc ScoringService,
	planningSvc PlanningService,
	estimationSvc EstimationService,
) *Server {
	op := "httpserver.New()"
	log := logger.With(slog.String("op", op))

	s := &Server{
		cfg:        cfg,
		capacity:   capacitySvc,
		scoring:    scoringSvc,
		planning:   planningSvc,
		estimation: estimationSvc,
		log:        log,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(cfg.HttpServer.Timeout))
	r.Use(s.actorContext)

	r.Get("/health", s.handleHealth)
	r.Get("/caf/supply", s.handleSupply)
	r.Get("/caf/demand", s.handleDemand)
	r.Get("/projects/ranking", s.handleRanking)
	r.Post("/projects/{projectID}/criteria", s.handleCriteria)
	r.Post("/projects/{projectID}/schedule", s.handleSchedule)
	r.Get("/projects/{projectID}/phases", s.handleProjectPhases)
	r.Post("/projects/{projectID}/phases/reset", s.handleResetPhases)
	r.Post("/rank", s.handleRank)
	r.Get("/rules", s.handleListRules)
	r.Post("/rules", s.handleAddRule)
	r.Put("/rules/{ruleID}", s.handleUpdateRule)
	r.Delete("/rules/{ruleID}", s.handleDeleteRule)
	r.Get("/domains", s.handleListDomains)
	r.Put("/domains/{domainID}", s.handleUpdateDomain)
	r.Delete("/domains/{domainID}", s.handleDeleteDomain)
	r.Put("/programs/{programID}/phases/{phaseID}", s.handleSetPhaseWeight)
	r.Put("/collaborators/{matricule}", s.handleSaveCollaborator)
	r.Get("/estimate", s.handleEstimate)

	addr := net.JoinHostPort(cfg.HttpServer.Address, cfg.HttpServer.Port)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: cfg.HttpServer.Timeout,
		IdleTimeout:       cfg.HttpServer.IdleTimeout,
	}

	log.Info("http server created", slog.String("addr", addr))
	return s
}

// Start runs the listener until Shutdown is called.
func (s *Server) Start() {
	op := "httpserver.Start()"
	log := s.log.With(slog.String("op", op))

	log.Info("http server listening", slog.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("http server stopped", sl.Err(err))
	}
}

// Shutdown stops the listener, draining in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	op := "httpserver.Shutdown"
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
