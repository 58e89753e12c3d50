package httpserver

import (
	"CafPlanner/internal/estimation"
	"CafPlanner/internal/models/domain"
	modelrepo "CafPlanner/internal/models/repositories"
	"CafPlanner/internal/planning"
	"CafPlanner/internal/repositories"
	"CafPlanner/internal/scoring"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// actorContext threads the acting user from the X-Actor header into the
// request context for the audit columns.
func (s *Server) actorContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actor := r.Header.Get("X-Actor"); actor != "" {
			r = r.WithContext(modelrepo.WithActor(r.Context(), modelrepo.Actor(actor)))
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps core sentinels onto HTTP statuses: computational
// failures are 422 (the caller shows zero/blank plus a warning), validation
// failures 400, missing rows 404 and exhausted retries 503.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, estimation.ErrNoMatchingRule),
		errors.Is(err, scoring.ErrZeroComplexity),
		errors.Is(err, planning.ErrNotSchedulable):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, estimation.ErrOverlappingRule),
		errors.Is(err, planning.ErrWeightCeiling):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, sql.ErrNoRows):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, repositories.ErrStorageContention):
		writeError(w, http.StatusServiceUnavailable, "storage busy, retry later")
	default:
		s.log.Error("internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func readJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func yearParam(r *http.Request) int {
	if raw := r.URL.Query().Get("year"); raw != "" {
		if year, err := strconv.Atoi(raw); err == nil {
			return year
		}
	}
	return time.Now().Year()
}

func projectIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "projectID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type matrixResponse struct {
	Matrix   interface{} `json:"matrix"`
	Warnings []string    `json:"warnings,omitempty"`
}

func (s *Server) handleSupply(w http.ResponseWriter, r *http.Request) {
	matrix, warnings, err := s.capacity.Supply(r.Context(), yearParam(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matrixResponse{Matrix: matrix, Warnings: warnings})
}

func (s *Server) handleDemand(w http.ResponseWriter, r *http.Request) {
	matrix, warnings, err := s.capacity.Demand(r.Context(), yearParam(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, matrixResponse{Matrix: matrix, Warnings: warnings})
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	projects, err := s.scoring.Ranking(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

type criteriaRequest struct {
	ComplexityIDs []int64 `json:"complexite"`
	ValueIDs      []int64 `json:"valeur_metier"`
}

func (s *Server) handleCriteria(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	var req criteriaRequest
	if !readJSON(w, r, &req) {
		return
	}

	result, err := s.scoring.ApplySelections(r.Context(), projectID, req.ComplexityIDs, req.ValueIDs)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}

	windows, err := s.planning.ScheduleProject(r.Context(), projectID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, windows)
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	count, err := s.scoring.RecomputePriorities(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"ranked": count})
}

type ruleRequest struct {
	Fibo      int     `json:"fibo"`
	ScoreMin  float64 `json:"score_min"`
	ScoreMax  float64 `json:"score_max"`
	BaseValue float64 `json:"valeur_base"`
}

func (s *Server) handleAddRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if !readJSON(w, r, &req) {
		return
	}

	id, recomputed, err := s.estimation.AddRule(r.Context(), domain.ComplexityRule{
		Fibo:      req.Fibo,
		ScoreMin:  req.ScoreMin,
		ScoreMax:  req.ScoreMax,
		BaseValue: req.BaseValue,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":         id,
		"recomputed": recomputed,
	})
}

func ruleIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "ruleID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid rule id")
		return 0, false
	}
	return id, true
}

func (s *Server) handleUpdateRule(w http.ResponseWriter, r *http.Request) {
	id, ok := ruleIDParam(w, r)
	if !ok {
		return
	}
	var req ruleRequest
	if !readJSON(w, r, &req) {
		return
	}

	recomputed, err := s.estimation.UpdateRule(r.Context(), domain.ComplexityRule{
		ID:        id,
		Fibo:      req.Fibo,
		ScoreMin:  req.ScoreMin,
		ScoreMax:  req.ScoreMax,
		BaseValue: req.BaseValue,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"recomputed": recomputed})
}

func (s *Server) handleDeleteRule(w http.ResponseWriter, r *http.Request) {
	id, ok := ruleIDParam(w, r)
	if !ok {
		return
	}

	recomputed, err := s.estimation.DeleteRule(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"recomputed": recomputed})
}

func (s *Server) handleProjectPhases(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}

	phases, err := s.planning.ProjectPhases(r.Context(), projectID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, phases)
}

type resetPhasesRequest struct {
	ProgramID int64 `json:"programme_id"`
}

// handleResetPhases rewrites a project's phase rows unscheduled after its
// program changed.
func (s *Server) handleResetPhases(w http.ResponseWriter, r *http.Request) {
	projectID, ok := projectIDParam(w, r)
	if !ok {
		return
	}
	var req resetPhasesRequest
	if !readJSON(w, r, &req) {
		return
	}
	if req.ProgramID == 0 {
		writeError(w, http.StatusBadRequest, "missing programme_id")
		return
	}

	if err := s.planning.ResetProjectPhases(r.Context(), projectID, req.ProgramID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.estimation.Rules(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

func (s *Server) handleListDomains(w http.ResponseWriter, r *http.Request) {
	domains, err := s.estimation.Domains(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domains)
}

type domainRequest struct {
	Name        string  `json:"nom"`
	Coefficient float64 `json:"coefficient"`
}

func (s *Server) handleUpdateDomain(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "domainID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid domain id")
		return
	}
	var req domainRequest
	if !readJSON(w, r, &req) {
		return
	}

	recomputed, err := s.estimation.UpdateDomain(r.Context(), domain.Domain{
		ID:          id,
		Name:        req.Name,
		Coefficient: req.Coefficient,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"recomputed": recomputed})
}

func (s *Server) handleDeleteDomain(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "domainID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid domain id")
		return
	}

	if err := s.estimation.DeleteDomain(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type phaseWeightRequest struct {
	Weight float64 `json:"poids"`
}

func (s *Server) handleSetPhaseWeight(w http.ResponseWriter, r *http.Request) {
	programID, err := strconv.ParseInt(chi.URLParam(r, "programID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid program id")
		return
	}
	phaseID, err := strconv.ParseInt(chi.URLParam(r, "phaseID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid phase id")
		return
	}
	var req phaseWeightRequest
	if !readJSON(w, r, &req) {
		return
	}

	if err := s.planning.SetProgramPhaseWeight(r.Context(), domain.ProgramPhase{
		ProgramID: programID,
		PhaseID:   phaseID,
		Weight:    req.Weight,
	}); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type collaboratorRequest struct {
	ProfileID int64   `json:"profil_id"`
	BaseHours float64 `json:"heures_base"`
	PctBuild  float64 `json:"pourcentage_build"`
	PctRun    float64 `json:"pourcentage_run"`
}

func (s *Server) handleSaveCollaborator(w http.ResponseWriter, r *http.Request) {
	matricule := chi.URLParam(r, "matricule")
	if matricule == "" {
		writeError(w, http.StatusBadRequest, "missing matricule")
		return
	}
	var req collaboratorRequest
	if !readJSON(w, r, &req) {
		return
	}

	if err := s.capacity.SaveCollaborator(r.Context(), domain.Collaborator{
		Matricule: matricule,
		ProfileID: req.ProfileID,
		BaseHours: req.BaseHours,
		PctBuild:  req.PctBuild,
		PctRun:    req.PctRun,
	}); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleEstimate exposes the pure estimation for what-if checks:
// GET /estimate?score=15&domain=2.
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	score, err := strconv.ParseFloat(r.URL.Query().Get("score"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid score")
		return
	}

	var domainID *int64
	if raw := r.URL.Query().Get("domain"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid domain id")
			return
		}
		domainID = &id
	}

	est, err := s.estimation.Estimate(r.Context(), score, domainID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}
