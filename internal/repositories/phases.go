package repositories

import (
	"CafPlanner/internal/models/domain"
	modelrepo "CafPlanner/internal/models/repositories"
	"context"
	"fmt"

	"github.com/google/uuid"
)

// GetProgramPhases returns the weighted phases of a program in catalog order.
func (r *Repository) GetProgramPhases(ctx context.Context, programID int64) ([]domain.ProgramPhase, error) {
	op := "Repository.GetProgramPhases"
	query := `SELECT pf.programme_id, pf.phase_id, ph.nom, pf.poids
		FROM programme_phase pf
		JOIN phase ph ON ph.id = pf.phase_id
		WHERE pf.programme_id = $1
		ORDER BY ph.id`
	rows, err := r.DB.QueryContext(ctx, query, programID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var phases []domain.ProgramPhase
	for rows.Next() {
		var p domain.ProgramPhase
		if err := rows.Scan(&p.ProgramID, &p.PhaseID, &p.PhaseName, &p.Weight); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		phases = append(phases, p)
	}
	return phases, nil
}

// SumProgramPhaseWeights returns the current weight total of a program,
// optionally excluding one phase (for updates).
func (r *Repository) SumProgramPhaseWeights(ctx context.Context, programID int64, excludePhaseID int64) (float64, error) {
	op := "Repository.SumProgramPhaseWeights"
	var total float64
	query := `SELECT COALESCE(SUM(poids), 0)
		FROM programme_phase
		WHERE programme_id = $1 AND phase_id <> $2`
	err := r.DB.QueryRowContext(ctx, query, programID, excludePhaseID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return total, nil
}

// UpsertProgramPhase writes a phase weight for a program. The caller is
// responsible for having validated the 100% weight ceiling.
func (r *Repository) UpsertProgramPhase(ctx context.Context, pp domain.ProgramPhase) error {
	op := "Repository.UpsertProgramPhase"
	actor := modelrepo.ActorFrom(ctx)
	query := `INSERT INTO programme_phase (programme_id, phase_id, poids, iuser)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (programme_id, phase_id)
		DO UPDATE SET poids = $3, udate = CURRENT_TIMESTAMP, uuser = $4`
	return r.execRetry(ctx, op, query, pp.ProgramID, pp.PhaseID, pp.Weight, string(actor))
}

// GetProjectPhases returns the materialized schedule of a project.
func (r *Repository) GetProjectPhases(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectPhase, error) {
	op := "Repository.GetProjectPhases"
	query := `SELECT pp.projet_id, pp.phase_id, ph.nom, pp.date_debut, pp.date_fin
		FROM projet_phases pp
		JOIN phase ph ON ph.id = pp.phase_id
		WHERE pp.projet_id = $1
		ORDER BY ph.id`
	rows, err := r.DB.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var phases []domain.ProjectPhase
	for rows.Next() {
		var p domain.ProjectPhase
		if err := rows.Scan(&p.ProjectID, &p.PhaseID, &p.PhaseName, &p.StartDate, &p.EndDate); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		phases = append(phases, p)
	}
	return phases, nil
}

// ReplaceProjectPhases discards the previous schedule of a project and
// inserts the given rows in one transaction.
func (r *Repository) ReplaceProjectPhases(ctx context.Context, projectID uuid.UUID, phases []domain.ProjectPhase) error {
	op := "Repository.ReplaceProjectPhases"

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM projet_phases WHERE projet_id = $1`, projectID); err != nil {
		return fmt.Errorf("%s: delete: %w", op, err)
	}

	insert := `INSERT INTO projet_phases (projet_id, phase_id, date_debut, date_fin)
		VALUES ($1, $2, $3, $4)`
	for _, p := range phases {
		if _, err := tx.ExecContext(ctx, insert,
			projectID, p.PhaseID, p.StartDate, p.EndDate); err != nil {
			return fmt.Errorf("%s: insert phase %d: %w", op, p.PhaseID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}

// ListDemandLines returns one row per active project phase and profile
// allocation, the raw input of the required-capacity report.
func (r *Repository) ListDemandLines(ctx context.Context) ([]domain.DemandLine, error) {
	op := "Repository.ListDemandLines"
	query := `SELECT p.id, p.titre, COALESCE(p.estimation_jh, 0),
			pp.date_debut, pp.date_fin,
			pph.profil_id, COALESCE(pph.pourcentage, 100)
		FROM projet p
		JOIN projet_phases pp ON p.id = pp.projet_id
		JOIN phase_profils_programme pph ON pp.phase_id = pph.phase_id
		WHERE p.statut IN ($1, $2, $3)`
	rows, err := r.DB.QueryContext(ctx, query,
		domain.StatusPending, domain.StatusToPlan, domain.StatusOngoing)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var lines []domain.DemandLine
	for rows.Next() {
		var l domain.DemandLine
		if err := rows.Scan(&l.ProjectID, &l.Title, &l.EffortJH,
			&l.StartDate, &l.EndDate, &l.ProfileID, &l.AllocationPct); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		lines = append(lines, l)
	}
	return lines, nil
}
