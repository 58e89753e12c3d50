package repositories

import (
	"CafPlanner/internal/models/domain"
	modelrepo "CafPlanner/internal/models/repositories"
	"context"
	"fmt"
)

// ListProfiles returns every workforce profile ordered by name.
func (r *Repository) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	op := "Repository.ListProfiles"
	query := `SELECT id, nom, COALESCE(heures_base, 0) FROM profils ORDER BY nom`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.Name, &p.BaseHours); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// GetProfileBaseHours returns the base capacity of a profile,
// zero when the profile is unknown.
func (r *Repository) GetProfileBaseHours(ctx context.Context, profileID int64) (float64, error) {
	op := "Repository.GetProfileBaseHours"
	var hours float64
	query := `SELECT COALESCE(heures_base, 0) FROM profils WHERE id = $1`
	err := r.DB.QueryRowContext(ctx, query, profileID).Scan(&hours)
	if err != nil {
		if isNoRows(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return hours, nil
}

// ListCollaborators returns every collaborator with their annual capacity.
func (r *Repository) ListCollaborators(ctx context.Context) ([]domain.Collaborator, error) {
	op := "Repository.ListCollaborators"
	query := `SELECT c.matricule, c.profil_id,
			COALESCE(c.heures_base, 0),
			COALESCE(c.pourcentage_build, 0), COALESCE(c.pourcentage_run, 0),
			COALESCE(c.caf_disponible_build, 0), COALESCE(c.caf_disponible_run, 0)
		FROM collaborateurs c
		ORDER BY c.matricule`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var collabs []domain.Collaborator
	for rows.Next() {
		var c domain.Collaborator
		if err := rows.Scan(&c.Matricule, &c.ProfileID, &c.BaseHours,
			&c.PctBuild, &c.PctRun, &c.CafBuild, &c.CafRun); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		collabs = append(collabs, c)
	}
	return collabs, nil
}

// ListRepartitions returns every secondary-profile capacity split.
func (r *Repository) ListRepartitions(ctx context.Context) ([]domain.Repartition, error) {
	op := "Repository.ListRepartitions"
	query := `SELECT collaborateur_id, profil_id,
			COALESCE(pourcentage_build, 0), COALESCE(pourcentage_run, 0),
			COALESCE(caf_disponible_build, 0), COALESCE(caf_disponible_run, 0)
		FROM collaborateur_repartition`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var reps []domain.Repartition
	for rows.Next() {
		var rp domain.Repartition
		if err := rows.Scan(&rp.CollaboratorID, &rp.ProfileID,
			&rp.PctBuild, &rp.PctRun, &rp.CafBuild, &rp.CafRun); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		reps = append(reps, rp)
	}
	return reps, nil
}

// UpsertCollaborator writes a collaborator, deriving the Build/Run CAF from
// the percentage split over the base hours. A zero base falls back to the
// profile's configured heures_base.
func (r *Repository) UpsertCollaborator(ctx context.Context, c domain.Collaborator) error {
	op := "Repository.UpsertCollaborator"
	actor := modelrepo.ActorFrom(ctx)

	if c.BaseHours == 0 {
		hours, err := r.GetProfileBaseHours(ctx, c.ProfileID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		c.BaseHours = hours
	}
	c.CafBuild = c.PctBuild / 100.0 * c.BaseHours
	c.CafRun = c.PctRun / 100.0 * c.BaseHours

	query := `INSERT INTO collaborateurs
			(matricule, profil_id, heures_base,
			 pourcentage_build, pourcentage_run,
			 caf_disponible_build, caf_disponible_run, iuser)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (matricule) DO UPDATE SET
			profil_id = $2, heures_base = $3,
			pourcentage_build = $4, pourcentage_run = $5,
			caf_disponible_build = $6, caf_disponible_run = $7,
			udate = CURRENT_TIMESTAMP, uuser = $8`
	return r.execRetry(ctx, op, query,
		c.Matricule, c.ProfileID, c.BaseHours,
		c.PctBuild, c.PctRun, c.CafBuild, c.CafRun, string(actor))
}
