package repositories

import (
	"CafPlanner/internal/models/domain"
	modelrepo "CafPlanner/internal/models/repositories"
	"context"
	"fmt"
)

// GetDomainByID returns one functional domain, or nil when it is absent.
// A missing domain is not an error for the estimation engine: the
// coefficient then defaults to zero.
func (r *Repository) GetDomainByID(ctx context.Context, id int64) (*domain.Domain, error) {
	op := "Repository.GetDomainByID"
	var d domain.Domain
	query := `SELECT id, nom, coefficient FROM domaines WHERE id = $1`
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&d.ID, &d.Name, &d.Coefficient)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &d, nil
}

// ListDomains returns every functional domain ordered by name.
func (r *Repository) ListDomains(ctx context.Context) ([]domain.Domain, error) {
	op := "Repository.ListDomains"
	query := `SELECT id, nom, coefficient FROM domaines ORDER BY nom`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var domains []domain.Domain
	for rows.Next() {
		var d domain.Domain
		if err := rows.Scan(&d.ID, &d.Name, &d.Coefficient); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		domains = append(domains, d)
	}
	return domains, nil
}

// UpdateDomain rewrites a domain's name and coefficient.
func (r *Repository) UpdateDomain(ctx context.Context, d domain.Domain) error {
	op := "Repository.UpdateDomain"
	actor := modelrepo.ActorFrom(ctx)
	query := `UPDATE domaines
		SET nom = $1, coefficient = $2, udate = CURRENT_TIMESTAMP, uuser = $3
		WHERE id = $4`
	return r.execRetry(ctx, op, query, d.Name, d.Coefficient, string(actor), d.ID)
}

// DeleteDomain removes a domain after detaching dependent projects:
// their domain reference is nulled out and their estimation reset to zero.
func (r *Repository) DeleteDomain(ctx context.Context, id int64) error {
	op := "Repository.DeleteDomain"
	actor := modelrepo.ActorFrom(ctx)

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback()

	detach := `UPDATE projet
		SET id_domaine = NULL, estimation_jh = 0,
			udate = CURRENT_TIMESTAMP, uuser = $1
		WHERE id_domaine = $2`
	if _, err := tx.ExecContext(ctx, detach, string(actor), id); err != nil {
		return fmt.Errorf("%s: detach projects: %w", op, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM domaines WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%s: delete: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}
