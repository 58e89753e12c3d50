package repositories

import (
	"CafPlanner/internal/models/domain"
	modelrepo "CafPlanner/internal/models/repositories"
	"context"
	"fmt"

	"github.com/google/uuid"
)

// catalogTables maps a criterion kind onto its catalog and link tables.
// Table names are fixed identifiers, never user input.
func catalogTables(kind domain.CriterionKind) (catalog, link, linkCol string) {
	switch kind {
	case domain.KindBusinessValue:
		return "valeur_metier", "valeur_metier_projet", "id_valeur_metier"
	default:
		return "complexite", "complexite_projet", "id_complexite"
	}
}

// ListCriterionLibelles returns the distinct non-empty libelles of a catalog.
func (r *Repository) ListCriterionLibelles(ctx context.Context, kind domain.CriterionKind) ([]string, error) {
	op := "Repository.ListCriterionLibelles"
	catalog, _, _ := catalogTables(kind)
	query := fmt.Sprintf(
		`SELECT DISTINCT libelle FROM %s WHERE libelle <> '' ORDER BY libelle`, catalog)
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var libelles []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		libelles = append(libelles, l)
	}
	return libelles, nil
}

// GetCriterionByID returns one catalog row.
func (r *Repository) GetCriterionByID(ctx context.Context, kind domain.CriterionKind, id int64) (*domain.Criterion, error) {
	op := "Repository.GetCriterionByID"
	catalog, _, _ := catalogTables(kind)
	var c domain.Criterion
	query := fmt.Sprintf(`SELECT id, libelle, type_libelle, valeur_libelle, ponderation
		FROM %s WHERE id = $1`, catalog)
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&c.ID, &c.Libelle, &c.Category, &c.Value, &c.Weight)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &c, nil
}

// GetSelectedCriteria returns the criterion rows currently selected by a
// project, one per distinct libelle.
func (r *Repository) GetSelectedCriteria(ctx context.Context, kind domain.CriterionKind, projectID uuid.UUID) ([]domain.Criterion, error) {
	op := "Repository.GetSelectedCriteria"
	catalog, link, linkCol := catalogTables(kind)
	query := fmt.Sprintf(`SELECT c.id, c.libelle, c.type_libelle, c.valeur_libelle, c.ponderation
		FROM %s l
		JOIN %s c ON c.id = l.%s
		WHERE l.id_projet = $1`, link, catalog, linkCol)
	rows, err := r.DB.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var criteria []domain.Criterion
	for rows.Next() {
		var c domain.Criterion
		if err := rows.Scan(&c.ID, &c.Libelle, &c.Category, &c.Value, &c.Weight); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		criteria = append(criteria, c)
	}
	return criteria, nil
}

// findSelection returns the currently linked criterion id for a libelle,
// or zero when no selection exists yet.
func (r *Repository) findSelection(ctx context.Context, kind domain.CriterionKind, projectID uuid.UUID, libelle string) (int64, error) {
	op := "Repository.findSelection"
	catalog, link, linkCol := catalogTables(kind)
	var id int64
	query := fmt.Sprintf(`SELECT l.%s
		FROM %s l
		JOIN %s c ON c.id = l.%s
		WHERE l.id_projet = $1 AND c.libelle = $2`, linkCol, link, catalog, linkCol)
	err := r.DB.QueryRowContext(ctx, query, projectID, libelle).Scan(&id)
	if err != nil {
		if isNoRows(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// UpsertSelection records a project's choice of one criterion row for its
// libelle, replacing any previous choice for the same libelle. It returns
// true when the stored selection actually changed.
func (r *Repository) UpsertSelection(ctx context.Context, kind domain.CriterionKind, projectID uuid.UUID, criterionID int64) (bool, error) {
	op := "Repository.UpsertSelection"
	actor := modelrepo.ActorFrom(ctx)
	_, link, linkCol := catalogTables(kind)

	criterion, err := r.GetCriterionByID(ctx, kind, criterionID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	existing, err := r.findSelection(ctx, kind, projectID, criterion.Libelle)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if existing == criterionID {
		return false, nil
	}

	if existing != 0 {
		query := fmt.Sprintf(`UPDATE %s
			SET %s = $1, udate = CURRENT_TIMESTAMP, uuser = $2
			WHERE id_projet = $3 AND %s = $4`, link, linkCol, linkCol)
		if err := r.execRetry(ctx, op, query,
			criterionID, string(actor), projectID, existing); err != nil {
			return false, err
		}
		return true, nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (id_projet, %s, iuser)
		VALUES ($1, $2, $3)`, link, linkCol)
	if err := r.execRetry(ctx, op, query, projectID, criterionID, string(actor)); err != nil {
		return false, err
	}
	return true, nil
}
