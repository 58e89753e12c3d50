package repositories

import (
	"CafPlanner/internal/models/domain"
	modelrepo "CafPlanner/internal/models/repositories"
	"context"
	"fmt"

	"github.com/google/uuid"
)

const projectColumns = `id, titre, description, id_domaine, id_programme,
	id_statut_demande, statut, date_mep,
	COALESCE(score_complexite, 0), COALESCE(score_valeur_metier, 0),
	score_wsjf, COALESCE(estimation_jh, 0), priority, idate, udate`

func scanProject(scan func(dest ...interface{}) error) (*domain.Project, error) {
	var p domain.Project
	err := scan(&p.ID, &p.Title, &p.Description, &p.DomainID, &p.ProgramID,
		&p.StatusID, &p.Statut, &p.GoLiveDate,
		&p.ComplexityScore, &p.ValueScore,
		&p.WSJFScore, &p.EstimationJH, &p.Priority, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProjectByID returns one project.
func (r *Repository) GetProjectByID(ctx context.Context, projectID uuid.UUID) (*domain.Project, error) {
	op := "Repository.GetProjectByID"
	query := `SELECT ` + projectColumns + ` FROM projet WHERE id = $1`
	p, err := scanProject(r.DB.QueryRowContext(ctx, query, projectID).Scan)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// UpdateProjectScores persists the derived complexity score, WSJF score and
// effort estimation in one write. A nil wsjf clears the stored score.
func (r *Repository) UpdateProjectScores(ctx context.Context, projectID uuid.UUID, complexity float64, wsjf *float64, estimationJH int) error {
	op := "Repository.UpdateProjectScores"
	actor := modelrepo.ActorFrom(ctx)
	query := `UPDATE projet
		SET score_complexite = $1, score_wsjf = $2, estimation_jh = $3,
			udate = CURRENT_TIMESTAMP, uuser = $4
		WHERE id = $5`
	return r.execRetry(ctx, op, query, complexity, wsjf, estimationJH, string(actor), projectID)
}

// UpdateProjectValueScore persists the derived business-value score.
func (r *Repository) UpdateProjectValueScore(ctx context.Context, projectID uuid.UUID, value float64) error {
	op := "Repository.UpdateProjectValueScore"
	actor := modelrepo.ActorFrom(ctx)
	query := `UPDATE projet
		SET score_valeur_metier = $1, udate = CURRENT_TIMESTAMP, uuser = $2
		WHERE id = $3`
	return r.execRetry(ctx, op, query, value, string(actor), projectID)
}

// SetProjectEstimation overwrites only the effort estimation.
func (r *Repository) SetProjectEstimation(ctx context.Context, projectID uuid.UUID, estimationJH int) error {
	op := "Repository.SetProjectEstimation"
	actor := modelrepo.ActorFrom(ctx)
	query := `UPDATE projet
		SET estimation_jh = $1, udate = CURRENT_TIMESTAMP, uuser = $2
		WHERE id = $3`
	return r.execRetry(ctx, op, query, estimationJH, string(actor), projectID)
}

// GetStatusIDByCode resolves a statut_demande row by its stable code.
func (r *Repository) GetStatusIDByCode(ctx context.Context, code domain.CostingStatus) (int64, error) {
	op := "Repository.GetStatusIDByCode"
	var id int64
	query := `SELECT id FROM statut_demande WHERE code = $1`
	err := r.DB.QueryRowContext(ctx, query, string(code)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// SetProjectStatusRef points a project at a statut_demande row.
func (r *Repository) SetProjectStatusRef(ctx context.Context, projectID uuid.UUID, statusID int64) error {
	op := "Repository.SetProjectStatusRef"
	query := `UPDATE projet SET id_statut_demande = $1 WHERE id = $2`
	return r.execRetry(ctx, op, query, statusID, projectID)
}

// ListProjectsForRanking returns every project holding a WSJF score,
// ordered descending with the project id as a deterministic tie-break.
func (r *Repository) ListProjectsForRanking(ctx context.Context) ([]domain.ProjectRank, error) {
	op := "Repository.ListProjectsForRanking"
	query := `SELECT id, score_wsjf
		FROM projet
		WHERE score_wsjf IS NOT NULL
		ORDER BY score_wsjf DESC, id ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var entries []domain.ProjectRank
	for rows.Next() {
		var e domain.ProjectRank
		if err := rows.Scan(&e.ID, &e.WSJFScore); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ClearUnrankedPriorities drops the stored rank of every project that no
// longer holds a WSJF score, so a project falling out of the ranking cannot
// keep a stale priority.
func (r *Repository) ClearUnrankedPriorities(ctx context.Context) error {
	op := "Repository.ClearUnrankedPriorities"
	query := `UPDATE projet SET priority = NULL
		WHERE score_wsjf IS NULL AND priority IS NOT NULL`
	return r.execRetry(ctx, op, query)
}

// UpdateProjectPriority writes the computed rank onto a project.
func (r *Repository) UpdateProjectPriority(ctx context.Context, projectID uuid.UUID, rank int) error {
	op := "Repository.UpdateProjectPriority"
	query := `UPDATE projet SET priority = $1 WHERE id = $2`
	return r.execRetry(ctx, op, query, rank, projectID)
}

// ListRankedProjects returns projects in priority order for display.
func (r *Repository) ListRankedProjects(ctx context.Context) ([]domain.Project, error) {
	op := "Repository.ListRankedProjects"
	query := `SELECT ` + projectColumns + `
		FROM projet
		WHERE priority IS NOT NULL
		ORDER BY priority ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		projects = append(projects, *p)
	}
	return projects, nil
}

// ListProjectsByDomain returns the projects attached to a domain,
// used when a domain edit invalidates their estimations.
func (r *Repository) ListProjectsByDomain(ctx context.Context, domainID int64) ([]domain.Project, error) {
	op := "Repository.ListProjectsByDomain"
	query := `SELECT ` + projectColumns + ` FROM projet WHERE id_domaine = $1`
	rows, err := r.DB.QueryContext(ctx, query, domainID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		projects = append(projects, *p)
	}
	return projects, nil
}

// ListProjectsInScoreRange returns the projects whose complexity score falls
// inside [min, max], used when a rule write invalidates their estimations.
func (r *Repository) ListProjectsInScoreRange(ctx context.Context, min, max float64) ([]domain.Project, error) {
	op := "Repository.ListProjectsInScoreRange"
	query := `SELECT ` + projectColumns + `
		FROM projet
		WHERE score_complexite BETWEEN $1 AND $2`
	rows, err := r.DB.QueryContext(ctx, query, min, max)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		projects = append(projects, *p)
	}
	return projects, nil
}
