package repositories

import (
	"CafPlanner/internal/models/domain"
	modelrepo "CafPlanner/internal/models/repositories"
	"context"
	"fmt"
)

// ListRules returns the whole complexity rule table in table order.
func (r *Repository) ListRules(ctx context.Context) ([]domain.ComplexityRule, error) {
	op := "Repository.ListRules"
	query := `SELECT id, fibo, score_min, score_max, valeur_base
		FROM regle_complexite
		ORDER BY fibo ASC, score_min ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var rules []domain.ComplexityRule
	for rows.Next() {
		var rule domain.ComplexityRule
		if err := rows.Scan(&rule.ID, &rule.Fibo,
			&rule.ScoreMin, &rule.ScoreMax, &rule.BaseValue); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// GetRuleByID returns one complexity rule.
func (r *Repository) GetRuleByID(ctx context.Context, id int64) (*domain.ComplexityRule, error) {
	op := "Repository.GetRuleByID"
	var rule domain.ComplexityRule
	query := `SELECT id, fibo, score_min, score_max, valeur_base
		FROM regle_complexite WHERE id = $1`
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&rule.ID, &rule.Fibo, &rule.ScoreMin, &rule.ScoreMax, &rule.BaseValue)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &rule, nil
}

// CreateRule inserts a new complexity rule and returns its id.
func (r *Repository) CreateRule(ctx context.Context, rule domain.ComplexityRule) (int64, error) {
	op := "Repository.CreateRule"
	actor := modelrepo.ActorFrom(ctx)
	var id int64
	query := `INSERT INTO regle_complexite (fibo, score_min, score_max, valeur_base, iuser)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := r.queryRowRetry(ctx, op, query,
		[]interface{}{rule.Fibo, rule.ScoreMin, rule.ScoreMax, rule.BaseValue, string(actor)},
		&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateRule rewrites an existing complexity rule.
func (r *Repository) UpdateRule(ctx context.Context, rule domain.ComplexityRule) error {
	op := "Repository.UpdateRule"
	actor := modelrepo.ActorFrom(ctx)
	query := `UPDATE regle_complexite
		SET fibo = $1, score_min = $2, score_max = $3, valeur_base = $4,
			udate = CURRENT_TIMESTAMP, uuser = $5
		WHERE id = $6`
	return r.execRetry(ctx, op, query,
		rule.Fibo, rule.ScoreMin, rule.ScoreMax, rule.BaseValue, string(actor), rule.ID)
}

// DeleteRule removes a complexity rule.
func (r *Repository) DeleteRule(ctx context.Context, id int64) error {
	op := "Repository.DeleteRule"
	query := `DELETE FROM regle_complexite WHERE id = $1`
	return r.execRetry(ctx, op, query, id)
}
