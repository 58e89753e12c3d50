package estimation

import (
	"CafPlanner/internal/models/domain"
	"errors"
	"fmt"
	"math"
)

// ErrNoMatchingRule reports that no complexity rule covers the given score.
// The caller must treat the estimate as zero and surface a warning.
var ErrNoMatchingRule = errors.New("no complexity rule matches the score")

// ErrOverlappingRule reports that a rule write would make two score ranges
// intersect.
var ErrOverlappingRule = errors.New("rule range overlaps an existing rule")

// Estimate is the outcome of mapping a complexity score through the rule
// table and the domain coefficient.
type Estimate struct {
	Score       float64 `json:"score"`
	Fibonacci   int     `json:"fibonacci"`
	BaseValue   float64 `json:"valeur_base"`
	Coefficient float64 `json:"coefficient"`
	EffortJH    int     `json:"charge_estimee"`
}

// Compute maps a complexity score onto an effort estimate in person-days.
//
// The first rule (in table order) whose [score_min, score_max] contains the
// score provides the base value; the domain coefficient is applied as
// base * (1 + coef/100). Rounding is half-to-even and happens once, at the
// final step.
func Compute(score float64, rules []domain.ComplexityRule, coefficient float64) (Estimate, error) {
	for _, rule := range rules {
		if !rule.Contains(score) {
			continue
		}
		effort := rule.BaseValue * (1 + coefficient/100.0)
		return Estimate{
			Score:       score,
			Fibonacci:   rule.Fibo,
			BaseValue:   rule.BaseValue,
			Coefficient: coefficient,
			EffortJH:    int(math.RoundToEven(effort)),
		}, nil
	}
	return Estimate{}, fmt.Errorf("score %.2f: %w", score, ErrNoMatchingRule)
}

// ValidateRange checks a candidate rule against the rest of the table and
// rejects intersecting ranges. A rule being updated is compared against all
// rules but itself.
func ValidateRange(candidate domain.ComplexityRule, rules []domain.ComplexityRule) error {
	if candidate.ScoreMin > candidate.ScoreMax {
		return fmt.Errorf("score_min %.2f above score_max %.2f: %w",
			candidate.ScoreMin, candidate.ScoreMax, ErrOverlappingRule)
	}
	for _, rule := range rules {
		if rule.ID == candidate.ID {
			continue
		}
		if candidate.Overlaps(rule) {
			return fmt.Errorf("range [%.2f, %.2f] intersects rule %d [%.2f, %.2f]: %w",
				candidate.ScoreMin, candidate.ScoreMax,
				rule.ID, rule.ScoreMin, rule.ScoreMax, ErrOverlappingRule)
		}
	}
	return nil
}
