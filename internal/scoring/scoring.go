package scoring

import (
	"CafPlanner/internal/models/domain"
	"errors"
	"math"
	"sort"
)

// ErrZeroComplexity reports a WSJF computation against a zero complexity
// score. The project must stay unranked; the caller surfaces the condition
// instead of defaulting to a fabricated priority.
var ErrZeroComplexity = errors.New("complexity score is zero, priority undefined")

// ComplexityScore aggregates the selected complexity criteria into one
// composite score: the sum of valeur_libelle * ponderation over every
// selection. A libelle with no selection contributes nothing.
func ComplexityScore(selected []domain.Criterion) float64 {
	var total float64
	for _, c := range selected {
		total += c.Value * c.Weight
	}
	return total
}

// ValueScore aggregates the selected business-value criteria, with the same
// weighted sum as ComplexityScore.
func ValueScore(selected []domain.Criterion) float64 {
	return ComplexityScore(selected)
}

// PriorityScore derives the WSJF-like priority: business value divided by
// complexity, rounded to two decimals.
func PriorityScore(valueScore, complexityScore float64) (float64, error) {
	if complexityScore == 0 {
		return 0, ErrZeroComplexity
	}
	return math.Round(valueScore/complexityScore*100) / 100, nil
}

// CostingState derives the chiffrage completion state from the number of
// libelles holding a selection against the catalog total.
func CostingState(filled, total int) domain.CostingStatus {
	switch {
	case total > 0 && filled == total:
		return domain.FullyCosted
	case filled > 0:
		return domain.PartiallyCosted
	default:
		return domain.NotCosted
	}
}

// Rank orders projects by descending WSJF score, breaking ties on project
// id for reproducibility, and assigns sequential ranks starting at 1.
func Rank(entries []domain.ProjectRank) []domain.ProjectRank {
	ranked := make([]domain.ProjectRank, len(entries))
	copy(ranked, entries)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].WSJFScore != ranked[j].WSJFScore {
			return ranked[i].WSJFScore > ranked[j].WSJFScore
		}
		return ranked[i].ID.String() < ranked[j].ID.String()
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// SelectionCount tells how many distinct libelles of a catalog are filled
// by the given selections.
func SelectionCount(selected []domain.Criterion) int {
	seen := make(map[string]struct{}, len(selected))
	for _, c := range selected {
		seen[c.Libelle] = struct{}{}
	}
	return len(seen)
}

// describeState renders a costing state for logs and user-facing messages.
func describeState(state domain.CostingStatus) string {
	switch state {
	case domain.FullyCosted:
		return "chiffré"
	case domain.PartiallyCosted:
		return "partiellement chiffré"
	default:
		return "non encore chiffré"
	}
}
