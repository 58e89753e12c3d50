package scoring

import (
	"testing"

	"CafPlanner/internal/models/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplexityScoreSumsWeightedValues(t *testing.T) {
	selected := []domain.Criterion{
		{Libelle: "Interfaçage", Value: 3, Weight: 2},
		{Libelle: "Volumétrie", Value: 5, Weight: 1.5},
		{Libelle: "Sécurité", Value: 0, Weight: 4},
	}

	assert.Equal(t, 13.5, ComplexityScore(selected))
	assert.Equal(t, 0.0, ComplexityScore(nil))
}

func TestPriorityScore(t *testing.T) {
	score, err := PriorityScore(10, 3)
	require.NoError(t, err)
	assert.Equal(t, 3.33, score)

	score, err = PriorityScore(7, 2)
	require.NoError(t, err)
	assert.Equal(t, 3.5, score)
}

func TestPriorityScoreZeroComplexity(t *testing.T) {
	_, err := PriorityScore(10, 0)
	require.ErrorIs(t, err, ErrZeroComplexity)
}

func TestCostingState(t *testing.T) {
	assert.Equal(t, domain.NotCosted, CostingState(0, 8))
	assert.Equal(t, domain.PartiallyCosted, CostingState(3, 8))
	assert.Equal(t, domain.FullyCosted, CostingState(8, 8))
	assert.Equal(t, domain.NotCosted, CostingState(0, 0))
}

func TestRankOrdersByScoreThenID(t *testing.T) {
	idA := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	idB := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	idC := uuid.MustParse("33333333-3333-3333-3333-333333333333")

	ranked := Rank([]domain.ProjectRank{
		{ID: idC, WSJFScore: 2.5},
		{ID: idB, WSJFScore: 4.0},
		{ID: idA, WSJFScore: 2.5},
	})

	require.Len(t, ranked, 3)
	assert.Equal(t, idB, ranked[0].ID)
	assert.Equal(t, 1, ranked[0].Rank)

	// Ties break on project id for a reproducible order.
	assert.Equal(t, idA, ranked[1].ID)
	assert.Equal(t, 2, ranked[1].Rank)
	assert.Equal(t, idC, ranked[2].ID)
	assert.Equal(t, 3, ranked[2].Rank)
}

func TestRankLeavesInputUntouched(t *testing.T) {
	input := []domain.ProjectRank{
		{ID: uuid.New(), WSJFScore: 1},
		{ID: uuid.New(), WSJFScore: 9},
	}

	Rank(input)
	assert.Equal(t, 1.0, input[0].WSJFScore)
	assert.Equal(t, 0, input[0].Rank)
}

func TestSelectionCountDistinctLibelles(t *testing.T) {
	selected := []domain.Criterion{
		{Libelle: "Interfaçage", Value: 1},
		{Libelle: "Interfaçage", Value: 3},
		{Libelle: "Volumétrie", Value: 2},
	}

	assert.Equal(t, 2, SelectionCount(selected))
	assert.Equal(t, 0, SelectionCount(nil))
}
