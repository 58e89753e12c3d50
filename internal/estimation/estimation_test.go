package estimation

import (
	"testing"

	"CafPlanner/internal/models/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ruleTable() []domain.ComplexityRule {
	return []domain.ComplexityRule{
		{ID: 1, Fibo: 1, ScoreMin: 0, ScoreMax: 5, BaseValue: 3},
		{ID: 2, Fibo: 2, ScoreMin: 5.01, ScoreMax: 10, BaseValue: 8},
		{ID: 3, Fibo: 3, ScoreMin: 10.01, ScoreMax: 20, BaseValue: 15},
	}
}

func TestCompute(t *testing.T) {
	est, err := Compute(7, ruleTable(), 25)
	require.NoError(t, err)

	assert.Equal(t, 2, est.Fibonacci)
	assert.Equal(t, 8.0, est.BaseValue)
	assert.Equal(t, 25.0, est.Coefficient)
	assert.Equal(t, 10, est.EffortJH)
}

func TestComputeZeroCoefficient(t *testing.T) {
	est, err := Compute(12, ruleTable(), 0)
	require.NoError(t, err)

	assert.Equal(t, 15, est.EffortJH)
}

func TestComputeBoundsInclusive(t *testing.T) {
	low, err := Compute(0, ruleTable(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, low.Fibonacci)

	high, err := Compute(5, ruleTable(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, high.Fibonacci)

	next, err := Compute(5.01, ruleTable(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, next.Fibonacci)
}

func TestComputeNoMatchingRule(t *testing.T) {
	_, err := Compute(999, ruleTable(), 0)
	require.ErrorIs(t, err, ErrNoMatchingRule)

	_, err = Compute(1, nil, 0)
	require.ErrorIs(t, err, ErrNoMatchingRule)
}

func TestComputeRoundsHalfToEven(t *testing.T) {
	rules := []domain.ComplexityRule{
		{ID: 1, Fibo: 1, ScoreMin: 0, ScoreMax: 10, BaseValue: 3},
	}

	// 3 * 1.5 = 4.5 rounds down to the even 4.
	est, err := Compute(1, rules, 50)
	require.NoError(t, err)
	assert.Equal(t, 4, est.EffortJH)

	// 5 * 1.1 = 5.5 rounds up to the even 6.
	rules[0].BaseValue = 5
	est, err = Compute(1, rules, 10)
	require.NoError(t, err)
	assert.Equal(t, 6, est.EffortJH)
}

func TestValidateRange(t *testing.T) {
	rules := ruleTable()

	err := ValidateRange(domain.ComplexityRule{ID: 4, ScoreMin: 20.01, ScoreMax: 40}, rules)
	assert.NoError(t, err)

	err = ValidateRange(domain.ComplexityRule{ID: 4, ScoreMin: 4, ScoreMax: 6}, rules)
	assert.ErrorIs(t, err, ErrOverlappingRule)

	// Touching an existing bound is still an intersection.
	err = ValidateRange(domain.ComplexityRule{ID: 4, ScoreMin: 20, ScoreMax: 30}, rules)
	assert.ErrorIs(t, err, ErrOverlappingRule)

	// Inverted bounds are rejected outright.
	err = ValidateRange(domain.ComplexityRule{ID: 4, ScoreMin: 30, ScoreMax: 25}, rules)
	assert.ErrorIs(t, err, ErrOverlappingRule)
}

func TestValidateRangeSkipsOwnID(t *testing.T) {
	rules := ruleTable()

	// Updating rule 2 in place keeps its own range out of the comparison.
	err := ValidateRange(domain.ComplexityRule{ID: 2, ScoreMin: 5.01, ScoreMax: 9}, rules)
	assert.NoError(t, err)
}
