package planning

import (
	"testing"
	"time"

	"CafPlanner/internal/models/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(value string) time.Time {
	d, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		panic(err)
	}
	return d
}

func TestScheduleBackwardFromGoLive(t *testing.T) {
	phases := []domain.ProgramPhase{
		{PhaseID: 1, PhaseName: "Cadrage", Weight: 30},
		{PhaseID: 2, PhaseName: "Réalisation", Weight: 70},
	}

	windows, err := Schedule(90, date("2025-12-31"), phases)
	require.NoError(t, err)
	require.Len(t, windows, 2)

	assert.Equal(t, date("2025-10-02"), windows[0].Start)
	assert.Equal(t, date("2025-10-29"), windows[0].End)
	assert.Equal(t, date("2025-10-29"), windows[1].Start)
	assert.Equal(t, date("2025-12-31"), windows[1].End)
}

func TestScheduleExactProportionsConsumeFullEffort(t *testing.T) {
	phases := []domain.ProgramPhase{
		{PhaseID: 1, Weight: 10},
		{PhaseID: 2, Weight: 20},
		{PhaseID: 3, Weight: 70},
	}

	// Every weight divides the effort exactly; no day may be lost to
	// floating-point truncation and the last phase must land on go-live.
	windows, err := Schedule(90, date("2025-12-31"), phases)
	require.NoError(t, err)
	require.Len(t, windows, 3)

	var days int
	for _, w := range windows {
		days += int(w.End.Sub(w.Start).Hours() / 24)
	}
	assert.Equal(t, 90, days)
	assert.Equal(t, date("2025-12-31"), windows[2].End)
}

func TestSchedulePhasesAreContiguous(t *testing.T) {
	phases := []domain.ProgramPhase{
		{PhaseID: 1, Weight: 20},
		{PhaseID: 2, Weight: 35},
		{PhaseID: 3, Weight: 45},
	}

	windows, err := Schedule(61, date("2026-06-30"), phases)
	require.NoError(t, err)
	require.Len(t, windows, 3)

	for i := 1; i < len(windows); i++ {
		assert.Equal(t, windows[i-1].End, windows[i].Start)
	}
}

func TestScheduleTruncationNeverExceedsEffort(t *testing.T) {
	phases := []domain.ProgramPhase{
		{PhaseID: 1, Weight: 33},
		{PhaseID: 2, Weight: 33},
		{PhaseID: 3, Weight: 34},
	}

	effort := 100
	windows, err := Schedule(effort, date("2026-03-31"), phases)
	require.NoError(t, err)

	var days int
	for _, w := range windows {
		days += int(w.End.Sub(w.Start).Hours() / 24)
	}
	assert.LessOrEqual(t, days, effort)

	// Truncated durations leave the last end on or before the go-live date.
	assert.False(t, windows[len(windows)-1].End.After(date("2026-03-31")))
}

func TestScheduleZeroWeightsFallBackToZeroDurations(t *testing.T) {
	phases := []domain.ProgramPhase{
		{PhaseID: 1, Weight: 0},
		{PhaseID: 2, Weight: 0},
	}

	windows, err := Schedule(30, date("2025-12-31"), phases)
	require.NoError(t, err)

	for _, w := range windows {
		assert.Equal(t, date("2025-12-01"), w.Start)
		assert.Equal(t, w.Start, w.End)
	}
}

func TestScheduleNotSchedulable(t *testing.T) {
	phases := []domain.ProgramPhase{{PhaseID: 1, Weight: 100}}

	_, err := Schedule(0, date("2025-12-31"), phases)
	assert.ErrorIs(t, err, ErrNotSchedulable)

	_, err = Schedule(-5, date("2025-12-31"), phases)
	assert.ErrorIs(t, err, ErrNotSchedulable)

	_, err = Schedule(30, date("2025-12-31"), nil)
	assert.ErrorIs(t, err, ErrNotSchedulable)
}
