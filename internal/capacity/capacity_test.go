package capacity

import (
	"testing"

	"CafPlanner/internal/models/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func testProfiles() []domain.Profile {
	return []domain.Profile{
		{ID: 1, Name: "Développeur", BaseHours: 208},
		{ID: 2, Name: "Analyste", BaseHours: 208},
	}
}

func findRow(t *testing.T, m *Matrix, profileID int64) Row {
	t.Helper()
	for _, row := range m.Rows {
		if row.ProfileID == profileID {
			return row
		}
	}
	t.Fatalf("no row for profile %d", profileID)
	return Row{}
}

func TestAggregateSupplyEvenSpread(t *testing.T) {
	calendar := BuildCalendar(2025) // 52 weeks
	collabs := []domain.Collaborator{
		{Matricule: "M001", ProfileID: 1, CafBuild: 26, CafRun: 26},
	}

	m, warnings := AggregateSupply(2025, calendar, testProfiles(), collabs, nil)
	assert.Empty(t, warnings)

	row := findRow(t, m, 1)
	assert.Equal(t, 1, row.Headcount)
	assert.Equal(t, 1.0, row.Weekly[0])
	assert.Equal(t, 1.0, row.Weekly[51])
	assert.Equal(t, 52.0, row.Annual)

	// The untouched profile stays at zero.
	assert.Equal(t, 0.0, findRow(t, m, 2).Annual)
}

func TestAggregateSupplyRepartitionJHOverride(t *testing.T) {
	calendar := BuildCalendar(2025)
	collabs := []domain.Collaborator{
		{Matricule: "M001", ProfileID: 1, BaseHours: 208, CafBuild: 52},
	}
	reps := []domain.Repartition{
		{CollaboratorID: "M001", ProfileID: 2, CafBuild: 26},
	}

	m, warnings := AggregateSupply(2025, calendar, testProfiles(), collabs, reps)
	assert.Empty(t, warnings)

	assert.Equal(t, 0.5, findRow(t, m, 2).Weekly[0])
	assert.Equal(t, 26.0, findRow(t, m, 2).Annual)
}

func TestAggregateSupplyRepartitionPctFallback(t *testing.T) {
	calendar := BuildCalendar(2025)
	collabs := []domain.Collaborator{
		{Matricule: "M001", ProfileID: 1, BaseHours: 104},
	}
	reps := []domain.Repartition{
		// No JH recorded: 50% of the 104 base hours routes to profile 2.
		{CollaboratorID: "M001", ProfileID: 2, PctBuild: 50},
	}

	m, _ := AggregateSupply(2025, calendar, testProfiles(), collabs, reps)

	assert.Equal(t, 1.0, findRow(t, m, 2).Weekly[0])
	assert.Equal(t, 52.0, findRow(t, m, 2).Annual)
}

func TestAggregateSupplyUnknownProfileGoesToOther(t *testing.T) {
	calendar := BuildCalendar(2025)
	collabs := []domain.Collaborator{
		{Matricule: "M001", ProfileID: 99, CafBuild: 52},
	}

	m, warnings := AggregateSupply(2025, calendar, testProfiles(), collabs, nil)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Autre")

	other := findRow(t, m, OtherProfileID)
	assert.Equal(t, "Autre (profils supprimés)", other.Profile)
	assert.Equal(t, 52.0, other.Annual)
}

func TestAggregateSupplyTotalRow(t *testing.T) {
	calendar := BuildCalendar(2025)
	collabs := []domain.Collaborator{
		{Matricule: "M001", ProfileID: 1, CafBuild: 52},
		{Matricule: "M002", ProfileID: 2, CafBuild: 104},
	}

	m, _ := AggregateSupply(2025, calendar, testProfiles(), collabs, nil)

	assert.Equal(t, "TOTAL GÉNÉRAL", m.Total.Profile)
	assert.Equal(t, 3.0, m.Total.Weekly[0])
	assert.Equal(t, 156.0, m.Total.Annual)
	assert.Equal(t, 12.0, m.Total.Monthly["Janvier"]) // 4 weeks starting in January
}

func TestTotalIncludesOtherBucket(t *testing.T) {
	calendar := BuildCalendar(2025)
	collabs := []domain.Collaborator{
		{Matricule: "M001", ProfileID: 1, CafBuild: 52},
		{Matricule: "M002", ProfileID: 99, CafBuild: 52},
	}

	m, _ := AggregateSupply(2025, calendar, testProfiles(), collabs, nil)

	// The TOTAL row covers every line, the Autre sentinel included, so it
	// matches the sum of what the report displays.
	assert.Equal(t, 104.0, m.Total.Annual)
	assert.Equal(t, 2.0, m.Total.Weekly[0])
}

func TestAggregateDemandProRatesByOverlap(t *testing.T) {
	calendar := BuildCalendar(2025) // week 1 is 2025-01-06 .. 2025-01-12
	lines := []domain.DemandLine{
		{
			ProjectID:     uuid.New(),
			EffortJH:      14,
			AllocationPct: 100,
			ProfileID:     1,
			StartDate:     strptr("2025-01-06"),
			EndDate:       strptr("2025-01-19"),
		},
	}

	m, warnings := AggregateDemand(2025, calendar, testProfiles(), lines)
	assert.Empty(t, warnings)

	row := findRow(t, m, 1)
	assert.Equal(t, 7.0, row.Weekly[0])
	assert.Equal(t, 7.0, row.Weekly[1])
	assert.Equal(t, 0.0, row.Weekly[2])
	assert.Equal(t, 14.0, row.Annual)
}

func TestAggregateDemandAllocationPct(t *testing.T) {
	calendar := BuildCalendar(2025)
	lines := []domain.DemandLine{
		{
			ProjectID:     uuid.New(),
			EffortJH:      14,
			AllocationPct: 50,
			ProfileID:     1,
			StartDate:     strptr("2025-01-06"),
			EndDate:       strptr("2025-01-19"),
		},
	}

	m, _ := AggregateDemand(2025, calendar, testProfiles(), lines)

	assert.Equal(t, 3.5, findRow(t, m, 1).Weekly[0])
	assert.Equal(t, 7.0, findRow(t, m, 1).Annual)
}

func TestAggregateDemandPartialWeekOverlap(t *testing.T) {
	calendar := BuildCalendar(2025)
	lines := []domain.DemandLine{
		{
			ProjectID:     uuid.New(),
			EffortJH:      10,
			AllocationPct: 100,
			ProfileID:     1,
			// Thursday to Sunday, 4 of 4 days inside week 1.
			StartDate: strptr("2025-01-09"),
			EndDate:   strptr("2025-01-12"),
		},
	}

	m, _ := AggregateDemand(2025, calendar, testProfiles(), lines)

	row := findRow(t, m, 1)
	assert.Equal(t, 10.0, row.Weekly[0])
	assert.Equal(t, 0.0, row.Weekly[1])
}

func TestAggregateDemandSkipsMalformedDates(t *testing.T) {
	calendar := BuildCalendar(2025)
	lines := []domain.DemandLine{
		{
			ProjectID:     uuid.New(),
			EffortJH:      10,
			AllocationPct: 100,
			ProfileID:     1,
			StartDate:     strptr("09/01/2025"),
			EndDate:       strptr("2025-01-12"),
		},
		{
			ProjectID:     uuid.New(),
			EffortJH:      5,
			AllocationPct: 100,
			ProfileID:     1,
			StartDate:     nil,
			EndDate:       nil,
		},
	}

	m, warnings := AggregateDemand(2025, calendar, testProfiles(), lines)
	assert.Len(t, warnings, 2)
	assert.Equal(t, 0.0, findRow(t, m, 1).Annual)
}

func TestAggregateDemandUnknownProfileGoesToOther(t *testing.T) {
	calendar := BuildCalendar(2025)
	lines := []domain.DemandLine{
		{
			ProjectID:     uuid.New(),
			EffortJH:      7,
			AllocationPct: 100,
			ProfileID:     42,
			StartDate:     strptr("2025-01-06"),
			EndDate:       strptr("2025-01-12"),
		},
	}

	m, warnings := AggregateDemand(2025, calendar, testProfiles(), lines)
	require.Len(t, warnings, 1)

	assert.Equal(t, 7.0, findRow(t, m, OtherProfileID).Annual)
}
