package capacity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCalendar53Weeks(t *testing.T) {
	// December 31st 2026 falls in ISO week 53.
	weeks := BuildCalendar(2026)
	require.Len(t, weeks, 53)

	// January 1st 2026 is a Thursday; week 1 starts the following Monday.
	assert.Equal(t, time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC), weeks[0].Start)
	assert.Equal(t, time.Date(2026, time.January, 11, 0, 0, 0, 0, time.UTC), weeks[0].End)
	assert.Equal(t, 1, weeks[0].Index)
	assert.Equal(t, "S1", weeks[0].Label)
	assert.Equal(t, "Janvier", weeks[0].Month)
}

func TestBuildCalendar52Weeks(t *testing.T) {
	weeks := BuildCalendar(2025)
	require.Len(t, weeks, 52)

	assert.Equal(t, time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC), weeks[0].Start)
	assert.Equal(t, "S52", weeks[51].Label)
}

func TestBuildCalendarWeeksAreContiguous(t *testing.T) {
	weeks := BuildCalendar(2025)

	for i := 1; i < len(weeks); i++ {
		assert.Equal(t, weeks[i-1].End.AddDate(0, 0, 1), weeks[i].Start)
		assert.Equal(t, time.Monday, weeks[i].Start.Weekday())
	}
}

func TestBuildCalendarMonthFollowsWeekStart(t *testing.T) {
	weeks := BuildCalendar(2025)

	// Week of 2025-01-27 straddles January and February; its month is the
	// month of the start date.
	var found bool
	for _, w := range weeks {
		if w.Start.Equal(time.Date(2025, time.January, 27, 0, 0, 0, 0, time.UTC)) {
			assert.Equal(t, "Janvier", w.Month)
			found = true
		}
	}
	require.True(t, found)
}
