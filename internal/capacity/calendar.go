package capacity

import (
	"fmt"
	"time"
)

// monthLabels are the French month names used in the monthly rollups.
var monthLabels = [12]string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

// Week is one bucket of the yearly capacity calendar, spanning
// [Start, Start+6 days].
type Week struct {
	Index int       `json:"index"`
	Label string    `json:"label"`
	Start time.Time `json:"date_debut"`
	End   time.Time `json:"date_fin"`
	Month string    `json:"mois"`
}

// BuildCalendar builds the week buckets of a year. Week 1 starts on the
// first Monday on or after January 1st; the year holds 53 weeks when
// December 31st falls in ISO week 53, 52 otherwise. The month of a week is
// the month of its start date.
func BuildCalendar(year int) []Week {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for start.Weekday() != time.Monday {
		start = start.AddDate(0, 0, 1)
	}

	numWeeks := 52
	if _, isoWeek := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).ISOWeek(); isoWeek == 53 {
		numWeeks = 53
	}

	weeks := make([]Week, 0, numWeeks)
	for i := 1; i <= numWeeks; i++ {
		weekStart := start.AddDate(0, 0, (i-1)*7)
		weeks = append(weeks, Week{
			Index: i,
			Label: fmt.Sprintf("S%d", i),
			Start: weekStart,
			End:   weekStart.AddDate(0, 0, 6),
			Month: monthLabels[weekStart.Month()-1],
		})
	}
	return weeks
}
