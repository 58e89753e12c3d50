package capacity

import (
	"CafPlanner/internal/models/domain"
	"fmt"
	"math"
	"time"
)

// OtherProfileID is the sentinel bucket collecting load that references a
// profile missing from the referential (deleted but still referenced).
const OtherProfileID int64 = -1

const (
	otherProfileLabel = "Autre (profils supprimés)"
	totalLabel        = "TOTAL GÉNÉRAL"
)

// Row is one profile line of a capacity matrix: one JH value per week plus
// the annual and per-month totals.
type Row struct {
	ProfileID int64              `json:"profil_id"`
	Profile   string             `json:"profil"`
	Headcount int                `json:"nb_collab,omitempty"`
	Weekly    []float64          `json:"semaines"`
	Annual    float64            `json:"total_annuel"`
	Monthly   map[string]float64 `json:"mois"`
}

// Matrix is a week-indexed capacity report for one year, with a TOTAL
// pseudo-row summing every line, the "Autre" sentinel included, so the
// total always matches the sum of the displayed rows.
type Matrix struct {
	Year  int    `json:"annee"`
	Weeks []Week `json:"calendrier"`
	Rows  []Row  `json:"lignes"`
	Total Row    `json:"total"`
}

// AggregateSupply buckets the available capacity (CAF disponible) of every
// collaborator per profile per week. The annual Build+Run JH of a
// collaborator is spread evenly across all weeks; repartition rows route
// part of the capacity toward a secondary profile the same way.
func AggregateSupply(year int, calendar []Week, profiles []domain.Profile, collabs []domain.Collaborator, reps []domain.Repartition) (*Matrix, []string) {
	m := newMatrix(year, calendar, profiles)
	var warnings []string
	numWeeks := float64(len(calendar))

	byMatricule := make(map[string]domain.Collaborator, len(collabs))
	for _, c := range collabs {
		byMatricule[c.Matricule] = c

		row, known := m.row(c.ProfileID)
		if !known {
			warnings = appendOnce(warnings, fmt.Sprintf(
				"profil %d inconnu pour le collaborateur %s — capacité comptée dans « Autre »",
				c.ProfileID, c.Matricule))
		}
		row.Headcount++
		spreadEvenly(row, (c.CafBuild+c.CafRun)/numWeeks)
	}

	for _, rp := range reps {
		jh := rp.CafBuild + rp.CafRun
		if jh == 0 {
			if c, ok := byMatricule[rp.CollaboratorID]; ok {
				jh = (rp.PctBuild + rp.PctRun) / 100.0 * c.BaseHours
			}
		}
		if jh == 0 {
			continue
		}
		row, known := m.row(rp.ProfileID)
		if !known {
			warnings = appendOnce(warnings, fmt.Sprintf(
				"profil %d inconnu dans la répartition de %s — capacité comptée dans « Autre »",
				rp.ProfileID, rp.CollaboratorID))
		}
		spreadEvenly(row, jh/numWeeks)
	}

	m.finish()
	return m, warnings
}

// AggregateDemand buckets the required capacity (CAF requise) of every
// active project phase per profile per week. A phase's share of a week is
// pro-rated by the day overlap between the phase window and the week.
// Malformed dates skip the line; an unknown profile routes the load into
// the "Autre" bucket. Neither condition aborts the aggregation.
func AggregateDemand(year int, calendar []Week, profiles []domain.Profile, lines []domain.DemandLine) (*Matrix, []string) {
	m := newMatrix(year, calendar, profiles)
	var warnings []string

	for _, line := range lines {
		start, end, err := parseWindow(line.StartDate, line.EndDate)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf(
				"projet %s : %v — phase ignorée", line.ProjectID, err))
			continue
		}

		totalDays := end.Sub(start).Hours()/24 + 1
		if totalDays <= 0 {
			warnings = append(warnings, fmt.Sprintf(
				"projet %s : fenêtre vide %s..%s — phase ignorée",
				line.ProjectID,
				start.Format(domain.DateLayout), end.Format(domain.DateLayout)))
			continue
		}

		row, known := m.row(line.ProfileID)
		if !known {
			warnings = appendOnce(warnings, fmt.Sprintf(
				"profil %d supprimé mais encore référencé — charge comptée dans « Autre »",
				line.ProfileID))
		}

		charge := line.EffortJH * line.AllocationPct / 100.0
		for i, week := range calendar {
			if start.After(week.End) || end.Before(week.Start) {
				continue
			}
			overlapDays := minTime(end, week.End).Sub(maxTime(start, week.Start)).Hours()/24 + 1
			row.Weekly[i] += charge * overlapDays / totalDays
		}
	}

	m.finish()
	return m, warnings
}

// --- matrix plumbing ---

func newMatrix(year int, calendar []Week, profiles []domain.Profile) *Matrix {
	m := &Matrix{Year: year, Weeks: calendar}
	for _, p := range profiles {
		m.Rows = append(m.Rows, Row{
			ProfileID: p.ID,
			Profile:   p.Name,
			Weekly:    make([]float64, len(calendar)),
			Monthly:   make(map[string]float64),
		})
	}
	return m
}

// row finds the line of a profile, materializing the "Autre" sentinel line
// on first use when the profile is unknown. The second return value is
// false for unknown profiles.
func (m *Matrix) row(profileID int64) (*Row, bool) {
	for i := range m.Rows {
		if m.Rows[i].ProfileID == profileID {
			return &m.Rows[i], true
		}
	}
	for i := range m.Rows {
		if m.Rows[i].ProfileID == OtherProfileID {
			return &m.Rows[i], false
		}
	}
	m.Rows = append(m.Rows, Row{
		ProfileID: OtherProfileID,
		Profile:   otherProfileLabel,
		Weekly:    make([]float64, len(m.Weeks)),
		Monthly:   make(map[string]float64),
	})
	return &m.Rows[len(m.Rows)-1], false
}

// finish rounds the cells, fills the annual and monthly totals and builds
// the TOTAL pseudo-row over every line, the "Autre" sentinel included.
func (m *Matrix) finish() {
	total := Row{
		Profile: totalLabel,
		Weekly:  make([]float64, len(m.Weeks)),
		Monthly: make(map[string]float64),
	}

	for i := range m.Rows {
		row := &m.Rows[i]
		row.Annual = 0
		for w := range row.Weekly {
			row.Weekly[w] = round2(row.Weekly[w])
			row.Annual += row.Weekly[w]
			row.Monthly[m.Weeks[w].Month] += row.Weekly[w]
			total.Weekly[w] += row.Weekly[w]
		}
		row.Annual = round2(row.Annual)
		for month, v := range row.Monthly {
			row.Monthly[month] = round2(v)
		}
	}

	for w := range total.Weekly {
		total.Weekly[w] = round2(total.Weekly[w])
		total.Annual += total.Weekly[w]
		total.Monthly[m.Weeks[w].Month] += total.Weekly[w]
	}
	total.Annual = round2(total.Annual)
	for month, v := range total.Monthly {
		total.Monthly[month] = round2(v)
	}
	m.Total = total
}

func spreadEvenly(row *Row, perWeek float64) {
	for i := range row.Weekly {
		row.Weekly[i] += perWeek
	}
}

func parseWindow(startDate, endDate *string) (time.Time, time.Time, error) {
	if startDate == nil || endDate == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("dates de phase manquantes")
	}
	start, err := time.Parse(domain.DateLayout, *startDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("date de début invalide %q", *startDate)
	}
	end, err := time.Parse(domain.DateLayout, *endDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("date de fin invalide %q", *endDate)
	}
	return start, end, nil
}

func appendOnce(warnings []string, w string) []string {
	for _, existing := range warnings {
		if existing == w {
			return warnings
		}
	}
	return append(warnings, w)
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
