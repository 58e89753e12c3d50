package planning

import (
	"CafPlanner/internal/models/domain"
	"errors"
	"fmt"
	"time"
)

// ErrNotSchedulable reports a schedule request without a positive effort
// estimation or without any weighted phase. The caller surfaces "estimation
// missing" instead of writing degenerate dates.
var ErrNotSchedulable = errors.New("project not schedulable")

// ErrWeightCeiling reports a phase weight write that would push a program's
// total above 100 percent.
var ErrWeightCeiling = errors.New("program phase weights exceed 100%")

// Window is one scheduled phase span. End of a phase equals the start of
// the next one; the last end may drift before the go-live date because each
// duration is truncated to whole days.
type Window struct {
	PhaseID   int64     `json:"phase_id"`
	PhaseName string    `json:"phase_nom"`
	Weight    float64   `json:"poids"`
	Start     time.Time `json:"date_debut"`
	End       time.Time `json:"date_fin"`
}

// Schedule lays out the phases of a project backward from its go-live date.
//
// The walk starts at goLive - effortJH days; each phase lasts
// floor(weight / totalWeight * effortJH) days and the next phase starts
// where the previous one ends.
func Schedule(effortJH int, goLive time.Time, phases []domain.ProgramPhase) ([]Window, error) {
	if effortJH <= 0 {
		return nil, fmt.Errorf("estimation %d JH: %w", effortJH, ErrNotSchedulable)
	}
	if len(phases) == 0 {
		return nil, fmt.Errorf("no weighted phase: %w", ErrNotSchedulable)
	}

	var totalWeight float64
	for _, p := range phases {
		totalWeight += p.Weight
	}
	if totalWeight == 0 {
		totalWeight = 1
	}

	current := goLive.AddDate(0, 0, -effortJH)
	windows := make([]Window, 0, len(phases))
	for _, p := range phases {
		// Multiply before dividing so exact proportions survive the
		// truncation (70/100 of 90 is 63 days, not 62.999...).
		duration := int(p.Weight * float64(effortJH) / totalWeight)
		end := current.AddDate(0, 0, duration)
		windows = append(windows, Window{
			PhaseID:   p.PhaseID,
			PhaseName: p.PhaseName,
			Weight:    p.Weight,
			Start:     current,
			End:       end,
		})
		current = end
	}
	return windows, nil
}
