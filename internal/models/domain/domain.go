package domain

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format for every date handled by the planner.
const DateLayout = "2006-01-02"

// CostingStatus tracks how far the chiffrage of a project has progressed.
type CostingStatus string

const (
	NotCosted       CostingStatus = "NOT_COSTED"
	PartiallyCosted CostingStatus = "PARTIALLY_COSTED"
	FullyCosted     CostingStatus = "FULLY_COSTED"
)

// Project statuses considered when building the required-capacity report.
const (
	StatusPending  = "En attente"
	StatusToPlan   = "À planifier"
	StatusOngoing  = "En cours"
	StatusArchived = "Archivé"
)

// ComplexityRule maps a score range onto a base effort value (JH).
// Ranges are inclusive on both ends and must not overlap within the table.
type ComplexityRule struct {
	ID        int64   `db:"id"`
	Fibo      int     `db:"fibo"`
	ScoreMin  float64 `db:"score_min"`
	ScoreMax  float64 `db:"score_max"`
	BaseValue float64 `db:"valeur_base"`
}

// Contains reports whether score falls inside the rule's range.
func (r ComplexityRule) Contains(score float64) bool {
	return score >= r.ScoreMin && score <= r.ScoreMax
}

// Overlaps reports whether two rule ranges intersect.
func (r ComplexityRule) Overlaps(other ComplexityRule) bool {
	return r.ScoreMin <= other.ScoreMax && other.ScoreMin <= r.ScoreMax
}

// Domain is a functional domain carrying an effort multiplier
// applied as coefficient/100 on top of the base value.
type Domain struct {
	ID          int64   `db:"id"`
	Name        string  `db:"nom"`
	Coefficient float64 `db:"coefficient"`
}

// CriterionKind selects between the two criterion catalogs.
type CriterionKind string

const (
	KindComplexity    CriterionKind = "complexite"
	KindBusinessValue CriterionKind = "valeur_metier"
)

// Criterion is one selectable row of a scoring grid. Several rows share a
// Libelle; a project picks at most one row per distinct Libelle.
type Criterion struct {
	ID       int64   `db:"id"`
	Libelle  string  `db:"libelle"`
	Category string  `db:"type_libelle"`
	Value    float64 `db:"valeur_libelle"`
	Weight   float64 `db:"ponderation"`
}

// Project is the aggregate entity of the portfolio. Scores, estimation,
// WSJF and priority are derived fields, recomputed on every relevant write.
type Project struct {
	ID              uuid.UUID `db:"id"`
	Title           string    `db:"titre"`
	Description     string    `db:"description"`
	DomainID        *int64    `db:"id_domaine"`
	ProgramID       *int64    `db:"id_programme"`
	StatusID        *int64    `db:"id_statut_demande"`
	Statut          string    `db:"statut"`
	GoLiveDate      *string   `db:"date_mep"`
	ComplexityScore float64   `db:"score_complexite"`
	ValueScore      float64   `db:"score_valeur_metier"`
	WSJFScore       *float64  `db:"score_wsjf"`
	EstimationJH    int       `db:"estimation_jh"`
	Priority        *int      `db:"priority"`
	CreatedAt       time.Time `db:"idate"`
	UpdatedAt       time.Time `db:"udate"`
}

// ProjectRank is the minimal projection used by the priority ranker.
type ProjectRank struct {
	ID        uuid.UUID `db:"id"`
	WSJFScore float64   `db:"score_wsjf"`
	Rank      int
}

// Phase is a catalog entry of the delivery lifecycle.
type Phase struct {
	ID   int64  `db:"id"`
	Name string `db:"nom"`
}

// ProgramPhase binds a phase to a program with a weight in percent.
// Weights of all phases under one program must not exceed 100.
type ProgramPhase struct {
	ProgramID int64   `db:"programme_id"`
	PhaseID   int64   `db:"phase_id"`
	PhaseName string  `db:"phase_nom"`
	Weight    float64 `db:"poids"`
}

// ProjectPhase is a materialized schedule window for one project phase.
// Dates are ISO YYYY-MM-DD strings; nil means not yet scheduled.
type ProjectPhase struct {
	ProjectID uuid.UUID `db:"projet_id"`
	PhaseID   int64     `db:"phase_id"`
	PhaseName string    `db:"phase_nom"`
	StartDate *string   `db:"date_debut"`
	EndDate   *string   `db:"date_fin"`
}

// Profile is a workforce profile (developer, analyst, ...).
type Profile struct {
	ID        int64   `db:"id"`
	Name      string  `db:"nom"`
	BaseHours float64 `db:"heures_base"`
}

// Collaborator carries the annual available capacity of one person,
// split into Build and Run person-days.
type Collaborator struct {
	Matricule string  `db:"matricule"`
	ProfileID int64   `db:"profil_id"`
	BaseHours float64 `db:"heures_base"`
	PctBuild  float64 `db:"pourcentage_build"`
	PctRun    float64 `db:"pourcentage_run"`
	CafBuild  float64 `db:"caf_disponible_build"`
	CafRun    float64 `db:"caf_disponible_run"`
}

// Repartition routes a slice of a collaborator's capacity toward a
// secondary profile. When the JH fields are zero the percentages apply
// to the collaborator's base hours instead.
type Repartition struct {
	CollaboratorID string  `db:"collaborateur_id"`
	ProfileID      int64   `db:"profil_id"`
	PctBuild       float64 `db:"pourcentage_build"`
	PctRun         float64 `db:"pourcentage_run"`
	CafBuild       float64 `db:"caf_disponible_build"`
	CafRun         float64 `db:"caf_disponible_run"`
}

// DemandLine is one project-phase allocation feeding the required-capacity
// report: the project's total effort apportioned to a profile over a window.
type DemandLine struct {
	ProjectID     uuid.UUID `db:"id"`
	Title         string    `db:"titre"`
	EffortJH      float64   `db:"estimation_jh"`
	StartDate     *string   `db:"date_debut"`
	EndDate       *string   `db:"date_fin"`
	ProfileID     int64     `db:"profil_id"`
	AllocationPct float64   `db:"pourcentage"`
}
