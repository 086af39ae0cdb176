// Package leadscoring converts customer attributes into a lead score and
// temperature/priority tiers, and recomputes them across the customer base.
package leadscoring

import (
	"trailer-sales-engine/internal/models"
)

// RecencyBand awards Points when the last activity is at most MaxDays old.
type RecencyBand struct {
	MaxDays int
	Points  int
}

// AgeBand deducts Penalty once a lead is older than MinDays.
type AgeBand struct {
	MinDays int
	Penalty int
}

// WeightTable holds every tunable weight of the lead scoring policy.
//
// Score = recency + application + financing + status - age penalty, clamped to 0..100.
//
//   - ActivityRecency: first band whose MaxDays covers the days since last activity.
//     No recorded activity scores as if the lead was last active when created.
//   - Application:     credit application progress.
//   - Financing:       declared payment method.
//   - Status:          pipeline stage; a lost lead carries enough negative weight to
//     always land at 0.
//   - LeadAge:         largest applicable penalty by days since creation.
type WeightTable struct {
	ActivityRecency []RecencyBand
	Application     map[models.ApplicationStatus]int
	Financing       map[models.FinancingType]int
	Status          map[models.LeadStatus]int
	LeadAge         []AgeBand
}

// Thresholds maps scores to temperatures and sets the priority escalation rules.
type Thresholds struct {
	Hot  int
	Warm int
	Cold int

	// A submitted application idle for this many days escalates to urgent.
	StaleApplicationDays int
}

// DefaultWeights is the production weight table.
var DefaultWeights = WeightTable{
	ActivityRecency: []RecencyBand{
		{MaxDays: 1, Points: 30},
		{MaxDays: 3, Points: 25},
		{MaxDays: 7, Points: 18},
		{MaxDays: 14, Points: 10},
		{MaxDays: 30, Points: 5},
	},
	Application: map[models.ApplicationStatus]int{
		models.ApplicationStatusNone:      0,
		models.ApplicationStatusStarted:   12,
		models.ApplicationStatusSubmitted: 25,
		models.ApplicationStatusApproved:  30,
		models.ApplicationStatusDeclined:  5,
	},
	Financing: map[models.FinancingType]int{
		models.FinancingTypeCash:      20,
		models.FinancingTypeFinance:   15,
		models.FinancingTypeRentToOwn: 10,
		models.FinancingTypeUnknown:   0,
	},
	Status: map[models.LeadStatus]int{
		models.LeadStatusNew:       3,
		models.LeadStatusContacted: 5,
		models.LeadStatusQuoted:    10,
		models.LeadStatusApplied:   12,
		models.LeadStatusApproved:  15,
		models.LeadStatusWon:       0,
		models.LeadStatusLost:      -100,
	},
	LeadAge: []AgeBand{
		{MinDays: 90, Penalty: 10},
		{MinDays: 180, Penalty: 20},
	},
}

// DefaultThresholds is the production tiering.
var DefaultThresholds = Thresholds{
	Hot:                  70,
	Warm:                 45,
	Cold:                 20,
	StaleApplicationDays: 3,
}

func (w WeightTable) recencyPoints(daysSinceActivity int) int {
	for _, band := range w.ActivityRecency {
		if daysSinceActivity <= band.MaxDays {
			return band.Points
		}
	}
	return 0
}

func (w WeightTable) agePenalty(daysSinceCreation int) int {
	penalty := 0
	for _, band := range w.LeadAge {
		if daysSinceCreation > band.MinDays && band.Penalty > penalty {
			penalty = band.Penalty
		}
	}
	return penalty
}
