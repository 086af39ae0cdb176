package leadscoring

import (
	"time"

	"trailer-sales-engine/internal/config"
	"trailer-sales-engine/internal/models"
)

const day = 24 * time.Hour

// Scorer applies a weight table and thresholds. It holds no per-customer state.
type Scorer struct {
	weights    WeightTable
	thresholds Thresholds
}

// NewScorer creates a scorer with the production weights and thresholds.
func NewScorer() *Scorer {
	return &Scorer{weights: DefaultWeights, thresholds: DefaultThresholds}
}

// NewScorerWith creates a scorer with custom weights and thresholds.
func NewScorerWith(weights WeightTable, thresholds Thresholds) *Scorer {
	return &Scorer{weights: weights, thresholds: thresholds}
}

// ThresholdsFromConfig returns the default thresholds with the configured
// stale-application window.
func ThresholdsFromConfig(cfg *config.Config) Thresholds {
	thresholds := DefaultThresholds
	if cfg.StaleApplicationDays > 0 {
		thresholds.StaleApplicationDays = cfg.StaleApplicationDays
	}
	return thresholds
}

// Score computes the score and tiers of a lead as of now.
func (s *Scorer) Score(in models.LeadScoreInputs, now time.Time) models.LeadScore {
	score := s.points(in, now)
	temperature := s.temperature(score)

	return models.LeadScore{
		Score:       score,
		Temperature: temperature,
		Priority:    s.priority(in, temperature, now),
		DaysInStage: DaysInStage(in, now),
	}
}

func (s *Scorer) points(in models.LeadScoreInputs, now time.Time) int {
	total := s.weights.recencyPoints(daysSinceActivity(in, now))
	total += s.weights.Application[in.Application]
	total += s.weights.Financing[in.Financing]
	total += s.weights.Status[in.Status]
	total -= s.weights.agePenalty(daysBetween(in.CreatedAt, now))

	if total < 0 {
		return 0
	}
	if total > 100 {
		return 100
	}
	return total
}

func (s *Scorer) temperature(score int) models.Temperature {
	switch {
	case score >= s.thresholds.Hot:
		return models.TemperatureHot
	case score >= s.thresholds.Warm:
		return models.TemperatureWarm
	case score >= s.thresholds.Cold:
		return models.TemperatureCold
	default:
		return models.TemperatureDead
	}
}

// priority combines temperature with pipeline facts the score does not capture.
func (s *Scorer) priority(in models.LeadScoreInputs, temperature models.Temperature, now time.Time) models.Priority {
	if in.Status.IsClosed() {
		return models.PriorityLow
	}

	if in.Application == models.ApplicationStatusApproved {
		return models.PriorityUrgent
	}
	if in.Application == models.ApplicationStatusSubmitted &&
		daysSinceActivity(in, now) >= s.thresholds.StaleApplicationDays {
		return models.PriorityUrgent
	}

	switch temperature {
	case models.TemperatureHot:
		return models.PriorityHigh
	case models.TemperatureWarm:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// DaysInStage is the number of whole days since the status last changed,
// or since creation when no status change was recorded.
func DaysInStage(in models.LeadScoreInputs, now time.Time) int {
	since := in.CreatedAt
	if in.StatusChangedAt != nil {
		since = *in.StatusChangedAt
	}
	return daysBetween(since, now)
}

func daysSinceActivity(in models.LeadScoreInputs, now time.Time) int {
	if in.LastActivityAt != nil {
		return daysBetween(*in.LastActivityAt, now)
	}
	return daysBetween(in.CreatedAt, now)
}

func daysBetween(from, to time.Time) int {
	if from.IsZero() || to.Before(from) {
		return 0
	}
	return int(to.Sub(from) / day)
}
