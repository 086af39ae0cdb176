package leadscoring

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trailer-sales-engine/internal/models"
	"trailer-sales-engine/internal/utils"
)

// CustomerStore reads customers and persists their recomputed scores.
type CustomerStore interface {
	ListCustomersForScoring(ctx context.Context) ([]*models.Customer, error)
	GetByID(ctx context.Context, id int64) (*models.Customer, error)
	UpdateLeadScore(ctx context.Context, customerID int64, score models.LeadScore, calculatedAt time.Time) error
}

// Notifier is told about leads that turned hot or urgent during a batch.
type Notifier interface {
	NotifyLeadAlerts(ctx context.Context, batchID string, alerts []models.LeadAlert) error
}

// Recalculator rescores every customer in a store.
type Recalculator struct {
	store    CustomerStore
	scorer   *Scorer
	notifier Notifier
	now      func() time.Time
	logger   *zap.Logger
}

// RecalculatorOption configures a Recalculator.
type RecalculatorOption func(*Recalculator)

// WithNotifier sends hot/urgent alerts after each batch.
func WithNotifier(n Notifier) RecalculatorOption {
	return func(r *Recalculator) { r.notifier = n }
}

// WithScorer replaces the default scorer.
func WithScorer(s *Scorer) RecalculatorOption {
	return func(r *Recalculator) { r.scorer = s }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) RecalculatorOption {
	return func(r *Recalculator) { r.now = now }
}

// NewRecalculator creates a new recalculator
func NewRecalculator(store CustomerStore, opts ...RecalculatorOption) *Recalculator {
	r := &Recalculator{
		store:  store,
		scorer: NewScorer(),
		now:    time.Now,
		logger: utils.Component("lead-recalculator"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run scores every customer and writes the results back. A failure on one
// customer is logged and counted, and the batch moves on. Records are not
// locked: a concurrent edit between read and write is overwritten.
func (r *Recalculator) Run(ctx context.Context) (*models.RecalculationResult, error) {
	startTime := time.Now()
	result := &models.RecalculationResult{
		BatchID:      uuid.New().String(),
		Temperatures: map[models.Temperature]int{},
	}
	log := r.logger.With(zap.String("batch_id", result.BatchID))

	customers, err := r.store.ListCustomersForScoring(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	result.Total = len(customers)

	log.Info("Starting lead recalculation", zap.Int("customers", len(customers)))

	now := r.now()
	var alerts []models.LeadAlert

	for _, customer := range customers {
		if err := ctx.Err(); err != nil {
			result.ProcessingTime = time.Since(startTime)
			return result, fmt.Errorf("recalculation interrupted: %w", err)
		}

		score, err := r.rescore(ctx, customer, now)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("customer %d: %v", customer.ID, err))
			log.Warn("Failed to rescore customer", utils.Int64("customer_id", customer.ID), zap.Error(err))
			continue
		}

		result.Temperatures[score.Temperature]++
		previous := customer.CurrentScore()
		if sameTier(previous, score) {
			result.Unchanged++
		} else {
			result.Updated++
		}

		if becameAlert(previous, score) {
			alerts = append(alerts, models.LeadAlert{
				CustomerID:  customer.ID,
				DealerID:    customer.DealerID,
				Name:        customer.Name,
				Email:       customer.Email,
				Score:       score.Score,
				Temperature: score.Temperature,
				Priority:    score.Priority,
				DaysInStage: score.DaysInStage,
			})
		}
	}

	result.Alerts = len(alerts)
	if r.notifier != nil && len(alerts) > 0 {
		if err := r.notifier.NotifyLeadAlerts(ctx, result.BatchID, alerts); err != nil {
			log.Warn("Failed to send lead alerts", zap.Int("alerts", len(alerts)), zap.Error(err))
			result.Errors = append(result.Errors, fmt.Sprintf("notify: %v", err))
		}
	}

	result.ProcessingTime = time.Since(startTime)

	log.Info("Lead recalculation complete",
		zap.Int("total", result.Total),
		zap.Int("updated", result.Updated),
		zap.Int("unchanged", result.Unchanged),
		zap.Int("failed", result.Failed),
		zap.Int("alerts", result.Alerts),
		zap.Duration("processing_time", result.ProcessingTime),
	)

	return result, nil
}

// Rescore recomputes and stores the score of a single customer, for example
// right after a salesperson changes its stage. A missing customer yields
// models.ErrCustomerNotFound.
func (r *Recalculator) Rescore(ctx context.Context, customerID int64) (models.LeadScore, error) {
	customer, err := r.store.GetByID(ctx, customerID)
	if err != nil {
		return models.LeadScore{}, err
	}

	score, err := r.rescore(ctx, customer, r.now())
	if err != nil {
		return models.LeadScore{}, err
	}

	if becameAlert(customer.CurrentScore(), score) {
		r.logger.Info("Customer became a priority lead",
			utils.Int64("customer_id", customer.ID),
			zap.Int("score", score.Score),
			zap.String("temperature", string(score.Temperature)),
			zap.String("priority", string(score.Priority)),
		)
	}
	return score, nil
}

func (r *Recalculator) rescore(ctx context.Context, customer *models.Customer, now time.Time) (models.LeadScore, error) {
	inputs := customer.ScoreInputs()
	if err := models.ValidateLeadScoreInputs(&inputs); err != nil {
		return models.LeadScore{}, err
	}

	score := r.scorer.Score(inputs, now)
	if err := r.store.UpdateLeadScore(ctx, customer.ID, score, now); err != nil {
		return models.LeadScore{}, fmt.Errorf("failed to save score: %w", err)
	}
	return score, nil
}

// sameTier ignores DaysInStage, which grows every day without the lead changing.
func sameTier(previous, current models.LeadScore) bool {
	return previous.Score == current.Score &&
		previous.Temperature == current.Temperature &&
		previous.Priority == current.Priority
}

func becameAlert(previous, current models.LeadScore) bool {
	if current.Temperature == models.TemperatureHot && previous.Temperature != models.TemperatureHot {
		return true
	}
	return current.Priority == models.PriorityUrgent && previous.Priority != models.PriorityUrgent
}
