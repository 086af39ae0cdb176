package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"trailer-sales-engine/internal/models"
)

// CustomerRepository handles customer lead-score reads and writes.
type CustomerRepository struct {
	db *DB
}

// NewCustomerRepository creates a new customer repository.
func NewCustomerRepository(db *DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

const customerColumns = `id, dealer_id, name, email, status, financing_type, application_status,
	last_activity_at, status_changed_at, created_at,
	COALESCE(lead_score, 0), COALESCE(temperature, ''), COALESCE(priority, ''), COALESCE(days_in_stage, 0),
	score_calculated_at`

// ListCustomersForScoring returns every customer with the attributes the scorer reads.
func (r *CustomerRepository) ListCustomersForScoring(ctx context.Context) ([]*models.Customer, error) {
	rows, err := r.db.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	customers := make([]*models.Customer, 0)
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, nil
}

// GetByID retrieves a customer by ID.
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	row := r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)

	customer, err := scanCustomer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return customer, nil
}

// UpdateLeadScore stores a recomputed score on the customer record.
func (r *CustomerRepository) UpdateLeadScore(ctx context.Context, customerID int64, score models.LeadScore, calculatedAt time.Time) error {
	affected, err := r.db.Exec(ctx, `
		UPDATE customers
		SET lead_score = $2,
			temperature = $3,
			priority = $4,
			days_in_stage = $5,
			score_calculated_at = $6
		WHERE id = $1`,
		customerID,
		score.Score,
		string(score.Temperature),
		string(score.Priority),
		score.DaysInStage,
		calculatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to update lead score: %w", err)
	}
	if affected == 0 {
		return models.ErrCustomerNotFound
	}
	return nil
}

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	var c models.Customer
	var status, financing, application, temperature, priority string

	err := row.Scan(
		&c.ID,
		&c.DealerID,
		&c.Name,
		&c.Email,
		&status,
		&financing,
		&application,
		&c.LastActivityAt,
		&c.StatusChangedAt,
		&c.CreatedAt,
		&c.LeadScore,
		&temperature,
		&priority,
		&c.DaysInStage,
		&c.ScoreCalculatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan customer: %w", err)
	}

	// CRM labels vary by dealer; normalize before scoring
	c.Status = models.NormalizeLeadStatus(status)
	c.Financing = models.NormalizeFinancingType(financing)
	c.Application = models.ApplicationStatus(application)
	if application == "" {
		c.Application = models.ApplicationStatusNone
	}
	c.Temperature = models.Temperature(temperature)
	c.Priority = models.Priority(priority)

	return &c, nil
}
