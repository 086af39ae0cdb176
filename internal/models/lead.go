// Package models defines the data structures for the trailer sales engine.
package models

import (
	"time"
)

// LeadStatus represents the pipeline stage of a customer record.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQuoted    LeadStatus = "quoted"
	LeadStatusApplied   LeadStatus = "applied"
	LeadStatusApproved  LeadStatus = "approved"
	LeadStatusWon       LeadStatus = "won"
	LeadStatusLost      LeadStatus = "lost"
)

// ValidLeadStatuses returns all valid lead status values.
func ValidLeadStatuses() []LeadStatus {
	return []LeadStatus{
		LeadStatusNew,
		LeadStatusContacted,
		LeadStatusQuoted,
		LeadStatusApplied,
		LeadStatusApproved,
		LeadStatusWon,
		LeadStatusLost,
	}
}

// IsValid checks if the lead status is valid.
func (s LeadStatus) IsValid() bool {
	for _, valid := range ValidLeadStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// IsClosed returns true for terminal pipeline stages.
func (s LeadStatus) IsClosed() bool {
	return s == LeadStatusWon || s == LeadStatusLost
}

// FinancingType is how the customer intends to pay.
type FinancingType string

const (
	FinancingTypeCash      FinancingType = "cash"
	FinancingTypeFinance   FinancingType = "finance"
	FinancingTypeRentToOwn FinancingType = "rent_to_own"
	FinancingTypeUnknown   FinancingType = "unknown"
)

// IsValid checks if the financing type is valid.
func (f FinancingType) IsValid() bool {
	switch f {
	case FinancingTypeCash, FinancingTypeFinance, FinancingTypeRentToOwn, FinancingTypeUnknown:
		return true
	default:
		return false
	}
}

// ApplicationStatus is the progress of the customer's credit application.
type ApplicationStatus string

const (
	ApplicationStatusNone      ApplicationStatus = "none"
	ApplicationStatusStarted   ApplicationStatus = "started"
	ApplicationStatusSubmitted ApplicationStatus = "submitted"
	ApplicationStatusApproved  ApplicationStatus = "approved"
	ApplicationStatusDeclined  ApplicationStatus = "declined"
)

// IsValid checks if the application status is valid.
func (a ApplicationStatus) IsValid() bool {
	switch a {
	case ApplicationStatusNone, ApplicationStatusStarted, ApplicationStatusSubmitted,
		ApplicationStatusApproved, ApplicationStatusDeclined:
		return true
	default:
		return false
	}
}

// Temperature summarizes how engaged a lead is.
type Temperature string

const (
	TemperatureHot  Temperature = "hot"
	TemperatureWarm Temperature = "warm"
	TemperatureCold Temperature = "cold"
	TemperatureDead Temperature = "dead"
)

// Priority is the follow-up urgency for the sales team.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Customer is a CRM customer record as read for lead scoring.
type Customer struct {
	ID                int64             `json:"id" db:"id"`
	DealerID          int64             `json:"dealer_id" db:"dealer_id"`
	Name              string            `json:"name" db:"name"`
	Email             string            `json:"email" db:"email"`
	Status            LeadStatus        `json:"status" db:"status"`
	Financing         FinancingType     `json:"financing_type" db:"financing_type"`
	Application       ApplicationStatus `json:"application_status" db:"application_status"`
	LastActivityAt    *time.Time        `json:"last_activity_at,omitempty" db:"last_activity_at"`
	StatusChangedAt   *time.Time        `json:"status_changed_at,omitempty" db:"status_changed_at"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
	LeadScore         int               `json:"lead_score" db:"lead_score"`
	Temperature       Temperature       `json:"temperature" db:"temperature"`
	Priority          Priority          `json:"priority" db:"priority"`
	DaysInStage       int               `json:"days_in_stage" db:"days_in_stage"`
	ScoreCalculatedAt *time.Time        `json:"score_calculated_at,omitempty" db:"score_calculated_at"`
}

// LeadScoreInputs is the attribute bag the scorer reads.
type LeadScoreInputs struct {
	Status          LeadStatus        `json:"status"`
	Financing       FinancingType     `json:"financing_type"`
	Application     ApplicationStatus `json:"application_status"`
	LastActivityAt  *time.Time        `json:"last_activity_at,omitempty"`
	StatusChangedAt *time.Time        `json:"status_changed_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// ScoreInputs extracts the scoring attributes of a customer.
func (c *Customer) ScoreInputs() LeadScoreInputs {
	return LeadScoreInputs{
		Status:          c.Status,
		Financing:       c.Financing,
		Application:     c.Application,
		LastActivityAt:  c.LastActivityAt,
		StatusChangedAt: c.StatusChangedAt,
		CreatedAt:       c.CreatedAt,
	}
}

// LeadScore is the derived score and tiers of a customer.
type LeadScore struct {
	Score       int         `json:"score"`
	Temperature Temperature `json:"temperature"`
	Priority    Priority    `json:"priority"`
	DaysInStage int         `json:"days_in_stage"`
}

// CurrentScore returns the score last stored on the customer.
func (c *Customer) CurrentScore() LeadScore {
	return LeadScore{
		Score:       c.LeadScore,
		Temperature: c.Temperature,
		Priority:    c.Priority,
		DaysInStage: c.DaysInStage,
	}
}

// LeadAlert describes a lead that needs attention after a recalculation.
type LeadAlert struct {
	CustomerID  int64       `json:"customer_id"`
	DealerID    int64       `json:"dealer_id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Score       int         `json:"score"`
	Temperature Temperature `json:"temperature"`
	Priority    Priority    `json:"priority"`
	DaysInStage int         `json:"days_in_stage"`
}

// RecalculationResult reports the outcome of a lead recalculation batch.
type RecalculationResult struct {
	BatchID        string              `json:"batch_id"`
	Total          int                 `json:"total"`
	Updated        int                 `json:"updated"`
	Unchanged      int                 `json:"unchanged"`
	Failed         int                 `json:"failed"`
	Alerts         int                 `json:"alerts"`
	Temperatures   map[Temperature]int `json:"temperatures"`
	Errors         []string            `json:"errors,omitempty"`
	ProcessingTime time.Duration       `json:"processing_time"`
}
