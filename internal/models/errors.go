// Package models defines the data structures for the trailer sales engine.
package models

import (
	"errors"
	"math"
	"strings"
)

// Common errors
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidLeadStatus     = errors.New("invalid lead status")
	ErrInvalidFinancingType  = errors.New("invalid financing type")
	ErrEmptyStockNumber      = errors.New("stock_number cannot be empty")
	ErrInvalidListedPrice    = errors.New("listed price must be a non-negative number")
	ErrCustomerNotFound      = errors.New("customer not found")
	ErrUnsupportedFeedFormat = errors.New("unsupported inventory feed format")
)

// NormalizeLeadStatus converts the pipeline labels used across dealer CRMs to standard values.
func NormalizeLeadStatus(status string) LeadStatus {
	normalized := normalizeLabel(status)

	statusMap := map[string]LeadStatus{
		"new":                LeadStatusNew,
		"fresh":              LeadStatusNew,
		"contacted":          LeadStatusContacted,
		"reached":            LeadStatusContacted,
		"follow_up":          LeadStatusContacted,
		"quoted":             LeadStatusQuoted,
		"quote_sent":         LeadStatusQuoted,
		"negotiating":        LeadStatusQuoted,
		"applied":            LeadStatusApplied,
		"application":        LeadStatusApplied,
		"credit_app":         LeadStatusApplied,
		"approved":           LeadStatusApproved,
		"financing_approved": LeadStatusApproved,
		"won":                LeadStatusWon,
		"sold":               LeadStatusWon,
		"closed_won":         LeadStatusWon,
		"delivered":          LeadStatusWon,
		"lost":               LeadStatusLost,
		"closed_lost":        LeadStatusLost,
		"dead":               LeadStatusLost,
	}

	if mapped, ok := statusMap[normalized]; ok {
		return mapped
	}

	// Return as-is if no mapping found (will fail validation)
	return LeadStatus(normalized)
}

// NormalizeFinancingType converts free-text financing choices to standard values.
func NormalizeFinancingType(financing string) FinancingType {
	normalized := normalizeLabel(financing)

	financingMap := map[string]FinancingType{
		"cash":         FinancingTypeCash,
		"outright":     FinancingTypeCash,
		"finance":      FinancingTypeFinance,
		"financing":    FinancingTypeFinance,
		"loan":         FinancingTypeFinance,
		"rto":          FinancingTypeRentToOwn,
		"rent_to_own":  FinancingTypeRentToOwn,
		"renttoown":    FinancingTypeRentToOwn,
		"lease":        FinancingTypeRentToOwn,
		"":             FinancingTypeUnknown,
		"unknown":      FinancingTypeUnknown,
		"undecided":    FinancingTypeUnknown,
		"not_sure_yet": FinancingTypeUnknown,
	}

	if mapped, ok := financingMap[normalized]; ok {
		return mapped
	}

	return FinancingType(normalized)
}

// ValidateLeadScoreInputs validates the attribute bag fed to the lead scorer.
func ValidateLeadScoreInputs(in *LeadScoreInputs) error {
	if !in.Status.IsValid() {
		return ErrInvalidLeadStatus
	}
	if !in.Financing.IsValid() {
		return ErrInvalidFinancingType
	}
	if !in.Application.IsValid() {
		return ErrInvalidInput
	}
	return nil
}

// ValidateInventoryItem validates a parsed inventory feed row.
func ValidateInventoryItem(item *InventoryItemCreate) error {
	if strings.TrimSpace(item.StockNumber) == "" {
		return ErrEmptyStockNumber
	}
	if item.ListedPrice < 0 || math.IsNaN(item.ListedPrice) || math.IsInf(item.ListedPrice, 0) {
		return ErrInvalidListedPrice
	}
	return nil
}

func normalizeLabel(s string) string {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")
	return normalized
}
