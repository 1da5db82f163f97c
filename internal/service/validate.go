package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/ledger"
)

// Explicit validation functions, composed before entity construction.
// Each returns a typed *ledger.ValidationError for the offending field.

func validateBillInput(title, eventID string) error {
	if strings.TrimSpace(title) == "" {
		return &ledger.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if eventID == "" {
		return &ledger.ValidationError{Field: "event_id", Reason: "must not be empty"}
	}
	return nil
}

func validateExpenseInput(description string, amount decimal.Decimal, paidBy string) error {
	if strings.TrimSpace(description) == "" {
		return &ledger.ValidationError{Field: "description", Reason: "must not be empty"}
	}
	if amount.IsNegative() {
		return &ledger.ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	if paidBy == "" {
		return &ledger.ValidationError{Field: "paid_by", Reason: "must not be empty"}
	}
	return nil
}

func validateSettlementInput(fromUser, toUser string, amount decimal.Decimal) error {
	if toUser == "" {
		return &ledger.ValidationError{Field: "to_user", Reason: "must not be empty"}
	}
	if toUser == fromUser {
		return &ledger.ValidationError{Field: "to_user", Reason: "must differ from the payer"}
	}
	if !amount.IsPositive() {
		return &ledger.ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	return nil
}
