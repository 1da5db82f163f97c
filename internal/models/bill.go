package models

import "github.com/shopspring/decimal"

// Bill represents a named financial grouping of expenses within one event.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// EventID references the event this bill belongs to. Events live in
	// an external system; only the identifier is stored here.
	EventID string

	// Title is the human-readable name for the bill.
	Title string

	// Description is an optional free-form description.
	Description string

	// TotalAmount is a derived cache of the sum of the bill's expense
	// amounts, refreshed after every expense mutation. It is never a
	// source of truth.
	TotalAmount decimal.Decimal

	// IsSettled is a manual flag toggled by the bill creator. It is not
	// derived from the computed balances.
	IsSettled bool

	// CreatedBy is the user ID of the bill creator.
	CreatedBy string

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}
