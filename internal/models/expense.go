package models

import "github.com/shopspring/decimal"

// Expense represents a single expenditure within a bill. It is owned by
// its bill and is deleted with it.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// BillID is the bill this expense belongs to.
	BillID string

	// Description is the name of the expenditure (e.g. "Groceries").
	Description string

	// Amount is the full cost of the expense, >= 0.
	Amount decimal.Decimal

	// PaidBy is the user ID of the single payer.
	PaidBy string

	// SharedBy lists the user IDs splitting this expense equally. It may
	// be empty, in which case the amount counts toward the payer's
	// payments but toward no one's owed share.
	SharedBy []string

	// ReceiptRef is an opaque reference to a receipt attachment in an
	// external store. Empty when no receipt was attached.
	ReceiptRef string

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// SharePerPerson returns each sharer's equal portion of the amount, or
// zero when nobody shares the expense.
func (e *Expense) SharePerPerson() decimal.Decimal {
	if len(e.SharedBy) == 0 {
		return decimal.Zero
	}
	return e.Amount.Div(decimal.NewFromInt(int64(len(e.SharedBy))))
}
