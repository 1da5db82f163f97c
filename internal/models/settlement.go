package models

import "github.com/shopspring/decimal"

// Settlement records a payment one user claims to have made to another
// for a bill. It is distinct from the transfers proposed by the netting
// calculator: a settlement is asserted by the payer and only becomes
// authoritative once the recipient confirms it. Settlements never feed
// back into balance computation.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// BillID is the bill this settlement is scoped to.
	BillID string

	// FromUser is the user who claims to have paid.
	FromUser string

	// ToUser is the recipient, the only party allowed to confirm or
	// reject the settlement.
	ToUser string

	// Amount is the payment amount, > 0.
	Amount decimal.Decimal

	// Notes is an optional description.
	Notes string

	// IsConfirmed marks the settlement as acknowledged by the recipient.
	// Confirmation is irreversible.
	IsConfirmed bool

	// ConfirmedAt is the Unix timestamp of confirmation, zero until then.
	ConfirmedAt int64

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}
