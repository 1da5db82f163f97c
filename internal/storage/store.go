// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/splitledger/splitledger/internal/models"
)

// Store defines the persistence boundary for bills, expenses,
// settlements, and bill participants. The abstraction allows swapping
// storage backends without changing the service layer.
//
// Create methods populate the entity's ID and timestamps when unset.
// Lookups for unknown IDs return an error wrapping ledger.ErrNotFound.
type Store interface {
	CreateBill(ctx context.Context, bill *models.Bill) error
	GetBill(ctx context.Context, billID string) (*models.Bill, error)
	UpdateBill(ctx context.Context, bill *models.Bill) error
	// DeleteBill removes the bill and, through ownership, its expenses,
	// settlements, and participants.
	DeleteBill(ctx context.Context, billID string) error
	// ListBillsForUser returns bills the user created, participates in,
	// or that belong to one of the given event IDs, newest first.
	ListBillsForUser(ctx context.Context, userID string, eventIDs []string) ([]*models.Bill, error)

	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, expenseID string) error
	ListExpensesByBill(ctx context.Context, billID string) ([]*models.Expense, error)

	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)
	// ConfirmSettlement atomically marks an unconfirmed settlement as
	// confirmed. It returns false when the settlement was already
	// confirmed, so a double-confirm race resolves to a single winner.
	ConfirmSettlement(ctx context.Context, settlementID string, confirmedAt int64) (bool, error)
	// DeleteUnconfirmedSettlement removes a settlement only while it is
	// unconfirmed. It returns false when the row survived because it was
	// already confirmed.
	DeleteUnconfirmedSettlement(ctx context.Context, settlementID string) (bool, error)
	ListSettlementsByBill(ctx context.Context, billID string) ([]*models.Settlement, error)

	// EnsureParticipant enrolls the user in the bill if not already
	// enrolled. Enrolling twice is a no-op.
	EnsureParticipant(ctx context.Context, billID, userID string) error
	ListParticipants(ctx context.Context, billID string) ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}
