package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
)

// BillService manages the bill and expense lifecycle. Expense mutations
// serialize per bill and refresh the bill's cached total.
type BillService struct {
	store  storage.Store
	events EventDirectory
	locks  *billLocks
}

// NewBillService creates a BillService over the given store and event
// directory.
func NewBillService(store storage.Store, events EventDirectory) *BillService {
	return &BillService{store: store, events: events, locks: newBillLocks()}
}

// ExpenseInput carries the caller-supplied fields of an expense.
type ExpenseInput struct {
	Description string
	Amount      decimal.Decimal
	PaidBy      string
	SharedBy    []string
	ReceiptRef  string
}

// BillDetail is the bill read model: the computed balances, the proposed
// transfer plan, and the recorded settlements stay separate fields.
// Settlements never feed into the balances; callers present both.
type BillDetail struct {
	Bill        *models.Bill
	Expenses    []*models.Expense
	Balances    map[string]decimal.Decimal // rounded to 2 places
	Plan        []ledger.Transfer
	Settlements []*models.Settlement
}

// BillFilter narrows ListBills results.
type BillFilter struct {
	EventID string // only bills of this event when non-empty
	Settled *bool  // only settled / unsettled bills when non-nil
}

// BillListEntry is one row of a bill listing.
type BillListEntry struct {
	Bill         *models.Bill
	ExpenseCount int
	// UserBalance is the listing user's balance on this bill, rounded
	// to 2 places.
	UserBalance decimal.Decimal
}

// CreateBill creates a bill for a finalized event the actor belongs to
// and enrolls the actor as a participant.
func (s *BillService) CreateBill(ctx context.Context, actor, eventID, title, description string) (*models.Bill, error) {
	if err := validateBillInput(title, eventID); err != nil {
		return nil, err
	}

	finalized, err := s.events.IsFinalized(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to check event state: %w", err)
	}
	if !finalized {
		return nil, fmt.Errorf("event %s is not finalized: %w", eventID, ledger.ErrInvalidState)
	}

	allowed, err := s.isEventInsider(ctx, eventID, actor)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("user %s is not part of event %s: %w", actor, eventID, ledger.ErrPermissionDenied)
	}

	bill := &models.Bill{
		EventID:     eventID,
		Title:       title,
		Description: description,
		TotalAmount: decimal.Zero,
		CreatedBy:   actor,
	}
	if err := s.store.CreateBill(ctx, bill); err != nil {
		slog.Error("CreateBill failed", "event_id", eventID, "error", err)
		return nil, err
	}
	if err := s.store.EnsureParticipant(ctx, bill.ID, actor); err != nil {
		return nil, err
	}

	slog.Info("Bill created", "bill_id", bill.ID, "event_id", eventID, "created_by", actor)
	return bill, nil
}

// BillDetail returns the full read model for a bill and lazily enrolls
// the actor as a participant.
func (s *BillService) BillDetail(ctx context.Context, actor, billID string) (*BillDetail, error) {
	bill, err := s.authorizedBill(ctx, actor, billID)
	if err != nil {
		return nil, err
	}

	if err := s.store.EnsureParticipant(ctx, billID, actor); err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.store.ListSettlementsByBill(ctx, billID)
	if err != nil {
		return nil, err
	}

	balances := ledger.ComputeBalances(expenses)
	return &BillDetail{
		Bill:        bill,
		Expenses:    expenses,
		Balances:    ledger.RoundBalances(balances),
		Plan:        ledger.SettlementPlan(balances),
		Settlements: settlements,
	}, nil
}

// ListBills returns the actor's bills with per-bill expense counts and
// the actor's own balance, optionally filtered by event or settled state.
func (s *BillService) ListBills(ctx context.Context, actor string, filter BillFilter) ([]*BillListEntry, error) {
	eventIDs, err := s.events.EventsFor(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	bills, err := s.store.ListBillsForUser(ctx, actor, eventIDs)
	if err != nil {
		return nil, err
	}

	var entries []*BillListEntry
	for _, bill := range bills {
		if filter.EventID != "" && bill.EventID != filter.EventID {
			continue
		}
		if filter.Settled != nil && bill.IsSettled != *filter.Settled {
			continue
		}

		expenses, err := s.store.ListExpensesByBill(ctx, bill.ID)
		if err != nil {
			return nil, err
		}
		balance := ledger.ComputeBalances(expenses)[actor]
		entries = append(entries, &BillListEntry{
			Bill:         bill,
			ExpenseCount: len(expenses),
			UserBalance:  balance.Round(2),
		})
	}
	return entries, nil
}

// SetSettled flips the bill's manual settled flag. Only the creator may
// toggle it, and the flag is independent of the computed balances.
func (s *BillService) SetSettled(ctx context.Context, actor, billID string, settled bool) (*models.Bill, error) {
	unlock := s.locks.lock(billID)
	defer unlock()

	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill.CreatedBy != actor {
		return nil, fmt.Errorf("only the bill creator may mark it settled: %w", ledger.ErrPermissionDenied)
	}

	bill.IsSettled = settled
	if err := s.store.UpdateBill(ctx, bill); err != nil {
		return nil, err
	}
	slog.Info("Bill settled flag changed", "bill_id", billID, "settled", settled)
	return bill, nil
}

// DeleteBill removes a bill together with its expenses, settlements and
// participants. Creator-only.
func (s *BillService) DeleteBill(ctx context.Context, actor, billID string) error {
	unlock := s.locks.lock(billID)
	defer unlock()

	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return err
	}
	if bill.CreatedBy != actor {
		return fmt.Errorf("only the bill creator may delete it: %w", ledger.ErrPermissionDenied)
	}
	return s.store.DeleteBill(ctx, billID)
}

// AddExpense records a new expense on a bill and refreshes the cached
// total under the bill's lock.
func (s *BillService) AddExpense(ctx context.Context, actor, billID string, in ExpenseInput) (*models.Expense, error) {
	if err := validateExpenseInput(in.Description, in.Amount, in.PaidBy); err != nil {
		return nil, err
	}
	if _, err := s.authorizedBill(ctx, actor, billID); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(billID)
	defer unlock()

	// The bill may have been deleted between the access check and
	// acquiring the lock. Re-fetch so the caller gets NotFound instead
	// of a constraint failure from the insert.
	if _, err := s.store.GetBill(ctx, billID); err != nil {
		return nil, err
	}

	expense := &models.Expense{
		BillID:      billID,
		Description: in.Description,
		Amount:      in.Amount,
		PaidBy:      in.PaidBy,
		SharedBy:    in.SharedBy,
		ReceiptRef:  in.ReceiptRef,
	}
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("AddExpense failed", "bill_id", billID, "error", err)
		return nil, err
	}
	if err := s.recomputeTotal(ctx, billID); err != nil {
		return nil, err
	}
	return expense, nil
}

// UpdateExpense edits an expense and refreshes the bill's cached total.
// Allowed for the expense payer, the bill creator, or the event owner.
func (s *BillService) UpdateExpense(ctx context.Context, actor, expenseID string, in ExpenseInput) (*models.Expense, error) {
	if err := validateExpenseInput(in.Description, in.Amount, in.PaidBy); err != nil {
		return nil, err
	}

	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeExpenseEdit(ctx, actor, expense); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(expense.BillID)
	defer unlock()

	expense.Description = in.Description
	expense.Amount = in.Amount
	expense.PaidBy = in.PaidBy
	expense.SharedBy = in.SharedBy
	expense.ReceiptRef = in.ReceiptRef
	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		slog.Error("UpdateExpense failed", "expense_id", expenseID, "error", err)
		return nil, err
	}
	if err := s.recomputeTotal(ctx, expense.BillID); err != nil {
		return nil, err
	}
	return expense, nil
}

// DeleteExpense removes an expense and refreshes the bill's cached
// total. Same permission rule as UpdateExpense.
func (s *BillService) DeleteExpense(ctx context.Context, actor, expenseID string) error {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	if err := s.authorizeExpenseEdit(ctx, actor, expense); err != nil {
		return err
	}

	unlock := s.locks.lock(expense.BillID)
	defer unlock()

	if err := s.store.DeleteExpense(ctx, expenseID); err != nil {
		return err
	}
	return s.recomputeTotal(ctx, expense.BillID)
}

// recomputeTotal refreshes the bill's derived total from its current
// expense set. Callers hold the bill's lock.
func (s *BillService) recomputeTotal(ctx context.Context, billID string) error {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return err
	}
	expenses, err := s.store.ListExpensesByBill(ctx, billID)
	if err != nil {
		return err
	}
	bill.TotalAmount = ledger.SumExpenses(expenses)
	return s.store.UpdateBill(ctx, bill)
}

// authorizedBill fetches a bill and checks the actor may access it:
// bill creator, event owner, or event member.
func (s *BillService) authorizedBill(ctx context.Context, actor, billID string) (*models.Bill, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill.CreatedBy == actor {
		return bill, nil
	}
	allowed, err := s.isEventInsider(ctx, bill.EventID, actor)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("user %s may not access bill %s: %w", actor, billID, ledger.ErrPermissionDenied)
	}
	return bill, nil
}

func (s *BillService) authorizeExpenseEdit(ctx context.Context, actor string, expense *models.Expense) error {
	if expense.PaidBy == actor {
		return nil
	}
	bill, err := s.store.GetBill(ctx, expense.BillID)
	if err != nil {
		return err
	}
	if bill.CreatedBy == actor {
		return nil
	}
	owner, err := s.events.IsOwner(ctx, bill.EventID, actor)
	if err != nil {
		return fmt.Errorf("failed to check event owner: %w", err)
	}
	if owner {
		return nil
	}
	return fmt.Errorf("user %s may not edit expense %s: %w", actor, expense.ID, ledger.ErrPermissionDenied)
}

func (s *BillService) isEventInsider(ctx context.Context, eventID, userID string) (bool, error) {
	owner, err := s.events.IsOwner(ctx, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check event owner: %w", err)
	}
	if owner {
		return true, nil
	}
	member, err := s.events.IsMember(ctx, eventID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check event membership: %w", err)
	}
	return member, nil
}
