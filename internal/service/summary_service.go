package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/storage"
)

// SummaryService computes a user's cross-bill financial summary. It is
// a read-only fan-out over the balance calculator and holds no state.
type SummaryService struct {
	store  storage.Store
	events EventDirectory
}

// NewSummaryService creates a SummaryService over the given store and
// event directory.
func NewSummaryService(store storage.Store, events EventDirectory) *SummaryService {
	return &SummaryService{store: store, events: events}
}

// BillBalance is one row of the summary breakdown.
type BillBalance struct {
	Bill *models.Bill
	// Balance is the user's balance on this bill, rounded to 2 places.
	Balance decimal.Decimal
}

// UserSummary aggregates a user's position across all their bills.
// Settled bills appear in the breakdown but are excluded from the
// owed/owes totals.
type UserSummary struct {
	TotalBills      int
	SettledBills    int
	UnsettledBills  int
	TotalOwedToUser decimal.Decimal
	TotalUserOwes   decimal.Decimal
	Breakdown       []BillBalance
}

// UserSummary computes the summary for the given user across every bill
// they created, participate in, or that belongs to one of their events.
func (s *SummaryService) UserSummary(ctx context.Context, userID string) (*UserSummary, error) {
	eventIDs, err := s.events.EventsFor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	bills, err := s.store.ListBillsForUser(ctx, userID, eventIDs)
	if err != nil {
		return nil, err
	}

	summary := &UserSummary{
		TotalBills:      len(bills),
		TotalOwedToUser: decimal.Zero,
		TotalUserOwes:   decimal.Zero,
	}

	for _, bill := range bills {
		if bill.IsSettled {
			summary.SettledBills++
		} else {
			summary.UnsettledBills++
		}

		expenses, err := s.store.ListExpensesByBill(ctx, bill.ID)
		if err != nil {
			return nil, err
		}
		balance := ledger.ComputeBalances(expenses)[userID].Round(2)
		summary.Breakdown = append(summary.Breakdown, BillBalance{Bill: bill, Balance: balance})

		// Settled bills stay out of the running totals.
		if bill.IsSettled {
			continue
		}
		switch {
		case balance.IsPositive():
			summary.TotalOwedToUser = summary.TotalOwedToUser.Add(balance)
		case balance.IsNegative():
			summary.TotalUserOwes = summary.TotalUserOwes.Add(balance.Abs())
		}
	}
	return summary, nil
}
