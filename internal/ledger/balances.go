// Package ledger holds the pure calculation core: net balances per user
// for a set of expenses, and the greedy netting that turns balances into
// a proposed transfer plan. Nothing in this package touches storage or
// holds state; every function is safe to call concurrently.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/models"
)

// ComputeBalances returns the net balance for every user appearing as a
// payer or cost-sharer across the given expenses. Positive means the
// group owes them, negative means they owe the group.
//
// Balances accumulate at full decimal precision; rounding to two places
// happens only when a balance is presented or a transfer is emitted.
// An expense with an empty shared-by set is accepted input: its amount
// counts toward the payer's payments and toward no one's owed share.
func ComputeBalances(expenses []*models.Expense) map[string]decimal.Decimal {
	payments := make(map[string]decimal.Decimal)
	owed := make(map[string]decimal.Decimal)

	for _, e := range expenses {
		payments[e.PaidBy] = payments[e.PaidBy].Add(e.Amount)

		if len(e.SharedBy) == 0 {
			continue
		}
		share := e.Amount.Div(decimal.NewFromInt(int64(len(e.SharedBy))))
		for _, u := range e.SharedBy {
			owed[u] = owed[u].Add(share)
		}
	}

	balances := make(map[string]decimal.Decimal, len(payments)+len(owed))
	for u, paid := range payments {
		balances[u] = paid.Sub(owed[u])
	}
	for u, share := range owed {
		if _, ok := payments[u]; !ok {
			balances[u] = share.Neg()
		}
	}
	return balances
}

// RoundBalances returns a copy of balances rounded to two fraction
// digits for presentation.
func RoundBalances(balances map[string]decimal.Decimal) map[string]decimal.Decimal {
	rounded := make(map[string]decimal.Decimal, len(balances))
	for u, b := range balances {
		rounded[u] = b.Round(2)
	}
	return rounded
}

// SumExpenses returns the sum of the expense amounts. This is the value
// cached on a bill's TotalAmount after every expense mutation.
func SumExpenses(expenses []*models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}
