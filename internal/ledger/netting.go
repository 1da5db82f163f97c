package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Transfer is one proposed payment in a settlement plan.
type Transfer struct {
	From   string
	To     string
	Amount decimal.Decimal
}

// minTransfer is the minimum-transaction threshold. Transfers at or
// below it are rounding noise and are dropped without signaling.
var minTransfer = decimal.New(1, -2) // 0.01

// SettlementPlan nets the given balances into an ordered list of
// transfers using a greedy largest-debtor against largest-creditor
// merge. It is a heuristic: it does not guarantee the graph-theoretic
// minimum number of transfers, only that applying every transfer leaves
// each balance within 0.01 of zero for a correctly netting input.
//
// Output is deterministic: both sides sort by magnitude descending with
// user ID ascending as the tie-break. Emitted amounts are rounded to
// two fraction digits with half-to-even rounding; residue at or below
// the threshold is dropped.
func SettlementPlan(balances map[string]decimal.Decimal) []Transfer {
	type stake struct {
		user   string
		amount decimal.Decimal // magnitude, always positive
	}

	var debtors, creditors []stake
	for u, b := range balances {
		switch {
		case b.IsNegative():
			debtors = append(debtors, stake{user: u, amount: b.Neg()})
		case b.IsPositive():
			creditors = append(creditors, stake{user: u, amount: b})
		}
	}

	byMagnitudeDesc := func(s []stake) {
		sort.Slice(s, func(i, j int) bool {
			if c := s[i].amount.Cmp(s[j].amount); c != 0 {
				return c > 0
			}
			return s[i].user < s[j].user
		})
	}
	byMagnitudeDesc(debtors)
	byMagnitudeDesc(creditors)

	var plan []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		transfer := decimal.Min(debtors[i].amount, creditors[j].amount)

		if transfer.GreaterThan(minTransfer) {
			plan = append(plan, Transfer{
				From:   debtors[i].user,
				To:     creditors[j].user,
				Amount: transfer.RoundBank(2),
			})
		}

		debtors[i].amount = debtors[i].amount.Sub(transfer)
		creditors[j].amount = creditors[j].amount.Sub(transfer)

		// Both pointers may advance in one step when the amounts
		// matched exactly.
		if debtors[i].amount.LessThanOrEqual(minTransfer) {
			i++
		}
		if creditors[j].amount.LessThanOrEqual(minTransfer) {
			j++
		}
	}
	return plan
}
