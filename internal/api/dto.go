package api

import (
	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/ledger"
	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/service"
)

// Response shapes. Decimal amounts serialize as JSON strings so clients
// never lose precision to binary floats.

type billJSON struct {
	ID          string          `json:"id"`
	EventID     string          `json:"event_id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	IsSettled   bool            `json:"is_settled"`
	CreatedBy   string          `json:"created_by"`
	CreatedAt   int64           `json:"created_at"`
	UpdatedAt   int64           `json:"updated_at"`
}

type expenseJSON struct {
	ID          string          `json:"id"`
	BillID      string          `json:"bill_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	PaidBy      string          `json:"paid_by"`
	SharedBy    []string        `json:"shared_by"`
	ReceiptRef  string          `json:"receipt_ref,omitempty"`
	CreatedAt   int64           `json:"created_at"`
	UpdatedAt   int64           `json:"updated_at"`
}

type settlementJSON struct {
	ID          string          `json:"id"`
	BillID      string          `json:"bill_id"`
	FromUser    string          `json:"from_user"`
	ToUser      string          `json:"to_user"`
	Amount      decimal.Decimal `json:"amount"`
	Notes       string          `json:"notes,omitempty"`
	IsConfirmed bool            `json:"is_confirmed"`
	ConfirmedAt int64           `json:"confirmed_at,omitempty"`
	CreatedAt   int64           `json:"created_at"`
}

type transferJSON struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

type billDetailJSON struct {
	Bill        billJSON                   `json:"bill"`
	Expenses    []expenseJSON              `json:"expenses"`
	Balances    map[string]decimal.Decimal `json:"balances"`
	Plan        []transferJSON             `json:"settlement_plan"`
	Settlements []settlementJSON           `json:"settlements"`
}

type billListEntryJSON struct {
	Bill         billJSON        `json:"bill"`
	ExpenseCount int             `json:"expense_count"`
	UserBalance  decimal.Decimal `json:"user_balance"`
}

type summaryJSON struct {
	TotalBills      int               `json:"total_bills"`
	SettledBills    int               `json:"settled_bills"`
	UnsettledBills  int               `json:"unsettled_bills"`
	TotalOwedToUser decimal.Decimal   `json:"total_owed_to_user"`
	TotalUserOwes   decimal.Decimal   `json:"total_user_owes"`
	Breakdown       []billBalanceJSON `json:"breakdown"`
}

type billBalanceJSON struct {
	Bill    billJSON        `json:"bill"`
	Balance decimal.Decimal `json:"balance"`
}

func toBillJSON(b *models.Bill) billJSON {
	return billJSON{
		ID:          b.ID,
		EventID:     b.EventID,
		Title:       b.Title,
		Description: b.Description,
		TotalAmount: b.TotalAmount,
		IsSettled:   b.IsSettled,
		CreatedBy:   b.CreatedBy,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func toExpenseJSON(e *models.Expense) expenseJSON {
	shared := e.SharedBy
	if shared == nil {
		shared = []string{}
	}
	return expenseJSON{
		ID:          e.ID,
		BillID:      e.BillID,
		Description: e.Description,
		Amount:      e.Amount,
		PaidBy:      e.PaidBy,
		SharedBy:    shared,
		ReceiptRef:  e.ReceiptRef,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toSettlementJSON(s *models.Settlement) settlementJSON {
	return settlementJSON{
		ID:          s.ID,
		BillID:      s.BillID,
		FromUser:    s.FromUser,
		ToUser:      s.ToUser,
		Amount:      s.Amount,
		Notes:       s.Notes,
		IsConfirmed: s.IsConfirmed,
		ConfirmedAt: s.ConfirmedAt,
		CreatedAt:   s.CreatedAt,
	}
}

func toBillDetailJSON(d *service.BillDetail) billDetailJSON {
	out := billDetailJSON{
		Bill:        toBillJSON(d.Bill),
		Expenses:    make([]expenseJSON, 0, len(d.Expenses)),
		Balances:    d.Balances,
		Plan:        make([]transferJSON, 0, len(d.Plan)),
		Settlements: make([]settlementJSON, 0, len(d.Settlements)),
	}
	for _, e := range d.Expenses {
		out.Expenses = append(out.Expenses, toExpenseJSON(e))
	}
	for _, tr := range d.Plan {
		out.Plan = append(out.Plan, toTransferJSON(tr))
	}
	for _, st := range d.Settlements {
		out.Settlements = append(out.Settlements, toSettlementJSON(st))
	}
	return out
}

func toTransferJSON(tr ledger.Transfer) transferJSON {
	return transferJSON{From: tr.From, To: tr.To, Amount: tr.Amount}
}

func toSummaryJSON(s *service.UserSummary) summaryJSON {
	out := summaryJSON{
		TotalBills:      s.TotalBills,
		SettledBills:    s.SettledBills,
		UnsettledBills:  s.UnsettledBills,
		TotalOwedToUser: s.TotalOwedToUser,
		TotalUserOwes:   s.TotalUserOwes,
		Breakdown:       make([]billBalanceJSON, 0, len(s.Breakdown)),
	}
	for _, bb := range s.Breakdown {
		out.Breakdown = append(out.Breakdown, billBalanceJSON{
			Bill:    toBillJSON(bb.Bill),
			Balance: bb.Balance,
		})
	}
	return out
}
