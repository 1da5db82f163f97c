package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/middleware"
	"github.com/splitledger/splitledger/internal/service"
)

type expenseRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	PaidBy      string          `json:"paid_by"`
	SharedBy    []string        `json:"shared_by"`
	ReceiptRef  string          `json:"receipt_ref"`
}

func (r expenseRequest) input() service.ExpenseInput {
	return service.ExpenseInput{
		Description: r.Description,
		Amount:      r.Amount,
		PaidBy:      r.PaidBy,
		SharedBy:    r.SharedBy,
		ReceiptRef:  r.ReceiptRef,
	}
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	actor := middleware.GetUserID(r.Context())
	expense, err := s.bills.AddExpense(r.Context(), actor, chi.URLParam(r, "billID"), req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseJSON(expense))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	actor := middleware.GetUserID(r.Context())
	expense, err := s.bills.UpdateExpense(r.Context(), actor, chi.URLParam(r, "expenseID"), req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseJSON(expense))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUserID(r.Context())
	if err := s.bills.DeleteExpense(r.Context(), actor, chi.URLParam(r, "expenseID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
