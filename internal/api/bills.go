package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitledger/splitledger/internal/middleware"
	"github.com/splitledger/splitledger/internal/service"
)

type createBillRequest struct {
	EventID     string `json:"event_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	actor := middleware.GetUserID(r.Context())
	bill, err := s.bills.CreateBill(r.Context(), actor, req.EventID, req.Title, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBillJSON(bill))
}

func (s *Server) handleBillDetail(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUserID(r.Context())
	detail, err := s.bills.BillDetail(r.Context(), actor, chi.URLParam(r, "billID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillDetailJSON(detail))
}

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	filter := service.BillFilter{EventID: r.URL.Query().Get("event_id")}
	switch r.URL.Query().Get("settled") {
	case "true":
		settled := true
		filter.Settled = &settled
	case "false":
		settled := false
		filter.Settled = &settled
	}

	actor := middleware.GetUserID(r.Context())
	entries, err := s.bills.ListBills(r.Context(), actor, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]billListEntryJSON, 0, len(entries))
	for _, e := range entries {
		out = append(out, billListEntryJSON{
			Bill:         toBillJSON(e.Bill),
			ExpenseCount: e.ExpenseCount,
			UserBalance:  e.UserBalance,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"bills": out})
}

type setSettledRequest struct {
	Settled bool `json:"settled"`
}

func (s *Server) handleSetSettled(w http.ResponseWriter, r *http.Request) {
	var req setSettledRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	actor := middleware.GetUserID(r.Context())
	bill, err := s.bills.SetSettled(r.Context(), actor, chi.URLParam(r, "billID"), req.Settled)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillJSON(bill))
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUserID(r.Context())
	if err := s.bills.DeleteBill(r.Context(), actor, chi.URLParam(r, "billID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
