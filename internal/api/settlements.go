package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/splitledger/splitledger/internal/middleware"
)

type proposeSettlementRequest struct {
	ToUser string          `json:"to_user"`
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes"`
}

func (s *Server) handleProposeSettlement(w http.ResponseWriter, r *http.Request) {
	var req proposeSettlementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	actor := middleware.GetUserID(r.Context())
	settlement, err := s.settlements.Propose(r.Context(), actor, chi.URLParam(r, "billID"), req.ToUser, req.Amount, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSettlementJSON(settlement))
}

func (s *Server) handleConfirmSettlement(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUserID(r.Context())
	res, err := s.settlements.Confirm(r.Context(), actor, chi.URLParam(r, "settlementID"))
	if err != nil {
		writeError(w, err)
		return
	}

	body := map[string]any{"settlement": toSettlementJSON(res.Settlement)}
	if res.AlreadyConfirmed {
		body["warning"] = "settlement was already confirmed"
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleRejectSettlement(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUserID(r.Context())
	if err := s.settlements.Reject(r.Context(), actor, chi.URLParam(r, "settlementID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
