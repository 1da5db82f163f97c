package api

import (
	"net/http"

	"github.com/splitledger/splitledger/internal/middleware"
)

func (s *Server) handleUserSummary(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetUserID(r.Context())
	summary, err := s.summaries.UserSummary(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryJSON(summary))
}
