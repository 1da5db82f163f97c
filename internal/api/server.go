// Package api exposes the ledger services over a JSON HTTP API.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/splitledger/splitledger/internal/auth"
	"github.com/splitledger/splitledger/internal/middleware"
	"github.com/splitledger/splitledger/internal/service"
)

// Server is the splitledger HTTP API server.
type Server struct {
	bills          *service.BillService
	settlements    *service.SettlementService
	summaries      *service.SummaryService
	jwt            *auth.JWTManager
	metricsEnabled bool
}

// NewServer creates a new API server over the given services.
func NewServer(bills *service.BillService, settlements *service.SettlementService, summaries *service.SummaryService, jwt *auth.JWTManager) *Server {
	return &Server{
		bills:       bills,
		settlements: settlements,
		summaries:   summaries,
		jwt:         jwt,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.Metrics)
	r.Use(middleware.RequestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RequireAuth(s.jwt))

		r.Get("/bills", s.handleListBills)
		r.Post("/bills", s.handleCreateBill)
		r.Get("/bills/{billID}", s.handleBillDetail)
		r.Delete("/bills/{billID}", s.handleDeleteBill)
		r.Put("/bills/{billID}/settled", s.handleSetSettled)

		r.Post("/bills/{billID}/expenses", s.handleAddExpense)
		r.Put("/expenses/{expenseID}", s.handleUpdateExpense)
		r.Delete("/expenses/{expenseID}", s.handleDeleteExpense)

		r.Post("/bills/{billID}/settlements", s.handleProposeSettlement)
		r.Post("/settlements/{settlementID}/confirm", s.handleConfirmSettlement)
		r.Post("/settlements/{settlementID}/reject", s.handleRejectSettlement)

		r.Get("/summary", s.handleUserSummary)
	})

	return r
}
