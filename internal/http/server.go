// Package http exposes the expense API over JSON.
package http

import (
	"fmt"
	"net/http"
	"time"

	"splitledger/internal/metrics"
	"splitledger/internal/services"
)

type Server struct {
	http.Server
	service   *services.ExpenseService
	processor *services.RecurringProcessor
}

// NewServer wires the API routes. Routes live under /api/split, matching the
// wire convention existing clients depend on.
func NewServer(addr string, service *services.ExpenseService, processor *services.RecurringProcessor) *Server {
	s := &Server{
		service:   service,
		processor: processor,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/split/expenses", s.handleExpenses)
	mux.HandleFunc("/api/split/expenses/", s.handleExpenseByID)
	mux.HandleFunc("/api/split/people", s.handlePeople)
	mux.HandleFunc("/api/split/balances", s.handleBalances)
	mux.HandleFunc("/api/split/settlements", s.handleSettlements)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", metrics.Handler())

	s.Addr = addr
	s.Handler = requestLogger(mux)
	s.ReadTimeout = 10 * time.Second
	s.WriteTimeout = 10 * time.Second
	s.IdleTimeout = 60 * time.Second
	s.MaxHeaderBytes = 1 << 16

	return s
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	w.WriteHeader(http.StatusMethodNotAllowed)
}
