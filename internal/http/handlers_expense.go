package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"splitledger/internal/core"
	"splitledger/internal/metrics"
)

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listExpenses(w, r)
	case http.MethodPost:
		s.createExpense(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	// Reading the full collection is one of the recurrence engine's two
	// triggers: occurrences due today are materialized before listing.
	if _, err := s.processor.ProcessDueExpenses(r.Context(), time.Now()); err != nil {
		slog.ErrorContext(r.Context(), "Recurring expense processing failed", "error", err)
	}

	expenses, err := s.service.ListExpenses(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]any{"expenses": expenses})
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	draft, err := decodeDraft(r)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	expense, err := s.service.CreateExpense(r.Context(), draft)
	if err != nil {
		respondError(w, r, err)
		return
	}

	metrics.ExpensesCreated.Inc()
	slog.InfoContext(r.Context(), "Expense created",
		"id", expense.ID,
		"description", expense.Description,
		"amount", expense.Amount,
		"paid_by", expense.PaidBy)
	respondSuccess(w, http.StatusCreated, map[string]any{"expense": expense})
}

func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	// The identifier format is checked before any store access; a malformed
	// ID is a client error distinct from "not found".
	id, err := parseExpenseID(r.URL.Path)
	if err != nil {
		respondError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.getExpense(w, r, id)
	case http.MethodPut:
		s.updateExpense(w, r, id)
	case http.MethodDelete:
		s.deleteExpense(w, r, id)
	default:
		methodNotAllowed(w, "GET, PUT, DELETE")
	}
}

func (s *Server) getExpense(w http.ResponseWriter, r *http.Request, id int64) {
	expense, err := s.service.GetExpense(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]any{"expense": expense})
}

func (s *Server) updateExpense(w http.ResponseWriter, r *http.Request, id int64) {
	draft, err := decodeDraft(r)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	expense, err := s.service.UpdateExpense(r.Context(), id, draft)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]any{"expense": expense})
}

func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request, id int64) {
	if err := s.service.DeleteExpense(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}

	metrics.ExpensesDeleted.Inc()
	respondSuccess(w, http.StatusOK, map[string]any{"message": "Expense deleted successfully"})
}

func decodeDraft(r *http.Request) (core.Draft, error) {
	defer r.Body.Close()

	var draft core.Draft
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&draft); err != nil {
		return core.Draft{}, err
	}
	return draft, nil
}

// parseExpenseID extracts and validates the identifier path segment.
func parseExpenseID(path string) (int64, error) {
	raw := strings.TrimPrefix(path, "/api/split/expenses/")
	if raw == "" || strings.Contains(raw, "/") {
		return 0, core.ErrInvalidID
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, core.ErrInvalidID
	}
	return id, nil
}
