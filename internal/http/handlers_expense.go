package http

import (
	"net/http"

	"fintrack/internal/core"
)

type expenseRequest struct {
	Date               core.Date  `json:"date"`
	Value              float64    `json:"value"`
	Type               string     `json:"type"`
	IsInstallment      bool       `json:"is_installment"`
	InstallmentCount   *int64     `json:"installment_count"`
	InstallmentValue   *float64   `json:"installment_value"`
	IsRecurring        bool       `json:"is_recurring"`
	RecurringStartDate *core.Date `json:"recurring_start_date"`
	Notes              *string    `json:"notes"`
}

func (p expenseRequest) toExpense() core.Expense {
	return core.Expense{
		Date:               p.Date,
		Value:              p.Value,
		Type:               p.Type,
		IsInstallment:      p.IsInstallment,
		InstallmentCount:   p.InstallmentCount,
		InstallmentValue:   p.InstallmentValue,
		IsRecurring:        p.IsRecurring,
		RecurringStartDate: p.RecurringStartDate,
		Notes:              p.Notes,
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	expense := req.toExpense()
	if err := expense.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	owner := userFromContext(r.Context())
	created, err := s.ledger.CreateExpense(r.Context(), owner.ID, expense)
	if err != nil {
		storeError(w, r, err, "expense not found")
		return
	}
	respondJSON(w, http.StatusOK, created)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := parseSkipLimit(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	owner := userFromContext(r.Context())
	expenses, err := s.ledger.ListExpenses(r.Context(), owner.ID, skip, limit)
	if err != nil {
		storeError(w, r, err, "expense not found")
		return
	}
	respondJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	owner := userFromContext(r.Context())
	expense, err := s.ledger.GetExpense(r.Context(), id, owner.ID)
	if err != nil {
		storeError(w, r, err, "expense not found")
		return
	}
	respondJSON(w, http.StatusOK, expense)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	expense := req.toExpense()
	if err := expense.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	owner := userFromContext(r.Context())
	updated, err := s.ledger.UpdateExpense(r.Context(), id, owner.ID, expense)
	if err != nil {
		storeError(w, r, err, "expense not found")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	owner := userFromContext(r.Context())
	if err := s.ledger.DeleteExpense(r.Context(), id, owner.ID); err != nil {
		storeError(w, r, err, "expense not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
