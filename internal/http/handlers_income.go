package http

import (
	"net/http"

	"fintrack/internal/core"
)

type incomeRequest struct {
	Date  core.Date `json:"date"`
	Type  string    `json:"type"`
	Value float64   `json:"value"`
	Notes *string   `json:"notes"`
}

func (p incomeRequest) toIncome() core.Income {
	return core.Income{
		Date:  p.Date,
		Type:  p.Type,
		Value: p.Value,
		Notes: p.Notes,
	}
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	income := req.toIncome()
	if err := income.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	owner := userFromContext(r.Context())
	created, err := s.ledger.CreateIncome(r.Context(), owner.ID, income)
	if err != nil {
		storeError(w, r, err, "income not found")
		return
	}
	respondJSON(w, http.StatusOK, created)
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := parseSkipLimit(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	owner := userFromContext(r.Context())
	incomes, err := s.ledger.ListIncomes(r.Context(), owner.ID, skip, limit)
	if err != nil {
		storeError(w, r, err, "income not found")
		return
	}
	respondJSON(w, http.StatusOK, incomes)
}

func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	owner := userFromContext(r.Context())
	income, err := s.ledger.GetIncome(r.Context(), id, owner.ID)
	if err != nil {
		storeError(w, r, err, "income not found")
		return
	}
	respondJSON(w, http.StatusOK, income)
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req incomeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	income := req.toIncome()
	if err := income.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	owner := userFromContext(r.Context())
	updated, err := s.ledger.UpdateIncome(r.Context(), id, owner.ID, income)
	if err != nil {
		storeError(w, r, err, "income not found")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	owner := userFromContext(r.Context())
	if err := s.ledger.DeleteIncome(r.Context(), id, owner.ID); err != nil {
		storeError(w, r, err, "income not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
