package http

import "net/http"

type summaryResponse struct {
	IncomeTotal  float64 `json:"income_total"`
	ExpenseTotal float64 `json:"expense_total"`
	Balance      float64 `json:"balance"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	owner := userFromContext(r.Context())
	summary, err := s.ledger.GetSummary(r.Context(), owner.ID)
	if err != nil {
		storeError(w, r, err, "")
		return
	}
	respondJSON(w, http.StatusOK, summaryResponse{
		IncomeTotal:  summary.IncomeTotal,
		ExpenseTotal: summary.ExpenseTotal,
		Balance:      summary.IncomeTotal - summary.ExpenseTotal,
	})
}
