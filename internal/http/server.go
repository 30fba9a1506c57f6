// Package http exposes the JSON API: user registration, OAuth2 password-grant
// token issuing, and owner-scoped CRUD for income and expense records.
package http

import (
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

// Server wraps http.Server with the application routes wired in.
type Server struct {
	http.Server
	ledger *services.Ledger
	tokens *auth.TokenService
}

// NewServer builds the route table and returns a server listening on addr.
func NewServer(addr string, ledger *services.Ledger, tokens *auth.TokenService, allowedOrigins []string) *Server {
	s := &Server{
		ledger: ledger,
		tokens: tokens,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /users/register", s.handleRegister)
	mux.HandleFunc("POST /token", s.handleToken)
	mux.HandleFunc("GET /users/me", s.requireUser(s.handleMe))

	mux.HandleFunc("POST /incomes", s.requireUser(s.handleCreateIncome))
	mux.HandleFunc("GET /incomes", s.requireUser(s.handleListIncomes))
	mux.HandleFunc("GET /incomes/{id}", s.requireUser(s.handleGetIncome))
	mux.HandleFunc("PUT /incomes/{id}", s.requireUser(s.handleUpdateIncome))
	mux.HandleFunc("DELETE /incomes/{id}", s.requireUser(s.handleDeleteIncome))

	mux.HandleFunc("POST /expenses", s.requireUser(s.handleCreateExpense))
	mux.HandleFunc("GET /expenses", s.requireUser(s.handleListExpenses))
	mux.HandleFunc("GET /expenses/{id}", s.requireUser(s.handleGetExpense))
	mux.HandleFunc("PUT /expenses/{id}", s.requireUser(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /expenses/{id}", s.requireUser(s.handleDeleteExpense))

	mux.HandleFunc("GET /summary", s.requireUser(s.handleSummary))

	s.Server = http.Server{
		Addr:    addr,
		Handler: trace.Middleware(corsMiddleware(allowedOrigins)(mux)),
	}

	return s
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "fintrack API"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
