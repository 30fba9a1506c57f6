package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	repo, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	ledger := services.NewLedger(repo, nil)
	tokens := auth.NewTokenService("test-secret", time.Hour)
	return NewServer("127.0.0.1:0", ledger, tokens, []string{"http://localhost:5173"})
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func doForm(t *testing.T, srv *Server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func detailOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[errorDetail](t, rec).Detail
}

// register creates an account and returns a valid bearer token for it.
func register(t *testing.T, srv *Server, email, password string) string {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPost, "/users/register", "", registerRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doForm(t, srv, "/token", url.Values{"username": {email}, "password": {password}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody[tokenResponse](t, rec).AccessToken
}

func mustDate(t *testing.T, s string) core.Date {
	t.Helper()
	d, err := core.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestRegisterAndLogin(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/users/register", "", registerRequest{Email: "mario@example.com", Password: "segreto"})
	require.Equal(t, http.StatusOK, rec.Code)

	user := decodeBody[core.User](t, rec)
	assert.Equal(t, "mario@example.com", user.Email)
	assert.NotZero(t, user.ID)
	assert.NotContains(t, rec.Body.String(), "hashed_password")

	rec = doForm(t, srv, "/token", url.Values{"username": {"mario@example.com"}, "password": {"segreto"}})
	require.Equal(t, http.StatusOK, rec.Code)

	token := decodeBody[tokenResponse](t, rec)
	assert.Equal(t, "bearer", token.TokenType)
	assert.NotEmpty(t, token.AccessToken)

	// The issued token must authenticate the account it was issued for.
	rec = doJSON(t, srv, http.MethodGet, "/users/me", token.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mario@example.com", decodeBody[core.User](t, rec).Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "mario@example.com", "segreto")

	rec := doJSON(t, srv, http.MethodPost, "/users/register", "", registerRequest{Email: "mario@example.com", Password: "altro"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email already registered", detailOf(t, rec))
}

func TestRegisterRejectsEmptyFields(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/users/register", "", registerRequest{Password: "segreto"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/users/register", "", registerRequest{Email: "mario@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "mario@example.com", "segreto")

	for _, form := range []url.Values{
		{"username": {"mario@example.com"}, "password": {"sbagliata"}},
		{"username": {"nessuno@example.com"}, "password": {"segreto"}},
	} {
		rec := doForm(t, srv, "/token", form)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
		assert.Equal(t, "incorrect email or password", detailOf(t, rec))
	}
}

func TestMe(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "mario@example.com", "segreto")

	rec := doJSON(t, srv, http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mario@example.com", decodeBody[core.User](t, rec).Email)
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)
	register(t, srv, "mario@example.com", "segreto")
	other := auth.NewTokenService("other-secret", time.Hour)
	forged, err := other.Issue("mario@example.com")
	require.NoError(t, err)

	cases := map[string]string{
		"no header":     "",
		"garbage token": "not-a-jwt",
		"wrong secret":  forged,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodGet, "/incomes", token, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			assert.Equal(t, "could not validate credentials", detailOf(t, rec))
		})
	}
}

func TestAuthStorageFailure(t *testing.T) {
	repo, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	ledger := services.NewLedger(repo, nil)
	tokens := auth.NewTokenService("test-secret", time.Hour)
	srv := NewServer("127.0.0.1:0", ledger, tokens, []string{"http://localhost:5173"})

	token, err := tokens.Issue("mario@example.com")
	require.NoError(t, err)

	// A database outage during the user lookup is an internal error, not a
	// credential problem.
	require.NoError(t, repo.Close())

	rec := doJSON(t, srv, http.MethodGet, "/incomes", token, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", detailOf(t, rec))
}

func TestIncomeCRUD(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "mario@example.com", "segreto")

	notes := "tredicesima"
	rec := doJSON(t, srv, http.MethodPost, "/incomes", token, incomeRequest{
		Date:  mustDate(t, "2024-01-01"),
		Type:  "Salário",
		Value: 1000,
		Notes: &notes,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	created := decodeBody[core.Income](t, rec)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Salário", created.Type)
	require.NotNil(t, created.Notes)
	assert.Equal(t, "tredicesima", *created.Notes)

	path := fmt.Sprintf("/incomes/%d", created.ID)

	rec = doJSON(t, srv, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decodeBody[core.Income](t, rec).ID)

	rec = doJSON(t, srv, http.MethodPut, path, token, incomeRequest{
		Date:  mustDate(t, "2024-02-01"),
		Type:  "Freelance",
		Value: 500,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	updated := decodeBody[core.Income](t, rec)
	assert.Equal(t, "Freelance", updated.Type)
	assert.Nil(t, updated.Notes)

	rec = doJSON(t, srv, http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "income not found", detailOf(t, rec))
}

func TestIncomeValidation(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "mario@example.com", "segreto")

	rec := doJSON(t, srv, http.MethodPost, "/incomes", token, incomeRequest{
		Date:  mustDate(t, "2024-01-01"),
		Type:  "Salário",
		Value: 0,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/incomes", token, incomeRequest{
		Date:  mustDate(t, "2024-01-01"),
		Value: 100,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIncomePagination(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "mario@example.com", "segreto")

	for i := 0; i < 5; i++ {
		rec := doJSON(t, srv, http.MethodPost, "/incomes", token, incomeRequest{
			Date:  mustDate(t, "2024-01-01"),
			Type:  fmt.Sprintf("tipo-%d", i),
			Value: 100,
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, srv, http.MethodGet, "/incomes?skip=2&limit=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	page := decodeBody[[]core.Income](t, rec)
	require.Len(t, page, 2)
	assert.Equal(t, "tipo-2", page[0].Type)
	assert.Equal(t, "tipo-3", page[1].Type)

	rec = doJSON(t, srv, http.MethodGet, "/incomes?skip=-1", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/incomes?limit=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRecordsAreOwnerScoped(t *testing.T) {
	srv := newTestServer(t)
	mario := register(t, srv, "mario@example.com", "segreto")
	luigi := register(t, srv, "luigi@example.com", "segreto")

	rec := doJSON(t, srv, http.MethodPost, "/incomes", mario, incomeRequest{
		Date:  mustDate(t, "2024-01-01"),
		Type:  "Salário",
		Value: 1000,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	path := fmt.Sprintf("/incomes/%d", decodeBody[core.Income](t, rec).ID)

	rec = doJSON(t, srv, http.MethodGet, path, luigi, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "income not found", detailOf(t, rec))

	rec = doJSON(t, srv, http.MethodDelete, path, luigi, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/incomes", luigi, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[[]core.Income](t, rec))

	// mario still sees his record
	rec = doJSON(t, srv, http.MethodGet, path, mario, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExpenseRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "mario@example.com", "segreto")

	count := int64(12)
	perMonth := 100.0
	start := mustDate(t, "2024-03-01")
	rec := doJSON(t, srv, http.MethodPost, "/expenses", token, expenseRequest{
		Date:               mustDate(t, "2024-03-15"),
		Value:              1200,
		Type:               "Eletrônicos",
		IsInstallment:      true,
		InstallmentCount:   &count,
		InstallmentValue:   &perMonth,
		IsRecurring:        true,
		RecurringStartDate: &start,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	created := decodeBody[core.Expense](t, rec)
	assert.True(t, created.IsInstallment)
	require.NotNil(t, created.InstallmentCount)
	assert.Equal(t, int64(12), *created.InstallmentCount)
	require.NotNil(t, created.RecurringStartDate)
	assert.Equal(t, "2024-03-01", created.RecurringStartDate.String())

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/expenses/%d", created.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := decodeBody[core.Expense](t, rec)
	assert.Equal(t, created, fetched)
}

func TestExpenseNotFoundDetail(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "mario@example.com", "segreto")

	rec := doJSON(t, srv, http.MethodGet, "/expenses/9999", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "expense not found", detailOf(t, rec))
}

func TestSummary(t *testing.T) {
	srv := newTestServer(t)
	token := register(t, srv, "mario@example.com", "segreto")

	rec := doJSON(t, srv, http.MethodPost, "/incomes", token, incomeRequest{
		Date: mustDate(t, "2024-01-01"), Type: "Salário", Value: 1500,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, srv, http.MethodPost, "/expenses", token, expenseRequest{
		Date: mustDate(t, "2024-01-05"), Type: "Mercado", Value: 400,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/summary", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	summary := decodeBody[summaryResponse](t, rec)
	assert.Equal(t, 1500.0, summary.IncomeTotal)
	assert.Equal(t, 400.0, summary.ExpenseTotal)
	assert.Equal(t, 1100.0, summary.Balance)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/incomes", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
