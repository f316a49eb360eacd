package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/msallal/yawmia/internal/repository/memory"
	"github.com/msallal/yawmia/internal/server/handlers"
	accountssvc "github.com/msallal/yawmia/internal/service/accounts"
	authsvc "github.com/msallal/yawmia/internal/service/auth"
	"github.com/msallal/yawmia/internal/service/authz"
	ledgersvc "github.com/msallal/yawmia/internal/service/ledger"
	reportingsvc "github.com/msallal/yawmia/internal/service/reporting"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	store := memory.New()
	guard := authz.NewGuard(store)
	authSvc := authsvc.NewService(store, "test-secret", time.Hour, nil)
	ledgerSvc := ledgersvc.NewService(store, guard, nil)
	reportingSvc := reportingsvc.NewService(store, guard, nil)
	accountsSvc := accountssvc.NewService(store, guard, nil, nil)

	return New(
		handlers.NewAuthHandler(authSvc, nil),
		handlers.NewProfileHandler(accountsSvc, nil),
		handlers.NewLedgerHandler(ledgerSvc, nil),
		handlers.NewAdminHandler(accountsSvc, reportingSvc, nil),
		authSvc,
		nil,
	)
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
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
	engine.ServeHTTP(rec, req)
	return rec
}

func signUp(t *testing.T, engine *gin.Engine, email, username string) string {
	t.Helper()

	rec := doJSON(t, engine, http.MethodPost, "/auth/register", "", gin.H{"email": email, "password": "secret1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, engine, http.MethodPost, "/auth/login", "", gin.H{"email": email, "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	rec = doJSON(t, engine, http.MethodPost, "/api/profile", login.Token, gin.H{"username": username})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	return login.Token
}

func TestHealthz(t *testing.T) {
	engine := newTestRouter(t)

	rec := doJSON(t, engine, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	engine := newTestRouter(t)

	rec := doJSON(t, engine, http.MethodGet, "/api/entries", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, engine, http.MethodGet, "/api/entries", "bogus-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEntryFlowOverHTTP(t *testing.T) {
	engine := newTestRouter(t)

	adminToken := signUp(t, engine, "boss@example.com", "boss")
	workerToken := signUp(t, engine, "sara@example.com", "sara")

	rec := doJSON(t, engine, http.MethodPut, "/api/entries", workerToken, gin.H{
		"date":           "2024-03-05",
		"cash_amount":    100,
		"network_amount": 50,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, engine, http.MethodGet, "/api/entries?year=2024&month=3", workerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []struct {
		Date  string  `json:"date"`
		Total float64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	require.Equal(t, 150.0, entries[0].Total)

	// The first registered account is the admin; reports work for it.
	rec = doJSON(t, engine, http.MethodGet, "/api/admin/reports/aggregate?year=2024&month=3", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// A later account is not.
	rec = doJSON(t, engine, http.MethodGet, "/api/admin/reports/aggregate?year=2024&month=3", workerToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdvanceTotalOverHTTP(t *testing.T) {
	engine := newTestRouter(t)

	token := signUp(t, engine, "boss@example.com", "boss")

	rec := doJSON(t, engine, http.MethodPut, "/api/entries", token, gin.H{
		"date":           "2024-03-06",
		"advance_amount": 20,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, engine, http.MethodGet, "/api/advances/2024-03", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		YearMonth     string  `json:"year_month"`
		TotalAdvances float64 `json:"total_advances"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "2024-03", resp.YearMonth)
	require.Equal(t, 20.0, resp.TotalAdvances)
}

func TestResetConfirmationOverHTTP(t *testing.T) {
	engine := newTestRouter(t)

	adminToken := signUp(t, engine, "boss@example.com", "boss")

	rec := doJSON(t, engine, http.MethodPost, "/api/admin/reset/data", adminToken, gin.H{"confirmation_text": "nope"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, engine, http.MethodPost, "/api/admin/reset/data", adminToken, gin.H{"confirmation_text": accountssvc.DataResetConfirmation})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.Message)
}
