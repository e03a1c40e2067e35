package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"bankingSystem/internal/banking"
	"bankingSystem/internal/metrics"
	"bankingSystem/internal/testutil"
	"bankingSystem/repository"
)

const secret = "http-test-secret"

type created struct {
	AccountID string          `json:"account_id"`
	Passcode  string          `json:"passcode"`
	Category  string          `json:"category"`
	Balance   decimal.Decimal `json:"balance"`
}

type receipt struct {
	Kind         string          `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	Balance      decimal.Decimal `json:"balance"`
	Counterparty string          `json:"counterparty"`
	Operator     string          `json:"operator"`
	Message      string          `json:"message"`
}

type harness struct {
	t     *testing.T
	srv   *httptest.Server
	store *repository.FileStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := testutil.TempFileStore(t)
	bank, err := banking.New(context.Background(), store)
	require.NoError(t, err)
	s := New(bank, secret, time.Minute, metrics.New(), nil)
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return &harness{t: t, srv: srv, store: store}
}

// do sends a JSON request, checks the status and decodes the response into out when non-nil.
func (h *harness) do(method, path string, body any, token string, wantCode int, out any) {
	h.t.Helper()
	resp, err := h.srv.Client().Do(testutil.JSONRequest(h.t, method, h.srv.URL+path, body, token))
	require.NoError(h.t, err)
	defer resp.Body.Close()
	require.Equal(h.t, wantCode, resp.StatusCode, "%s %s", method, path)
	if out != nil {
		require.NoError(h.t, json.NewDecoder(resp.Body).Decode(out))
	}
}

func (h *harness) create(category string) created {
	h.t.Helper()
	var c created
	h.do(http.MethodPost, "/v1/accounts", map[string]string{"category": category}, "", http.StatusCreated, &c)
	return c
}

func (h *harness) login(c created) string {
	h.t.Helper()
	var out struct {
		Token string `json:"token"`
	}
	h.do(http.MethodPost, "/v1/sessions", map[string]string{"account_id": c.AccountID, "passcode": c.Passcode}, "", http.StatusOK, &out)
	require.NotEmpty(h.t, out.Token)
	return out.Token
}

func TestAccountLifecycle(t *testing.T) {
	h := newHarness(t)

	alice := h.create("personal")
	require.Len(t, alice.AccountID, 5)
	require.Len(t, alice.Passcode, 4)
	require.Equal(t, "Personal", alice.Category)
	bob := h.create("Business")

	tok := h.login(alice)

	var rc receipt
	h.do(http.MethodPost, "/v1/account/deposit", map[string]any{"amount": 100}, tok, http.StatusOK, &rc)
	require.Equal(t, "Deposited Nu100.00. New balance: Nu100.00", rc.Message)

	h.do(http.MethodPost, "/v1/account/withdraw", map[string]any{"amount": "20.50"}, tok, http.StatusOK, &rc)
	require.True(t, rc.Balance.Equal(decimal.RequireFromString("79.5")))

	h.do(http.MethodPost, "/v1/account/transfer", map[string]any{"to": bob.AccountID, "amount": 25}, tok, http.StatusOK, &rc)
	require.Equal(t, "Transferred Nu25.00 to "+bob.AccountID, rc.Message)

	h.do(http.MethodPost, "/v1/account/recharge", map[string]any{"phone": "77123456", "amount": 10}, tok, http.StatusOK, &rc)
	require.Equal(t, "TashiCell", rc.Operator)
	require.Equal(t, "Topped up Nu10.00 to 77123456. Remaining balance: Nu44.50", rc.Message)

	var view struct {
		AccountID      string `json:"account_id"`
		Passcode       string `json:"passcode"`
		BalanceDisplay string `json:"balance_display"`
	}
	h.do(http.MethodGet, "/v1/account", nil, tok, http.StatusOK, &view)
	require.Equal(t, "Nu44.50", view.BalanceDisplay)
	require.Empty(t, view.Passcode, "passcode must not be echoed after creation")

	// Every mutation is on disk.
	raw, err := os.ReadFile(h.store.Path())
	require.NoError(t, err)
	require.Contains(t, string(raw), alice.AccountID+","+alice.Passcode+",Personal,44.50")
	require.Contains(t, string(raw), bob.AccountID+","+bob.Passcode+",Business,25.00")

	h.do(http.MethodDelete, "/v1/account", nil, tok, http.StatusNoContent, nil)
	// The session ends with the account.
	h.do(http.MethodGet, "/v1/account", nil, tok, http.StatusUnauthorized, nil)
	h.do(http.MethodPost, "/v1/sessions", map[string]string{"account_id": alice.AccountID, "passcode": alice.Passcode}, "", http.StatusUnauthorized, nil)
}

func TestErrorStatuses(t *testing.T) {
	h := newHarness(t)
	a := h.create("personal")
	tok := h.login(a)

	var e struct {
		Error string `json:"error"`
	}
	h.do(http.MethodPost, "/v1/accounts", map[string]string{"category": "savings"}, "", http.StatusBadRequest, &e)
	require.NotEmpty(t, e.Error)
	h.do(http.MethodPost, "/v1/sessions", map[string]string{"account_id": a.AccountID, "passcode": "nope"}, "", http.StatusUnauthorized, &e)
	require.Equal(t, "account ID or passcode is incorrect", e.Error)

	h.do(http.MethodPost, "/v1/account/deposit", map[string]any{"amount": -5}, tok, http.StatusBadRequest, nil)
	h.do(http.MethodPost, "/v1/account/deposit", map[string]any{"amount": "1.234"}, tok, http.StatusBadRequest, nil)
	h.do(http.MethodPost, "/v1/account/deposit", map[string]any{"amount": 5, "extra": true}, tok, http.StatusBadRequest, nil)
	h.do(http.MethodPost, "/v1/account/withdraw", map[string]any{"amount": 1}, tok, http.StatusConflict, nil)
	h.do(http.MethodPost, "/v1/account/transfer", map[string]any{"to": "00000", "amount": 1}, tok, http.StatusNotFound, nil)
	h.do(http.MethodPost, "/v1/account/transfer", map[string]any{"to": a.AccountID, "amount": 1}, tok, http.StatusBadRequest, nil)
	h.do(http.MethodPost, "/v1/account/transfer", map[string]any{"amount": 1}, tok, http.StatusBadRequest, nil)
	h.do(http.MethodPost, "/v1/account/recharge", map[string]any{"phone": "123456", "amount": 1}, tok, http.StatusBadRequest, nil)

	h.do(http.MethodGet, "/v1/account", nil, "", http.StatusUnauthorized, nil)
	h.do(http.MethodGet, "/v1/account", nil, "garbage", http.StatusUnauthorized, nil)
}

func TestLogoutRevokesToken(t *testing.T) {
	h := newHarness(t)
	a := h.create("business")
	tok := h.login(a)

	h.do(http.MethodGet, "/v1/account", nil, tok, http.StatusOK, nil)
	h.do(http.MethodDelete, "/v1/sessions", nil, tok, http.StatusNoContent, nil)
	h.do(http.MethodGet, "/v1/account", nil, tok, http.StatusUnauthorized, nil)

	// A fresh login works again.
	tok2 := h.login(a)
	h.do(http.MethodGet, "/v1/account", nil, tok2, http.StatusOK, nil)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)
	h.create("personal")

	resp, err := h.srv.Client().Get(h.srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, err = h.srv.Client().Get(h.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	buf := new(strings.Builder)
	_, err = io.Copy(buf, resp.Body)
	require.NoError(t, err)
	require.Contains(t, buf.String(), `http_requests_total{method="POST",route="/v1/accounts",status="201"} 1`)
}
