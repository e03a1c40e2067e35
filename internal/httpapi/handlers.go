package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bankingSystem/internal/auth"
	"bankingSystem/internal/logger"
	"bankingSystem/models"
)

type accountView struct {
	AccountID      string          `json:"account_id"`
	Passcode       string          `json:"passcode,omitempty"`
	Category       models.Category `json:"category"`
	Balance        decimal.Decimal `json:"balance"`
	BalanceDisplay string          `json:"balance_display"`
}

func toView(a models.Account) accountView {
	return accountView{
		AccountID:      a.ID,
		Category:       a.Category,
		Balance:        a.Balance,
		BalanceDisplay: models.FormatNu(a.Balance),
	}
}

type receiptView struct {
	models.Receipt
	Message string `json:"message"`
}

func toReceiptView(r models.Receipt) receiptView {
	return receiptView{Receipt: r, Message: r.String()}
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// createAccount handles POST /v1/accounts. The passcode is only ever returned here.
func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if err := decode(r, &req); err != nil {
		writeErr(w, err, http.StatusBadRequest)
		return
	}
	cat, err := models.ParseCategory(req.Category)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	a, err := s.Bank.CreateAccount(r.Context(), cat)
	if err != nil {
		logger.From(r.Context(), s.Log).Error("create account", zap.Error(err))
		writeDomainErr(w, err)
		return
	}
	v := toView(a)
	v.Passcode = a.Passcode
	writeJSON(w, http.StatusCreated, v)
}

// login handles POST /v1/sessions.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID string `json:"account_id"`
		Passcode  string `json:"passcode"`
	}
	if err := decode(r, &req); err != nil {
		writeErr(w, err, http.StatusBadRequest)
		return
	}
	a, err := s.Bank.Login(r.Context(), req.AccountID, req.Passcode)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	tok, p, err := s.Issuer.Issue(a)
	if err != nil {
		logger.From(r.Context(), s.Log).Error("issue session", zap.Error(err))
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Token     string      `json:"token"`
		ExpiresAt time.Time   `json:"expires_at"`
		Account   accountView `json:"account"`
	}{tok, p.ExpiresAt, toView(a)})
}

// logout handles DELETE /v1/sessions.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	p, err := auth.RequirePrincipal(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	s.Revocations.Revoke(p)
	w.WriteHeader(http.StatusNoContent)
}

// getAccount handles GET /v1/account.
func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	p, err := auth.RequirePrincipal(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	a, err := s.Bank.Account(p.AccountID)
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toView(a))
}

// deleteAccount handles DELETE /v1/account and ends the session.
func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	p, err := auth.RequirePrincipal(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	if err := s.Bank.DeleteAccount(r.Context(), p.AccountID); err != nil {
		writeDomainErr(w, err)
		return
	}
	s.Revocations.Revoke(p)
	w.WriteHeader(http.StatusNoContent)
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	p, err := auth.RequirePrincipal(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	var req amountRequest
	if err := decode(r, &req); err != nil {
		writeErr(w, err, http.StatusBadRequest)
		return
	}
	s.writeReceipt(w, r, func() (models.Receipt, error) {
		return s.Bank.Deposit(r.Context(), p.AccountID, req.Amount)
	})
}

func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	p, err := auth.RequirePrincipal(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	var req amountRequest
	if err := decode(r, &req); err != nil {
		writeErr(w, err, http.StatusBadRequest)
		return
	}
	s.writeReceipt(w, r, func() (models.Receipt, error) {
		return s.Bank.Withdraw(r.Context(), p.AccountID, req.Amount)
	})
}

func (s *Server) transfer(w http.ResponseWriter, r *http.Request) {
	p, err := auth.RequirePrincipal(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	var req struct {
		To     string          `json:"to"`
		Amount decimal.Decimal `json:"amount"`
	}
	if err := decode(r, &req); err != nil {
		writeErr(w, err, http.StatusBadRequest)
		return
	}
	if req.To == "" {
		writeErr(w, errors.New("to is required"), http.StatusBadRequest)
		return
	}
	s.writeReceipt(w, r, func() (models.Receipt, error) {
		return s.Bank.Transfer(r.Context(), p.AccountID, req.To, req.Amount)
	})
}

func (s *Server) recharge(w http.ResponseWriter, r *http.Request) {
	p, err := auth.RequirePrincipal(r.Context())
	if err != nil {
		writeDomainErr(w, err)
		return
	}
	var req struct {
		Phone  string          `json:"phone"`
		Amount decimal.Decimal `json:"amount"`
	}
	if err := decode(r, &req); err != nil {
		writeErr(w, err, http.StatusBadRequest)
		return
	}
	s.writeReceipt(w, r, func() (models.Receipt, error) {
		return s.Bank.Recharge(r.Context(), p.AccountID, req.Phone, req.Amount)
	})
}

func (s *Server) writeReceipt(w http.ResponseWriter, r *http.Request, op func() (models.Receipt, error)) {
	rc, err := op()
	if err != nil {
		if errorStatus(err) == http.StatusInternalServerError {
			logger.From(r.Context(), s.Log).Error("balance operation", zap.Error(err))
		}
		writeDomainErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReceiptView(rc))
}
