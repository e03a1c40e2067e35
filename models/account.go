package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"bankingSystem/internal/mobile"
)

// Category distinguishes personal from business accounts.
type Category string

const (
	CategoryPersonal Category = "Personal"
	CategoryBusiness Category = "Business"
)

// ParseCategory accepts "personal" or "business" in any case.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "personal":
		return CategoryPersonal, nil
	case "business":
		return CategoryBusiness, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
}

// CategoryFromStored maps a persisted category name. Anything that is not
// "Personal" is treated as a business account, which keeps old files loadable.
func CategoryFromStored(s string) Category {
	if s == string(CategoryPersonal) {
		return CategoryPersonal
	}
	return CategoryBusiness
}

// Account is a single bank account. Balance is in Ngultrum and never negative.
// Passcode is fixed at creation; no operation here changes it.
type Account struct {
	ID       string          `db:"id" json:"account_id"`
	Passcode string          `db:"passcode" json:"-"`
	Category Category        `db:"category" json:"category"`
	Balance  decimal.Decimal `db:"balance" json:"balance"`
}

// ValidateAmount reports whether amount is strictly positive with at most two
// decimal places.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return ErrInvalidAmount
	}
	return nil
}

// Deposit adds amount to the balance.
func (a *Account) Deposit(amount decimal.Decimal) (Receipt, error) {
	if err := ValidateAmount(amount); err != nil {
		return Receipt{}, err
	}
	a.Balance = a.Balance.Add(amount)
	return Receipt{Kind: KindDeposit, Amount: amount, Balance: a.Balance}, nil
}

// Withdraw removes amount from the balance. The balance may reach zero but not go below.
func (a *Account) Withdraw(amount decimal.Decimal) (Receipt, error) {
	if err := ValidateAmount(amount); err != nil {
		return Receipt{}, err
	}
	if a.Balance.LessThan(amount) {
		return Receipt{}, ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(amount)
	return Receipt{Kind: KindWithdraw, Amount: amount, Balance: a.Balance}, nil
}

// Transfer moves amount to recipient. All checks run before either balance changes.
func (a *Account) Transfer(amount decimal.Decimal, recipient *Account) (Receipt, error) {
	if recipient == nil {
		return Receipt{}, ErrRecipientNotFound
	}
	if recipient.ID == a.ID {
		return Receipt{}, ErrSameAccount
	}
	if err := ValidateAmount(amount); err != nil {
		return Receipt{}, err
	}
	if a.Balance.LessThan(amount) {
		return Receipt{}, ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(amount)
	recipient.Balance = recipient.Balance.Add(amount)
	return Receipt{Kind: KindTransfer, Amount: amount, Balance: a.Balance, Counterparty: recipient.ID}, nil
}

// Recharge tops up a Bhutanese mobile number, paid from this account.
func (a *Account) Recharge(amount decimal.Decimal, phone string) (Receipt, error) {
	n, err := mobile.Parse(phone)
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %v", ErrInvalidPhoneNumber, err)
	}
	if _, err := a.Withdraw(amount); err != nil {
		return Receipt{}, err
	}
	return Receipt{
		Kind:         KindRecharge,
		Amount:       amount,
		Balance:      a.Balance,
		Counterparty: n.String(),
		Operator:     n.Operator(),
	}, nil
}
