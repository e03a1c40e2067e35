package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ReceiptKind names the operation a Receipt confirms.
type ReceiptKind string

const (
	KindDeposit  ReceiptKind = "deposit"
	KindWithdraw ReceiptKind = "withdraw"
	KindTransfer ReceiptKind = "transfer"
	KindRecharge ReceiptKind = "recharge"
)

// Receipt confirms a completed balance operation.
// Counterparty is the recipient account id for transfers and the phone number for recharges.
type Receipt struct {
	Kind         ReceiptKind     `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	Balance      decimal.Decimal `json:"balance"`
	Counterparty string          `json:"counterparty,omitempty"`
	Operator     string          `json:"operator,omitempty"`
}

// FormatNu renders an amount the way receipts and balances are shown, e.g. "Nu12.50".
func FormatNu(d decimal.Decimal) string {
	return "Nu" + d.StringFixed(2)
}

func (r Receipt) String() string {
	switch r.Kind {
	case KindDeposit:
		return fmt.Sprintf("Deposited %s. New balance: %s", FormatNu(r.Amount), FormatNu(r.Balance))
	case KindWithdraw:
		return fmt.Sprintf("Withdrew %s. New balance: %s", FormatNu(r.Amount), FormatNu(r.Balance))
	case KindTransfer:
		return fmt.Sprintf("Transferred %s to %s", FormatNu(r.Amount), r.Counterparty)
	case KindRecharge:
		return fmt.Sprintf("Topped up %s to %s. Remaining balance: %s", FormatNu(r.Amount), r.Counterparty, FormatNu(r.Balance))
	default:
		return fmt.Sprintf("%s %s. Balance: %s", r.Kind, FormatNu(r.Amount), FormatNu(r.Balance))
	}
}
