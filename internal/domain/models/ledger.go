package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryType string

const (
	EntryCredit EntryType = "credit"
	EntryDebit  EntryType = "debit"
)

// LedgerEntry is one wallet movement. Rows are only ever inserted.
type LedgerEntry struct {
	ID          string          `db:"id" json:"id"`
	UserID      string          `db:"user_id" json:"userId"`
	Type        EntryType       `db:"type" json:"type"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Description string          `db:"description" json:"description"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}

// Signed returns the entry's effect on the balance.
func (e LedgerEntry) Signed() decimal.Decimal {
	if e.Type == EntryDebit {
		return e.Amount.Neg()
	}
	return e.Amount
}

// Reconciliation compares a stored balance with the ledger sum.
type Reconciliation struct {
	UserID    string          `json:"userId"`
	Balance   decimal.Decimal `json:"balance"`
	LedgerSum decimal.Decimal `json:"ledgerSum"`
	Entries   int             `json:"entries"`
	Balanced  bool            `json:"balanced"`
}
