package services

import (
	"context"

	"neelosewa/internal/domain"
	"neelosewa/internal/domain/models"
	"neelosewa/internal/repositories"
	"neelosewa/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const topUpDescription = "Wallet Top-up"

// WalletService is the only writer of wallet balances. Every balance change
// is stored together with exactly one ledger entry in the same transaction.
type WalletService struct {
	Store repositories.Store
	Now   clock
	NewID idSource
}

func (s WalletService) Credit(ctx context.Context, userID string, amount decimal.Decimal, description string) (decimal.Decimal, error) {
	return s.move(ctx, userID, models.EntryCredit, amount, description)
}

func (s WalletService) Debit(ctx context.Context, userID string, amount decimal.Decimal, description string) (decimal.Decimal, error) {
	return s.move(ctx, userID, models.EntryDebit, amount, description)
}

// TopUp credits a simulated payment.
func (s WalletService) TopUp(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	bal, err := s.Credit(ctx, userID, amount, topUpDescription)
	if err == nil {
		utils.LogEvent(utils.RequestIDFrom(ctx), "wallet", "top_up", "user_id="+userID+" amount="+utils.FormatMoney(amount))
	}
	return bal, err
}

func (s WalletService) move(ctx context.Context, userID string, typ models.EntryType, amount decimal.Decimal, description string) (decimal.Decimal, error) {
	if err := requireID("userId", userID); err != nil {
		return decimal.Zero, err
	}
	if err := checkAmount(amount); err != nil {
		return decimal.Zero, err
	}
	var balance decimal.Decimal
	err := s.Store.WithinTx(ctx, func(tx repositories.Tx) error {
		user, err := tx.Users().GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		balance, err = s.post(ctx, tx, user, typ, amount, description)
		return err
	})
	if err != nil {
		return decimal.Zero, internalErr(ctx, "wallet "+string(typ), logrus.Fields{"user_id": userID, "amount": amount.String()}, err)
	}
	return balance, nil
}

// post applies one movement to a user row already locked by tx and records
// the matching ledger entry.
func (s WalletService) post(ctx context.Context, tx repositories.Tx, user models.User, typ models.EntryType, amount decimal.Decimal, description string) (decimal.Decimal, error) {
	if err := checkAmount(amount); err != nil {
		return decimal.Zero, err
	}
	next := user.WalletBalance.Add(amount)
	if typ == models.EntryDebit {
		if user.WalletBalance.LessThan(amount) {
			return decimal.Zero, domain.InsufficientFundsError{Required: amount, Available: user.WalletBalance}
		}
		next = user.WalletBalance.Sub(amount)
	}
	next = utils.RoundMoney(next)

	if err := tx.Users().SetBalance(ctx, user.ID, next); err != nil {
		return decimal.Zero, err
	}
	entry := models.LedgerEntry{
		ID:          s.NewID.next(),
		UserID:      user.ID,
		Type:        typ,
		Amount:      amount,
		Description: description,
		CreatedAt:   s.Now.now(),
	}
	if err := tx.Ledger().Append(ctx, entry); err != nil {
		return decimal.Zero, err
	}
	return next, nil
}

func (s WalletService) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	if err := requireID("userId", userID); err != nil {
		return decimal.Zero, err
	}
	var user models.User
	err := s.Store.View(ctx, func(tx repositories.Tx) error {
		var err error
		user, err = tx.Users().Get(ctx, userID)
		return err
	})
	if err != nil {
		return decimal.Zero, internalErr(ctx, "wallet balance", logrus.Fields{"user_id": userID}, err)
	}
	return user.WalletBalance, nil
}

// History lists the user's ledger, newest first.
func (s WalletService) History(ctx context.Context, userID string) ([]models.LedgerEntry, error) {
	if err := requireID("userId", userID); err != nil {
		return nil, err
	}
	var entries []models.LedgerEntry
	err := s.Store.View(ctx, func(tx repositories.Tx) error {
		if _, err := tx.Users().Get(ctx, userID); err != nil {
			return err
		}
		var err error
		entries, err = tx.Ledger().ListByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, internalErr(ctx, "wallet history", logrus.Fields{"user_id": userID}, err)
	}
	if entries == nil {
		entries = []models.LedgerEntry{}
	}
	return entries, nil
}

// Reconcile compares the stored balance with the sum of the user's ledger.
func (s WalletService) Reconcile(ctx context.Context, userID string) (models.Reconciliation, error) {
	if err := requireID("userId", userID); err != nil {
		return models.Reconciliation{}, err
	}
	var out models.Reconciliation
	err := s.Store.WithinTx(ctx, func(tx repositories.Tx) error {
		user, err := tx.Users().GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		sum, n, err := tx.Ledger().Sum(ctx, userID)
		if err != nil {
			return err
		}
		out = models.Reconciliation{
			UserID:    userID,
			Balance:   user.WalletBalance,
			LedgerSum: sum,
			Entries:   n,
			Balanced:  user.WalletBalance.Equal(sum),
		}
		return nil
	})
	if err != nil {
		return models.Reconciliation{}, internalErr(ctx, "wallet reconcile", logrus.Fields{"user_id": userID}, err)
	}
	if !out.Balanced {
		utils.Logger().WithFields(logrus.Fields{
			"user_id": userID, "balance": out.Balance.String(), "ledger_sum": out.LedgerSum.String(),
		}).Warn("wallet balance does not match ledger")
	}
	return out, nil
}

func checkAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domain.ValidationError{Field: "amount", Msg: "must be greater than zero"}
	}
	if !utils.HasMinorPrecision(amount) {
		return domain.ValidationError{Field: "amount", Msg: "must have at most two decimal places"}
	}
	return nil
}
