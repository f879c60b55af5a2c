package accounting

import (
	"fmt"

	"github.com/ledgercore/subledger_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CalculateSignedAmount applies the correct sign to a transaction amount based on account type and transaction type.
// This is used in both services and repositories to ensure consistent accounting logic.
func CalculateSignedAmount(txn domain.Transaction, accountType domain.AccountType) (decimal.Decimal, error) {
	signedAmount := txn.Amount
	isDebit := txn.TransactionType == domain.Debit

	// Determine sign based on accounting convention
	// DEBIT to ASSET/EXPENSE -> Positive (+)
	// CREDIT to ASSET/EXPENSE -> Negative (-)
	// DEBIT to LIABILITY/EQUITY/REVENUE -> Negative (-)
	// CREDIT to LIABILITY/EQUITY/REVENUE -> Positive (+)
	switch accountType {
	case domain.Asset, domain.Expense:
		if !isDebit { // Credit to Asset/Expense
			signedAmount = signedAmount.Neg()
		}
	case domain.Liability, domain.Equity, domain.Revenue:
		if isDebit { // Debit to Liability/Equity/Revenue
			signedAmount = signedAmount.Neg()
		}
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s' encountered for account ID %s", accountType, txn.AccountID)
	}
	return signedAmount, nil
}

// ComputeTotals sums the debit and credit sides of a set of journal lines.
func ComputeTotals(transactions []domain.Transaction) (totalDebit, totalCredit decimal.Decimal) {
	totalDebit = decimal.Zero
	totalCredit = decimal.Zero
	for _, txn := range transactions {
		if txn.TransactionType == domain.Debit {
			totalDebit = totalDebit.Add(txn.Amount)
		} else {
			totalCredit = totalCredit.Add(txn.Amount)
		}
	}
	return totalDebit, totalCredit
}

// ValidateJournalLines checks structural validity of a journal's lines:
// at least two lines and every amount strictly positive.
func ValidateJournalLines(transactions []domain.Transaction) error {
	if len(transactions) < 2 {
		return fmt.Errorf("journal must have at least two transaction entries")
	}
	zero := decimal.NewFromInt(0)
	for _, txn := range transactions {
		if txn.Amount.LessThanOrEqual(zero) {
			return fmt.Errorf("transaction amount must be positive for account %s", txn.AccountID)
		}
	}
	return nil
}

// CalculateBalanceChanges folds a journal's lines into per-account signed
// balance deltas, using each account's type to orient the sign.
func CalculateBalanceChanges(transactions []domain.Transaction, accounts map[string]domain.GLAccount) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, len(accounts))
	for _, txn := range transactions {
		account, ok := accounts[txn.AccountID]
		if !ok {
			return nil, fmt.Errorf("account %s not found for balance calculation", txn.AccountID)
		}
		signed, err := CalculateSignedAmount(txn, account.AccountType)
		if err != nil {
			return nil, err
		}
		changes[txn.AccountID] = changes[txn.AccountID].Add(signed)
	}
	return changes, nil
}
