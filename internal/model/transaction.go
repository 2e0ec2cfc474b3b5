package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Transaction represents a single ledger transaction from any source.
// Amount is signed: negative for money out, positive for money in.
type Transaction struct {
	Date        time.Time
	PropertyID  *string
	ID          string
	OwnerID     string
	AccountID   string
	Category    string
	Description string
	Hash        string
	Amount      float64
}

// GenerateHash creates a unique hash for duplicate detection across imports.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Description,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// AbsAmount returns the unsigned magnitude of the transaction amount.
func (t *Transaction) AbsAmount() float64 {
	if t.Amount < 0 {
		return -t.Amount
	}
	return t.Amount
}
