package models

import "time"

type TxType string

const (
	TxEarn     TxType = "earn"
	TxSpend    TxType = "spend"
	TxLock     TxType = "lock"
	TxUnlock   TxType = "unlock"
	TxTransfer TxType = "transfer"
)

type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxCompleted TxStatus = "completed"
	TxFailed    TxStatus = "failed"
	TxCancelled TxStatus = "cancelled"
)

// Transaction is one immutable line of the ledger. BalanceBefore and
// BalanceAfter record the available balance around the mutation, so
// BalanceAfter = BalanceBefore ± Amount always holds. Sequence gives
// transactions of one account a total order.
type Transaction struct {
	ID            string    `json:"id"`
	Account       string    `json:"account"`
	Type          TxType    `json:"type"`
	Amount        int64     `json:"amount"`
	BalanceBefore int64     `json:"balance_before"`
	BalanceAfter  int64     `json:"balance_after"`
	SourceType    string    `json:"source_type"`
	SourceID      string    `json:"source_id"`
	Description   string    `json:"description,omitempty"`
	Status        TxStatus  `json:"status"`
	Sequence      uint64    `json:"sequence"`
	CreatedAt     time.Time `json:"created_at"`
	ConfirmedAt   time.Time `json:"confirmed_at,omitempty"`
}

// SignedAmount is the delta the transaction applied to the available
// balance: positive for earn/unlock, negative for spend/lock.
func (t *Transaction) SignedAmount() int64 {
	switch t.Type {
	case TxEarn, TxUnlock:
		return t.Amount
	case TxSpend, TxLock, TxTransfer:
		return -t.Amount
	}
	return 0
}
