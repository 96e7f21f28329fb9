package services

import (
	"rld/internal/models"
	"rld/internal/providers"

	"github.com/google/uuid"
)

// LedgerServiceInterface is the only component allowed to change a
// balance. The *Tx variants stage into a caller-owned unit of work so
// debits can commit together with their bookkeeping.
type LedgerServiceInterface interface {
	Credit(account string, amount int64, sourceType, sourceID, description string) (*models.Transaction, error)
	Debit(account string, amount int64, sourceType, sourceID, description string) (*models.Transaction, error)
	Lock(account string, amount int64, sourceType, sourceID, description string) (*models.Transaction, error)
	Unlock(account string, amount int64, sourceType, sourceID, description string) (*models.Transaction, error)
	CreditTx(atx *models.AccountTx, amount int64, sourceType, sourceID, description string) (*models.Transaction, error)
	DebitTx(atx *models.AccountTx, amount int64, sourceType, sourceID, description string) (*models.Transaction, error)
	GetBalance(account string) *models.Balance
	ListTransactions(account string, txType models.TxType, limit int) []*models.Transaction
}

type LedgerService struct {
	store   *models.Store
	clock   providers.ClockInterface
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewLedgerService(store *models.Store, clock providers.ClockInterface, logger providers.Logger, metrics providers.MetricsProviderInterface) LedgerServiceInterface {
	return &LedgerService{store: store, clock: clock, logger: logger, metrics: metrics}
}

func validAmount(amount int64) error {
	if amount <= 0 {
		return &models.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	return nil
}

func (ls *LedgerService) newTransaction(atx *models.AccountTx, txType models.TxType, amount, before, after int64, sourceType, sourceID, description string) *models.Transaction {
	now := ls.clock.Now()
	return &models.Transaction{
		ID:            uuid.NewString(),
		Account:       atx.Account(),
		Type:          txType,
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		SourceType:    sourceType,
		SourceID:      sourceID,
		Description:   description,
		Status:        models.TxCompleted,
		CreatedAt:     now,
		ConfirmedAt:   now,
	}
}

// CreditTx stages an earn into an open unit of work.
func (ls *LedgerService) CreditTx(atx *models.AccountTx, amount int64, sourceType, sourceID, description string) (*models.Transaction, error) {
	if err := validAmount(amount); err != nil {
		return nil, err
	}
	bal := atx.Balance()
	before := bal.Available
	bal.Available += amount
	bal.TotalEarned += amount
	bal.UpdatedAt = ls.clock.Now()

	t := ls.newTransaction(atx, models.TxEarn, amount, before, bal.Available, sourceType, sourceID, description)
	atx.Append(t)
	return t, nil
}

// DebitTx stages a spend; fails without touching the working balance
// when the amount exceeds what is available.
func (ls *LedgerService) DebitTx(atx *models.AccountTx, amount int64, sourceType, sourceID, description string) (*models.Transaction, error) {
	if err := validAmount(amount); err != nil {
		return nil, err
	}
	bal := atx.Balance()
	if amount > bal.Available {
		return nil, &models.InsufficientBalanceError{Requested: amount, Available: bal.Available}
	}
	before := bal.Available
	bal.Available -= amount
	bal.TotalSpent += amount
	bal.UpdatedAt = ls.clock.Now()

	t := ls.newTransaction(atx, models.TxSpend, amount, before, bal.Available, sourceType, sourceID, description)
	atx.Append(t)
	return t, nil
}

func (ls *LedgerService) lockTx(atx *models.AccountTx, amount int64, sourceType, sourceID, description string) (*models.Transaction, error) {
	if err := validAmount(amount); err != nil {
		return nil, err
	}
	bal := atx.Balance()
	if amount > bal.Available {
		return nil, &models.InsufficientBalanceError{Requested: amount, Available: bal.Available}
	}
	before := bal.Available
	bal.Available -= amount
	bal.Locked += amount
	bal.UpdatedAt = ls.clock.Now()

	t := ls.newTransaction(atx, models.TxLock, amount, before, bal.Available, sourceType, sourceID, description)
	atx.Append(t)
	return t, nil
}

func (ls *LedgerService) unlockTx(atx *models.AccountTx, amount int64, sourceType, sourceID, description string) (*models.Transaction, error) {
	if err := validAmount(amount); err != nil {
		return nil, err
	}
	bal := atx.Balance()
	if amount > bal.Locked {
		return nil, &models.InsufficientBalanceError{Requested: amount, Available: bal.Locked}
	}
	before := bal.Available
	bal.Locked -= amount
	bal.Available += amount
	bal.UpdatedAt = ls.clock.Now()

	t := ls.newTransaction(atx, models.TxUnlock, amount, before, bal.Available, sourceType, sourceID, description)
	atx.Append(t)
	return t, nil
}

type stageFunc func(atx *models.AccountTx, amount int64, sourceType, sourceID, description string) (*models.Transaction, error)

// mutate wraps a staging call in its own unit of work.
func (ls *LedgerService) mutate(stage stageFunc, account string, amount int64, sourceType, sourceID, description string) (*models.Transaction, error) {
	atx, err := ls.store.Begin(account)
	if err != nil {
		return nil, err
	}
	t, err := stage(atx, amount, sourceType, sourceID, description)
	if err != nil {
		atx.Rollback()
		return nil, err
	}
	if err = atx.Commit(); err != nil {
		return nil, err
	}
	ls.metrics.IncTransactions(string(t.Type))
	return t, nil
}

func (ls *LedgerService) Credit(account string, amount int64, sourceType, sourceID, description string) (*models.Transaction, error) {
	return ls.mutate(ls.CreditTx, account, amount, sourceType, sourceID, description)
}

func (ls *LedgerService) Debit(account string, amount int64, sourceType, sourceID, description string) (*models.Transaction, error) {
	return ls.mutate(ls.DebitTx, account, amount, sourceType, sourceID, description)
}

func (ls *LedgerService) Lock(account string, amount int64, sourceType, sourceID, description string) (*models.Transaction, error) {
	return ls.mutate(ls.lockTx, account, amount, sourceType, sourceID, description)
}

func (ls *LedgerService) Unlock(account string, amount int64, sourceType, sourceID, description string) (*models.Transaction, error) {
	return ls.mutate(ls.unlockTx, account, amount, sourceType, sourceID, description)
}

func (ls *LedgerService) GetBalance(account string) *models.Balance {
	return ls.store.GetBalance(account)
}

func (ls *LedgerService) ListTransactions(account string, txType models.TxType, limit int) []*models.Transaction {
	return ls.store.ListTransactions(account, txType, limit)
}
