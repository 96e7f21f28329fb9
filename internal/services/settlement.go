package services

import (
	"context"
	"rld/internal/providers"

	"github.com/shopspring/decimal"
)

// SettlementNotifierInterface hands an approved exchange to the external
// collaborator that performs the actual output-asset transfer. The core
// only triggers settlement; it never settles.
type SettlementNotifierInterface interface {
	NotifyExchange(ctx context.Context, account, transactionID string, outputAmount decimal.Decimal) error
}

// LogSettlementNotifier is the default wiring: it records the intent so
// an operator (or a log shipper) can drive the real transfer. Deployments
// with a settlement endpoint swap in their own implementation.
type LogSettlementNotifier struct {
	logger providers.Logger
}

func NewSettlementNotifier(logger providers.Logger) SettlementNotifierInterface {
	return &LogSettlementNotifier{logger: logger}
}

func (n *LogSettlementNotifier) NotifyExchange(_ context.Context, account, transactionID string, outputAmount decimal.Decimal) error {
	n.logger.Infof(providers.TypePost, "Settlement requested: account=%s tx=%s output=%s",
		account, transactionID, outputAmount.String())
	return nil
}
