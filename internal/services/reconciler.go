package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Reconciler periodically checks every user's materialized balance against
// the balance_history audit trail and logs discrepancies. It never writes.
type Reconciler struct {
	ledger   *LedgerService
	interval time.Duration
	logger   zerolog.Logger
}

func NewReconciler(ledger *LedgerService, interval time.Duration, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		ledger:   ledger,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps on the configured interval until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.sweep()
		}
	}
}

func (r *Reconciler) sweep() {
	ids, err := r.ledger.ListBalanceUserIDs()
	if err != nil {
		r.logger.Error().Err(err).Msg("Reconciliation sweep failed to list balances")
		return
	}

	for _, id := range ids {
		if err := r.ledger.ReconcileBalance(id); err != nil {
			r.logger.Error().Err(err).Int("user_id", id).Msg("Reconciliation failed")
		}
	}

	r.logger.Debug().Int("users", len(ids)).Msg("Reconciliation sweep completed")
}
