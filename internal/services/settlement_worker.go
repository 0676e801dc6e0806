package services

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/athletelink/athletelink-backend/internal/platform/dbctx"
	"github.com/athletelink/athletelink-backend/internal/platform/logger"
)

// SettlementWorker periodically sweeps succeeded payments whose hold period
// has elapsed and moves their net amounts from pending to available.
type SettlementWorker struct {
	log        *logger.Logger
	settlement SettlementService
	interval   time.Duration
	batchSize  int
	parallel   int
}

func NewSettlementWorker(log *logger.Logger, settlement SettlementService, interval time.Duration) *SettlementWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SettlementWorker{
		log:        log.With("worker", "SettlementWorker"),
		settlement: settlement,
		interval:   interval,
		batchSize:  200,
		parallel:   4,
	}
}

// Start launches the sweep loop. It returns immediately; the loop stops when
// ctx is cancelled.
func (w *SettlementWorker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		w.log.Info("Settlement worker started", "interval", w.interval.String())
		for {
			select {
			case <-ctx.Done():
				w.log.Info("Settlement worker stopped")
				return
			case <-ticker.C:
				if err := w.SweepOnce(ctx); err != nil {
					w.log.Error("Settlement sweep failed", "error", err)
				}
			}
		}
	}()
}

// SweepOnce settles every currently due payment. Settles fan out across a
// bounded errgroup; each payment settles in its own transaction, so one
// failure does not hold the rest of the batch.
func (w *SettlementWorker) SweepOnce(ctx context.Context) error {
	dbc := dbctx.Context{Ctx: ctx}
	due, err := w.settlement.ListSettleablePayments(dbc, time.Now().UTC(), w.batchSize)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.parallel)
	for _, p := range due {
		payment := p
		g.Go(func() error {
			_, err := w.settlement.SettlePayment(dbctx.Context{Ctx: gctx}, payment.ID)
			if err != nil {
				w.log.Error("Settle payment failed", "payment_id", payment.ID, "error", err)
			}
			// Worker keeps sweeping; errors are logged per payment.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	w.log.Info("Settlement sweep complete", "payments", len(due))
	return nil
}
