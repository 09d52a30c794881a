// FILE: internal/service/ttl_expirer_service.go
package service

import (
	"context"
	"time"

	"ai-studyassistant-be/internal/pkg/logger"
	"ai-studyassistant-be/internal/repository/unitofwork"
)

const expirerInterval = time.Minute

// TtlExpirerService sweeps pending transactions whose checkout TTL has
// passed and settles them as expired. Abandoned checkouts never accumulate
// in the pending state.
type TtlExpirerService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
	interval   time.Duration
}

func NewTtlExpirerService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) *TtlExpirerService {
	return &TtlExpirerService{
		uowFactory: uowFactory,
		logger:     log,
		interval:   expirerInterval,
	}
}

// Start runs the sweep loop until the context is cancelled.
func (s *TtlExpirerService) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.SweepOnce(ctx); err != nil {
					s.logger.Error("TtlExpirer", "Sweep failed", map[string]interface{}{"error": err.Error()})
				}
			}
		}
	}()
	s.logger.Info("TtlExpirer", "Pending transaction sweeper started", map[string]interface{}{
		"interval": s.interval.String(),
	})
}

func (s *TtlExpirerService) SweepOnce(ctx context.Context) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	moved, err := uow.TransactionRepository().ExpireStalePending(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if moved > 0 {
		s.logger.Info("TtlExpirer", "Expired stale pending transactions", map[string]interface{}{"count": moved})
	}
	return nil
}
