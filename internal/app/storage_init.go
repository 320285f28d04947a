package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/oms-returns/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/oms-returns/internal/health"
	"github.com/vladislavdragonenkov/oms-returns/internal/storage/memory"
	"github.com/vladislavdragonenkov/oms-returns/internal/storage/postgres"
)

// runtimeDependencies содержит хранилища, выбранные по StorageDriver.
type runtimeDependencies struct {
	store          domain.OrderStore
	outboxRepo     domain.OutboxRepository
	storageChecker healthcheck.Checker
	closeFn        func() error
}

func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (runtimeDependencies, error) {
	switch cfg.StorageDriver {
	case "", StorageDriverMemory:
		outboxRepo := memory.NewOutboxRepository()
		logger.Info("используем in-memory хранилище заказов")
		return runtimeDependencies{
			store:      memory.NewOrderStore(outboxRepo),
			outboxRepo: outboxRepo,
			storageChecker: healthcheck.NewSimpleChecker("storage", func(context.Context) error {
				return nil
			}),
		}, nil
	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return runtimeDependencies{}, fmt.Errorf("postgres storage requires OMS_POSTGRES_DSN")
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return runtimeDependencies{}, err
		}
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return runtimeDependencies{}, fmt.Errorf("apply migrations: %w", err)
			}
		}
		logger.Info("используем postgres хранилище заказов")
		return runtimeDependencies{
			store:          postgres.NewOrderStore(store),
			outboxRepo:     postgres.NewOutboxRepository(store),
			storageChecker: healthcheck.NewPingChecker("storage", store),
			closeFn:        store.Close,
		}, nil
	default:
		return runtimeDependencies{}, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

// outboxBacklog адаптирует статистику outbox к health.BacklogSource.
func outboxBacklog(repo domain.OutboxRepository) healthcheck.BacklogSource {
	return func() (int, error) {
		stats, err := repo.Stats()
		if err != nil {
			return 0, err
		}
		return stats.PendingCount, nil
	}
}
