package app

import (
	"context"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/oms-returns/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/oms-returns/internal/health"
)

func TestInitRuntimeDependencies_Memory(t *testing.T) {
	t.Parallel()

	deps, err := initRuntimeDependencies(context.Background(), Config{
		StorageDriver: StorageDriverMemory,
	}, log.WithField("test", "memory-storage"))
	if err != nil {
		t.Fatalf("initRuntimeDependencies(memory) failed: %v", err)
	}
	if deps.store == nil {
		t.Fatal("store should not be nil for memory storage")
	}
	if deps.outboxRepo == nil {
		t.Fatal("outboxRepo should not be nil for memory storage")
	}
	if deps.closeFn != nil {
		t.Fatal("memory storage has nothing to close")
	}
	if check := deps.storageChecker.Check(context.Background()); check.Status != healthcheck.StatusHealthy {
		t.Fatalf("expected healthy memory storage, got %+v", check)
	}
}

func TestInitRuntimeDependencies_MemorySharesOutbox(t *testing.T) {
	t.Parallel()

	deps, err := initRuntimeDependencies(context.Background(), DefaultConfig(), log.WithField("test", "memory-outbox"))
	if err != nil {
		t.Fatalf("initRuntimeDependencies failed: %v", err)
	}

	order, err := domain.NewOrder([]int64{1})
	if err != nil {
		t.Fatalf("new order: %v", err)
	}
	err = deps.store.InTx(context.Background(), domain.IsolationRepeatableRead, func(tx domain.OrderTx) error {
		if err := tx.Save(context.Background(), &order); err != nil {
			return err
		}
		msg, err := domain.NewOrderCreatedMessage(order)
		if err != nil {
			return err
		}
		return tx.Enqueue(context.Background(), msg)
	})
	if err != nil {
		t.Fatalf("tx failed: %v", err)
	}

	pending, err := outboxBacklog(deps.outboxRepo)()
	if err != nil {
		t.Fatalf("backlog failed: %v", err)
	}
	if pending != 1 {
		t.Fatalf("expected message enqueued by store to be visible to worker repo, got %d", pending)
	}
}

func TestInitRuntimeDependencies_PostgresRequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := initRuntimeDependencies(context.Background(), Config{
		StorageDriver: StorageDriverPostgres,
	}, log.WithField("test", "postgres-missing-dsn"))
	if err == nil {
		t.Fatal("expected error when postgres driver is selected without DSN")
	}
}

func TestInitRuntimeDependencies_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	_, err := initRuntimeDependencies(context.Background(), Config{
		StorageDriver: "sqlite",
	}, log.WithField("test", "unsupported-driver"))
	if err == nil || !strings.Contains(err.Error(), "unsupported storage driver") {
		t.Fatalf("expected unsupported storage driver error, got %v", err)
	}
}
