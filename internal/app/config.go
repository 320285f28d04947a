package app

import (
	"time"

	"github.com/vladislavdragonenkov/oms-returns/internal/service/outbox"
)

// Поддерживаемые драйверы хранилища заказов.
const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr    string
	GRPCAddr    string
	MetricsAddr string

	StorageDriver       string
	PostgresDSN         string
	PostgresAutoMigrate bool

	// KafkaBrokers задаёт брокеров через запятую, пустая строка отключает Kafka.
	KafkaBrokers string

	Outbox outbox.Config
	// OutboxMaxPending задаёт порог backlog, после которого /healthz отвечает degraded.
	OutboxMaxPending int
	// OutboxRetention определяет, сколько хранить доставленные сообщения до очистки.
	OutboxRetention       time.Duration
	OutboxCleanupInterval time.Duration

	// После KafkaBreakerFailures ошибок подряд публикация в Kafka приостанавливается на KafkaBreakerReset.
	KafkaBreakerFailures int
	KafkaBreakerReset    time.Duration
}

// DefaultConfig возвращает конфигурацию для локального запуска без внешних зависимостей.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:              ":8080",
		GRPCAddr:              ":50051",
		MetricsAddr:           ":9090",
		StorageDriver:         StorageDriverMemory,
		PostgresAutoMigrate:   true,
		Outbox:                outbox.DefaultConfig(),
		OutboxMaxPending:      1000,
		OutboxRetention:       24 * time.Hour,
		OutboxCleanupInterval: 10 * time.Minute,
		KafkaBreakerFailures:  5,
		KafkaBreakerReset:     30 * time.Second,
	}
}
