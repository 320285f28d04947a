package app

import (
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/oms-returns/internal/domain"
	"github.com/vladislavdragonenkov/oms-returns/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/oms-returns/internal/service/notify"
	"github.com/vladislavdragonenkov/oms-returns/internal/service/payment"
	"github.com/vladislavdragonenkov/oms-returns/internal/service/refund"
)

const kafkaClientID = "oms-returns"

// initKafkaProducer инициализирует Kafka producer если brokers не пустой.
// Возвращает nil, nil если brokers пустой.
func initKafkaProducer(brokers string, logger *log.Entry) (*kafka.Producer, error) {
	brokerList := splitBrokers(brokers)
	if len(brokerList) == 0 {
		return nil, nil
	}

	producer, err := kafka.NewProducer(brokerList, kafkaClientID)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		return nil, err
	}

	logger.WithField("brokers", brokerList).Info("kafka producer initialized")
	return producer, nil
}

func splitBrokers(brokers string) []string {
	var out []string
	for _, broker := range strings.Split(brokers, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			out = append(out, broker)
		}
	}
	return out
}

// newNotificationPublishers собирает маршрутизатор уведомлений и DLQ.
// Без producer уведомления пишутся в лог, DLQ отсутствует.
func newNotificationPublishers(producer *kafka.Producer, cfg Config, logger *log.Entry) (publisher, dlq domain.OutboxPublisher) {
	if producer == nil {
		return notify.NewDispatcher(
			payment.NewLogNotifier(logger.WithField("collaborator", "payment")),
			refund.NewLogNotifier(logger.WithField("collaborator", "refund")),
		), nil
	}

	dispatcher := notify.NewDispatcher(
		kafka.NewPaymentNotifier(producer, ""),
		kafka.NewRefundNotifier(producer, ""),
	)
	breaker := notify.NewCircuitBreaker(cfg.KafkaBreakerFailures, cfg.KafkaBreakerReset, logger.WithField("component", "kafka-breaker"))
	return notify.NewBreakerPublisher(dispatcher, breaker), kafka.NewDLQPublisher(producer, "")
}

// closeKafka закрывает Kafka producer если он не nil.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
