// Package notify publishes compliance events to Kafka. Publication is
// fire-and-forget: lifecycle transitions never wait on the broker.
package notify

import (
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/moneyex/compliance-service/internal/config"
	"github.com/moneyex/compliance-service/internal/pkg/logger"
)

// TransactionReportedEvent tells the transaction service a transaction
// has been reported so it can mark the record with the report id and date
type TransactionReportedEvent struct {
	EventID       uuid.UUID `json:"event_id"`
	EventType     string    `json:"event_type"`
	ReportID      uuid.UUID `json:"report_id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	ReportNumber  string    `json:"report_number"`
	ReportedAt    time.Time `json:"reported_at"`
}

// KafkaNotifier publishes reported events through an async producer
type KafkaNotifier struct {
	producer sarama.AsyncProducer
	topic    string
	log      *logger.Logger
}

// NewKafkaNotifier creates a notifier over the configured brokers. The
// producer's error channel is drained in the background; delivery
// failures are logged and never propagated to the caller.
func NewKafkaNotifier(cfg *config.KafkaConfig, log *logger.Logger) (*KafkaNotifier, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.RequiredAcks = sarama.WaitForLocal
	saramaCfg.Producer.Retry.Max = 3
	saramaCfg.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, err
	}

	n := &KafkaNotifier{
		producer: producer,
		topic:    cfg.ReportedTopic,
		log:      log.Named("kafka_notifier"),
	}

	go func() {
		for err := range producer.Errors() {
			n.log.Warn("event delivery failed", logger.ErrorField(err))
		}
	}()

	return n, nil
}

// TransactionReported publishes the reported event for a transaction
func (n *KafkaNotifier) TransactionReported(reportID, transactionID uuid.UUID, reportNumber string, reportedAt time.Time) {
	event := TransactionReportedEvent{
		EventID:       uuid.New(),
		EventType:     "compliance.transaction.reported",
		ReportID:      reportID,
		TransactionID: transactionID,
		ReportNumber:  reportNumber,
		ReportedAt:    reportedAt,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		n.log.Warn("event marshal failed", logger.ErrorField(err))
		return
	}

	n.producer.Input() <- &sarama.ProducerMessage{
		Topic: n.topic,
		Key:   sarama.StringEncoder(transactionID.String()),
		Value: sarama.ByteEncoder(payload),
	}
}

// Close shuts the producer down, flushing buffered messages
func (n *KafkaNotifier) Close() error {
	return n.producer.Close()
}
