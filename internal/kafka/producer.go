package kafka

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

// AuditEvent records an administrative bulk operation (CSV import, semester
// rollover) for the operations team.
type AuditEvent struct {
	Action     string    `json:"action"`
	ActorEmail string    `json:"actorEmail"`
	Detail     string    `json:"detail"`
	Count      int       `json:"count"`
	OccurredAt time.Time `json:"occurredAt"`
}

type Producer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

func NewProducer(brokers []string, topic string, logger *slog.Logger) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	logger.Info("kafka producer initialized", "brokers", brokers, "topic", topic)

	return &Producer{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}, nil
}

// SendAudit publishes an audit event keyed by the acting admin's email.
func (p *Producer) SendAudit(event AuditEvent) error {
	valueBytes, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal audit event", "error", err)
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.ActorEmail),
		Value: sarama.ByteEncoder(valueBytes),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.logger.Error("failed to send audit event to kafka", "error", err)
		return err
	}

	p.logger.Info("audit event sent to kafka",
		"topic", p.topic, "partition", partition, "offset", offset, "action", event.Action)
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
