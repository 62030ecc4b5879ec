package kafka

import (
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Kafka topics published by venda.
const (
	TopicTransactionRecorded = "venda.transaction.recorded"

	TopicDLQ = "venda.dlq"
)

// Event types for outbox rows.
const (
	EventTransactionRecorded = "venda.transaction.recorded"
)

type Config struct {
	Brokers         []string
	ProducerTimeout time.Duration
	RequiredAcks    kgo.Acks
}

func DefaultConfig(brokers []string) *Config {
	return &Config{
		Brokers:         brokers,
		ProducerTimeout: 10 * time.Second,
		RequiredAcks:    kgo.AllISRAcks(),
	}
}
