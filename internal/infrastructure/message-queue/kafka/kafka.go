package kafka

import (
	"context"
	"time"

	"github.com/ahmadrazza2001/backend-trynbuy/config"
	"github.com/segmentio/kafka-go"
)

const consumerGroupID = "trynbuy-product-service"

func CreateKafkaReader(config *config.Config) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:          []string{config.KafkaConfig.BrokerAddress},
		Topic:            config.KafkaConfig.UserEventsTopic,
		MinBytes:         1e3, // 1KB
		MaxBytes:         1e6, // 1MB
		MaxWait:          100 * time.Millisecond,
		ReadLagInterval:  -1,
		StartOffset:      kafka.FirstOffset,
		GroupID:          consumerGroupID,
		QueueCapacity:    1000,
		ReadBatchTimeout: 10 * time.Millisecond,
	})
}

func CreateKafkaProducer(ctx context.Context, config *config.Config) (*kafka.Conn, error) {
	return kafka.DialLeader(ctx, "tcp", config.KafkaConfig.BrokerAddress, config.KafkaConfig.BrokerTopic, config.KafkaConfig.BrokerPartition)
}
