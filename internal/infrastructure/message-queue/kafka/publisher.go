package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ahmadrazza2001/backend-trynbuy/internal/dto"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
)

// MessageWriter is satisfied by *kafka.Conn.
type MessageWriter interface {
	WriteMessages(msgs ...kafka.Message) (int, error)
}

type Publisher struct {
	writer     MessageWriter
	cb         *gobreaker.CircuitBreaker[[]byte]
	maxRetries int
	backoff    time.Duration
}

func CreatePublisher(writer MessageWriter, cb *gobreaker.CircuitBreaker[[]byte]) *Publisher {
	return &Publisher{writer: writer, cb: cb, maxRetries: 3, backoff: time.Second}
}

// WithBackoff sets the base delay between attempts. A failed attempt i waits
// (i+1)*backoff before the next one. Nothing waits after the last attempt.
func (p *Publisher) WithBackoff(backoff time.Duration) *Publisher {
	p.backoff = backoff
	return p
}

// Publish stamps msg with an event ID when it has none and writes it keyed by
// key. Attempts stop early when ctx is done or the breaker is open.
func (p *Publisher) Publish(ctx context.Context, key string, msg dto.KafkaMessage) (err error) {
	if msg.EventID == "" {
		msg.EventID = ulid.Make().String()
	}

	jsonMsg, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	kafkaMsg := kafka.Message{Key: []byte(key), Value: jsonMsg}

	for i := 0; i < p.maxRetries; i++ {
		_, err = p.cb.Execute(func() ([]byte, error) {
			_, err := p.writer.WriteMessages(kafkaMsg)
			return nil, err
		})
		if err == nil {
			return nil
		}

		log.Ctx(ctx).Error().Err(err).Str("component", "Publish").Str("event_type", msg.EventType).Int("attempt", i+1).Msg("")
		if errors.Is(err, gobreaker.ErrOpenState) || i == p.maxRetries-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.backoff * time.Duration(i+1)):
		}
	}

	return err
}
