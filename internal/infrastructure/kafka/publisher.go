// Package kafka publishes committed occupancy changes to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/parking-occupancy/internal/config"
	"github.com/parking-occupancy/internal/domain"
	"go.uber.org/zap"
)

const flushTimeout = 15 * time.Second

// producer is the part of *kafka.Producer the publisher uses.
type producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Flush(timeoutMs int) int
	Close()
}

// Publisher is a repository.EventPublisher writing one message per change,
// keyed by spot so a spot's transitions stay ordered within a partition.
type Publisher struct {
	producer     producer
	topic        string
	deliveryChan chan kafka.Event
	logger       *zap.Logger

	acked  atomic.Int64
	failed atomic.Int64

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewPublisher(cfg *config.KafkaConfig, logger *zap.Logger) (*Publisher, error) {
	configMap := &kafka.ConfigMap{
		"bootstrap.servers":  cfg.BootstrapServers,
		"security.protocol":  cfg.SecurityProtocol,
		"acks":               cfg.Acks,
		"enable.idempotence": true,
		"request.timeout.ms": 30000,
	}
	if cfg.SASLMechanism != "" {
		_ = configMap.SetKey("sasl.mechanism", cfg.SASLMechanism)
		_ = configMap.SetKey("sasl.username", cfg.SASLUsername)
		_ = configMap.SetKey("sasl.password", cfg.SASLPassword)
	}

	p, err := kafka.NewProducer(configMap)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	logger.Info("Kafka publisher initialized",
		zap.String("topic", cfg.Topic),
		zap.String("servers", cfg.BootstrapServers))

	return newPublisher(p, cfg.Topic, logger), nil
}

func newPublisher(p producer, topic string, logger *zap.Logger) *Publisher {
	ctx, cancel := context.WithCancel(context.Background())
	pub := &Publisher{
		producer:     p,
		topic:        topic,
		deliveryChan: make(chan kafka.Event, 1000),
		logger:       logger,
		cancel:       cancel,
	}

	pub.wg.Add(1)
	go pub.handleDeliveryReports(ctx)
	return pub
}

func (p *Publisher) handleDeliveryReports(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			// Reports already queued by Flush are still counted.
			for {
				select {
				case e := <-p.deliveryChan:
					p.recordDelivery(e)
				default:
					return
				}
			}
		case e := <-p.deliveryChan:
			p.recordDelivery(e)
		}
	}
}

func (p *Publisher) recordDelivery(e kafka.Event) {
	m, ok := e.(*kafka.Message)
	if !ok {
		return
	}
	if m.TopicPartition.Error != nil {
		p.failed.Add(1)
		p.logger.Error("Kafka delivery failed",
			zap.String("key", string(m.Key)),
			zap.Error(m.TopicPartition.Error))
		return
	}
	p.acked.Add(1)
}

func (p *Publisher) buildMessage(change *domain.OccupancyChangedEvent) (*kafka.Message, error) {
	payload, err := json.Marshal(change)
	if err != nil {
		return nil, fmt.Errorf("marshal change: %w", err)
	}

	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &p.topic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(change.SpotID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "sector_id", Value: []byte(change.SectorID.String())},
			{Key: "transition", Value: []byte(change.Transition)},
		},
	}, nil
}

// PublishOccupancyChanges enqueues every change. Delivery is asynchronous;
// failures are counted and logged by the delivery report handler.
func (p *Publisher) PublishOccupancyChanges(ctx context.Context, changes []domain.OccupancyChangedEvent) error {
	for i := range changes {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg, err := p.buildMessage(&changes[i])
		if err != nil {
			return err
		}
		if err := p.producer.Produce(msg, p.deliveryChan); err != nil {
			return fmt.Errorf("produce change for spot %s: %w", changes[i].SpotID, err)
		}
	}
	return nil
}

// Stats returns delivered and failed message counts.
func (p *Publisher) Stats() (acked, failed int64) {
	return p.acked.Load(), p.failed.Load()
}

// Close flushes pending messages and shuts the producer down.
func (p *Publisher) Close() {
	if remaining := p.producer.Flush(int(flushTimeout.Milliseconds())); remaining > 0 {
		p.logger.Warn("Kafka messages still queued after flush", zap.Int("remaining", remaining))
	}
	p.cancel()
	p.wg.Wait()
	p.producer.Close()

	acked, failed := p.Stats()
	p.logger.Info("Kafka publisher closed",
		zap.Int64("acked", acked),
		zap.Int64("failed", failed))
}
