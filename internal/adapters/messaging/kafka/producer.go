package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Dispatcher is a CallbackDispatcher implementation that publishes verified
// webhook payloads to a Kafka topic, keyed by order reference.
type Dispatcher struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewDispatcher creates a connected Kafka dispatcher.
func NewDispatcher(bootstrapServers []string, topic string, logger *slog.Logger) (*Dispatcher, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(bootstrapServers...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.RecordDeliveryTimeout(10 * time.Second),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating kafka client: %w", err)
	}

	if err := client.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("connecting to kafka: %w", err)
	}

	return &Dispatcher{
		client: client,
		topic:  topic,
		logger: logger,
	}, nil
}

// Dispatch publishes the raw callback payload. Delivery is asynchronous;
// Close waits for in-flight records.
func (d *Dispatcher) Dispatch(ctx context.Context, payload map[string]any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling callback payload: %w", err)
	}

	key, _ := payload["orderReference"].(string)
	record := &kgo.Record{
		Key:   []byte(key),
		Value: value,
	}

	d.wg.Add(1)
	d.client.Produce(ctx, record, func(r *kgo.Record, err error) {
		defer d.wg.Done()
		if err != nil {
			d.logger.Error("failed to deliver callback to kafka", "topic", r.Topic, "error", err)
		} else {
			d.logger.Debug("callback delivered to kafka", "topic", r.Topic, "partition", r.Partition, "offset", r.Offset)
		}
	})

	return nil
}

// Close drains in-flight records and stops the client.
func (d *Dispatcher) Close() {
	d.logger.Info("waiting for in-flight kafka records...")
	d.wg.Wait()
	d.client.Close()
	d.logger.Info("kafka client stopped")
}
