package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// ProducerConfig contains Kafka producer configuration
type ProducerConfig struct {
	// Brokers is the list of Kafka broker addresses
	Brokers []string
	// ClientID identifies this producer to the brokers
	ClientID string
	// MaxRetries is the number of times a record is retried before failing
	MaxRetries int
	// RetryInterval is the backoff between record retries
	RetryInterval time.Duration
	// BatchSize is the maximum number of records per batch
	BatchSize int
	// LingerMs is how long to wait for a batch to fill before sending
	LingerMs int
}

// Message is a single record to publish
type Message struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Producer wraps a franz-go client for synchronous publishing
type Producer struct {
	client *kgo.Client
}

// NewProducer creates a Kafka producer and verifies broker connectivity
func NewProducer(ctx context.Context, cfg *ProducerConfig) (*Producer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("producer config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "producer"
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	retryInterval := cfg.RetryInterval
	if retryInterval <= 0 {
		retryInterval = 1 * time.Second
	}
	lingerMs := cfg.LingerMs
	if lingerMs < 0 {
		lingerMs = 0
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(clientID),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.RecordRetries(maxRetries),
		kgo.RetryBackoffFn(func(int) time.Duration { return retryInterval }),
		kgo.ProducerLinger(time.Duration(lingerMs) * time.Millisecond),
	}
	if cfg.BatchSize > 0 {
		opts = append(opts, kgo.MaxBufferedRecords(cfg.BatchSize))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka client: %w", err)
	}

	// Ping to verify connection
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Kafka: %w", err)
	}

	return &Producer{client: client}, nil
}

// Produce publishes a message and waits for broker acknowledgement
func (p *Producer) Produce(ctx context.Context, msg *Message) error {
	if msg == nil {
		return fmt.Errorf("message is required")
	}
	if msg.Topic == "" {
		return fmt.Errorf("message topic is required")
	}

	record := &kgo.Record{
		Topic: msg.Topic,
		Key:   msg.Key,
		Value: msg.Value,
	}
	if !msg.Timestamp.IsZero() {
		record.Timestamp = msg.Timestamp
	}
	for k, v := range msg.Headers {
		record.Headers = append(record.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}

	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to produce record to %s: %w", msg.Topic, err)
	}

	return nil
}

// Close flushes buffered records and closes the client
func (p *Producer) Close() {
	if p.client != nil {
		p.client.Close()
	}
}
