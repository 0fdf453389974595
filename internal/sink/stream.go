package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/newsharvest/internal/logger"
)

const (
	// connectionTimeout bounds the initial connection check.
	connectionTimeout = 2 * time.Second

	// BatchField is the field name for the serialized record batch in
	// stream messages.
	BatchField = "batch"

	// SourceField is the field name for the originating source.
	SourceField = "source"

	// PageField is the field name for the page the batch came from.
	PageField = "page"

	// EventIDField is the field name for the message identifier.
	EventIDField = "event_id"

	// PublishedAtField is the field name for the publish timestamp.
	PublishedAtField = "published_at"
)

// StreamConfig holds configuration for the Redis Streams publisher.
type StreamConfig struct {
	Addr     string
	Password string `json:"-"`
	DB       int
}

// StreamPublisher publishes record batches to a Redis stream. Delivery
// is best-effort, at-least-once; callers treat failures as non-fatal.
type StreamPublisher struct {
	client *redis.Client
	logger logger.Interface
}

// NewStreamPublisher creates a publisher and verifies the connection.
func NewStreamPublisher(cfg StreamConfig, log logger.Interface) (*StreamPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if log == nil {
		log = logger.NewNoOp()
	}

	return &StreamPublisher{
		client: client,
		logger: log.WithComponent("stream"),
	}, nil
}

// NewStreamPublisherFromClient creates a publisher from an existing
// Redis client.
func NewStreamPublisherFromClient(client *redis.Client, log logger.Interface) *StreamPublisher {
	if log == nil {
		log = logger.NewNoOp()
	}
	return &StreamPublisher{client: client, logger: log.WithComponent("stream")}
}

// Publish appends one batch to the topic stream as a single entry.
func (p *StreamPublisher) Publish(ctx context.Context, topic string, batch Batch) error {
	if len(batch.Records) == 0 {
		return nil
	}

	payload, err := json.Marshal(batch.Records)
	if err != nil {
		return fmt.Errorf("failed to serialize batch: %w", err)
	}

	result := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: topic,
		Values: map[string]any{
			BatchField:       string(payload),
			SourceField:      batch.Source,
			PageField:        batch.Page,
			EventIDField:     uuid.NewString(),
			PublishedAtField: time.Now().UTC().Format(time.RFC3339),
		},
	})
	if publishErr := result.Err(); publishErr != nil {
		return fmt.Errorf("failed to publish batch to stream %s: %w", topic, publishErr)
	}

	p.logger.Debug("Published batch",
		"topic", topic,
		"source", batch.Source,
		"page", batch.Page,
		"records", len(batch.Records),
		"stream_id", result.Val())

	return nil
}

// Close closes the underlying Redis client.
func (p *StreamPublisher) Close() error {
	return p.client.Close()
}
