package sink_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsharvest/internal/models"
	"github.com/jonesrussell/newsharvest/internal/sink"
)

func newTestPublisher(t *testing.T) (*sink.StreamPublisher, *redis.Client) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	publisher := sink.NewStreamPublisherFromClient(client, nil)
	t.Cleanup(func() { _ = publisher.Close() })
	return publisher, client
}

func testRecords() []models.NewsRecord {
	return []models.NewsRecord{
		{
			Title:       "Markets close higher",
			Description: "Indices rallied on earnings.",
			URL:         "https://example.com/markets",
			PublishTime: "2026-08-30 16:00:00",
			Provider:    "example",
		},
		{
			Title:       "Rate decision due",
			Description: "Central bank meets this week.",
			URL:         "https://example.com/rates",
			PublishTime: "2026-08-30 17:00:00",
			Provider:    "example",
		},
	}
}

func TestPublishAppendsSingleEntryPerBatch(t *testing.T) {
	publisher, client := newTestPublisher(t)
	ctx := context.Background()

	err := publisher.Publish(ctx, "news-events", sink.Batch{
		Source:  "example",
		Page:    3,
		Records: testRecords(),
	})
	require.NoError(t, err)

	entries, err := client.XRange(ctx, "news-events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1, "one stream entry per page batch")

	values := entries[0].Values
	assert.Equal(t, "example", values[sink.SourceField])
	assert.Equal(t, "3", values[sink.PageField])
	assert.NotEmpty(t, values[sink.EventIDField])
	assert.NotEmpty(t, values[sink.PublishedAtField])

	payload, ok := values[sink.BatchField].(string)
	require.True(t, ok)
	var decoded []models.NewsRecord
	require.NoError(t, json.Unmarshal([]byte(payload), &decoded))
	assert.Equal(t, testRecords(), decoded)
}

func TestPublishSkipsEmptyBatch(t *testing.T) {
	publisher, client := newTestPublisher(t)
	ctx := context.Background()

	err := publisher.Publish(ctx, "news-events", sink.Batch{Source: "example", Page: 1})
	require.NoError(t, err)

	length, err := client.XLen(ctx, "news-events").Result()
	require.NoError(t, err)
	assert.Zero(t, length, "empty batches never touch the stream")
}

func TestPublishPreservesBatchOrder(t *testing.T) {
	publisher, client := newTestPublisher(t)
	ctx := context.Background()
	records := testRecords()

	for page := 1; page <= 3; page++ {
		err := publisher.Publish(ctx, "news-events", sink.Batch{
			Source:  "example",
			Page:    page,
			Records: records[:1],
		})
		require.NoError(t, err)
	}

	entries, err := client.XRange(ctx, "news-events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, entry := range entries {
		assert.Equal(t, string(rune('1'+i)), entry.Values[sink.PageField])
	}
}
