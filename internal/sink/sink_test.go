package sink_test

import (
	"context"
	"encoding/csv"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsharvest/internal/sink"
)

func TestSinksSnapshotWritesCSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writer := sink.NewCSVWriter(dir, nil)
	sinks := &sink.Sinks{Snapshots: writer}

	require.NoError(t, sinks.Snapshot(context.Background(), "example", testRecords()))

	file, err := os.Open(writer.Path("example"))
	require.NoError(t, err)
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestSinksTolerateMissingPaths(t *testing.T) {
	t.Parallel()

	sinks := &sink.Sinks{}
	ctx := context.Background()

	assert.NoError(t, sinks.Publish(ctx, "news-events", sink.Batch{Source: "example"}))
	assert.NoError(t, sinks.Snapshot(ctx, "example", testRecords()))
}
