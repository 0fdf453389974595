// Package sink provides the downstream delivery paths for validated
// records: the event-stream publish and the end-of-session snapshot.
// The two paths are independent; a snapshot write is not an
// acknowledgment of stream delivery.
package sink

import (
	"context"

	"github.com/jonesrussell/newsharvest/internal/models"
)

// Batch is one page's worth of validated records plus its provenance.
type Batch struct {
	Source  string
	Page    int
	Records []models.NewsRecord
}

// Sink is the delivery boundary the pagination engine publishes
// through. Publish forwards one batch to the event stream; Snapshot
// persists a source's full session output.
type Sink interface {
	Publish(ctx context.Context, topic string, batch Batch) error
	Snapshot(ctx context.Context, source string, records []models.NewsRecord) error
}

// Sinks combines the concrete delivery paths. Stream is required for
// Publish; Snapshots is required for Snapshot; Archive is optional and
// receives the same snapshot records.
type Sinks struct {
	Stream    *StreamPublisher
	Snapshots *CSVWriter
	Archive   *ArchiveIndexer
}

// Ensure Sinks implements Sink.
var _ Sink = (*Sinks)(nil)

// Publish forwards the batch to the event stream.
func (s *Sinks) Publish(ctx context.Context, topic string, batch Batch) error {
	if s.Stream == nil {
		return nil
	}
	return s.Stream.Publish(ctx, topic, batch)
}

// Snapshot persists the session's records to every configured
// persistence path. The CSV write happens first; archive errors do not
// mask it.
func (s *Sinks) Snapshot(ctx context.Context, source string, records []models.NewsRecord) error {
	var firstErr error
	if s.Snapshots != nil {
		if err := s.Snapshots.Write(source, records); err != nil {
			firstErr = err
		}
	}
	if s.Archive != nil {
		if err := s.Archive.Index(ctx, source, records); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
