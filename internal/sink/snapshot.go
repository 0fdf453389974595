package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonesrussell/newsharvest/internal/logger"
	"github.com/jonesrussell/newsharvest/internal/models"
)

// CSVWriter persists a per-source snapshot of a session's records.
// Each run overwrites the previous snapshot for the same source.
type CSVWriter struct {
	dir    string
	logger logger.Interface
}

// NewCSVWriter creates a snapshot writer rooted at dir.
func NewCSVWriter(dir string, log logger.Interface) *CSVWriter {
	if log == nil {
		log = logger.NewNoOp()
	}
	return &CSVWriter{dir: dir, logger: log.WithComponent("snapshot")}
}

// Path returns the snapshot file path for a source.
func (w *CSVWriter) Path(source string) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s_news.csv", source))
}

// Write persists the records for one source. Empty record sets are
// skipped; the pagination engine only flushes non-empty sessions.
func (w *CSVWriter) Write(source string, records []models.NewsRecord) error {
	if len(records) == 0 {
		return nil
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory %s: %w", w.dir, err)
	}

	path := w.Path(source)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot %s: %w", path, err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(models.RequiredFields); err != nil {
		return fmt.Errorf("failed to write snapshot header: %w", err)
	}
	for i := range records {
		r := &records[i]
		row := []string{r.Title, r.Description, r.URL, r.PublishTime, r.Provider}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write snapshot row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush snapshot %s: %w", path, err)
	}

	w.logger.Info("Snapshot written", "source", source, "path", path, "records", len(records))
	return nil
}
