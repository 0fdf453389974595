package sink

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/jonesrussell/newsharvest/internal/logger"
	"github.com/jonesrussell/newsharvest/internal/models"
)

const (
	// archiveIndexTimeout bounds one document index call.
	archiveIndexTimeout = 10 * time.Second

	// defaultIndexPrefix prefixes per-source archive indexes.
	defaultIndexPrefix = "newsharvest"
)

// ArchiveConfig holds configuration for the optional Elasticsearch
// archive.
type ArchiveConfig struct {
	Addresses   []string
	Username    string
	Password    string `json:"-"`
	APIKey      string `json:"-"`
	IndexPrefix string
}

// ArchiveIndexer persists snapshot records into a per-source
// Elasticsearch index. The archive is an optional second persistence
// path next to the CSV snapshot.
type ArchiveIndexer struct {
	client *es.Client
	prefix string
	logger logger.Interface
}

// archivedRecord is the indexed document shape.
type archivedRecord struct {
	models.NewsRecord
	Source     string    `json:"harvest_source"`
	ArchivedAt time.Time `json:"archived_at"`
}

// NewArchiveIndexer creates an archive indexer.
func NewArchiveIndexer(cfg ArchiveConfig, log logger.Interface) (*ArchiveIndexer, error) {
	clientConfig := es.Config{
		Addresses: cfg.Addresses,
	}
	if cfg.APIKey != "" {
		clientConfig.APIKey = cfg.APIKey
	} else if cfg.Username != "" && cfg.Password != "" {
		clientConfig.Username = cfg.Username
		clientConfig.Password = cfg.Password
	}

	client, err := es.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	prefix := cfg.IndexPrefix
	if prefix == "" {
		prefix = defaultIndexPrefix
	}
	if log == nil {
		log = logger.NewNoOp()
	}

	return &ArchiveIndexer{
		client: client,
		prefix: prefix,
		logger: log.WithComponent("archive"),
	}, nil
}

// IndexName returns the archive index for a source.
func (a *ArchiveIndexer) IndexName(source string) string {
	return fmt.Sprintf("%s-%s", a.prefix, source)
}

// Index writes the session's records into the source's archive index.
// Document IDs are derived from the record URL so re-runs overwrite
// rather than duplicate.
func (a *ArchiveIndexer) Index(ctx context.Context, source string, records []models.NewsRecord) error {
	index := a.IndexName(source)

	for i := range records {
		record := archivedRecord{
			NewsRecord: records[i],
			Source:     source,
			ArchivedAt: time.Now().UTC(),
		}
		if err := a.indexOne(ctx, index, documentID(record.URL), record); err != nil {
			return err
		}
	}

	a.logger.Info("Archive updated", "source", source, "index", index, "records", len(records))
	return nil
}

// indexOne indexes a single document.
func (a *ArchiveIndexer) indexOne(ctx context.Context, index, id string, document any) error {
	ctx, cancel := context.WithTimeout(ctx, archiveIndexTimeout)
	defer cancel()

	body, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("failed to marshal archive document: %w", err)
	}

	res, err := a.client.Index(
		index,
		bytes.NewReader(body),
		a.client.Index.WithContext(ctx),
		a.client.Index.WithDocumentID(id),
	)
	if err != nil {
		return fmt.Errorf("failed to index archive document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return fmt.Errorf("archive index %s rejected document: %s", index, string(msg))
	}

	return nil
}

// documentID derives a stable document identifier from a record URL.
func documentID(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:16])
}
