package crawl

import (
	"github.com/jonesrussell/newsharvest/internal/logger"
	"github.com/jonesrussell/newsharvest/internal/metrics"
	"github.com/jonesrussell/newsharvest/internal/models"
)

// Validator enforces the required-field contract. No partial record
// ever passes it.
type Validator struct {
	logger  logger.Interface
	metrics *metrics.Metrics
	source  string
}

// NewValidator creates a validator for one source.
func NewValidator(source string, log logger.Interface, m *metrics.Metrics) *Validator {
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Validator{
		logger:  log.WithSource(source),
		metrics: m,
		source:  source,
	}
}

// Validate checks one raw record against the required-field contract
// and returns the normalized record. Rejections carry a reason code and
// are logged with the specific missing fields.
func (v *Validator) Validate(raw models.RawRecord) (models.NewsRecord, *ValidationError) {
	if raw.ExtractionError {
		v.metrics.RecordRejected(v.source, ReasonExtractionError)
		v.logger.Warn("Record flagged by extraction engine, dropping",
			"reason", ReasonExtractionError,
			"title", truncate(raw.Title, titleLogLimit))
		return models.NewsRecord{}, &ValidationError{Reason: ReasonExtractionError}
	}

	if missing := raw.MissingFields(); len(missing) > 0 {
		v.metrics.RecordRejected(v.source, ReasonMissingFields)
		v.logger.Warn("Record missing required fields, dropping",
			"reason", ReasonMissingFields,
			"missing", missing,
			"title", truncate(raw.Title, titleLogLimit))
		return models.NewsRecord{}, &ValidationError{Reason: ReasonMissingFields, Missing: missing}
	}

	return raw.Normalize(), nil
}

// titleLogLimit bounds titles in diagnostics for readability.
const titleLogLimit = 50

// truncate shortens a string for log output.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
