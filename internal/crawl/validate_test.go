package crawl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsharvest/internal/crawl"
	"github.com/jonesrussell/newsharvest/internal/models"
)

func TestValidateAcceptsCompleteRecord(t *testing.T) {
	t.Parallel()

	validator := crawl.NewValidator("test", nil, nil)

	record, rejection := validator.Validate(rawRecord("headline"))
	require.Nil(t, rejection)
	assert.Equal(t, "headline", record.Title)
	assert.Equal(t, "example", record.Provider)
}

func TestValidateNormalizesWhitespace(t *testing.T) {
	t.Parallel()

	validator := crawl.NewValidator("test", nil, nil)
	raw := rawRecord("headline")
	raw.Title = "  headline \n"
	raw.Provider = "\texample "

	record, rejection := validator.Validate(raw)
	require.Nil(t, rejection)
	assert.Equal(t, "headline", record.Title)
	assert.Equal(t, "example", record.Provider)
}

func TestValidateRejectsMissingFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mutate      func(*models.RawRecord)
		wantMissing []string
	}{
		{
			name:        "missing title",
			mutate:      func(r *models.RawRecord) { r.Title = "" },
			wantMissing: []string{"title"},
		},
		{
			name:        "whitespace-only url",
			mutate:      func(r *models.RawRecord) { r.URL = "   " },
			wantMissing: []string{"url"},
		},
		{
			name: "several fields missing",
			mutate: func(r *models.RawRecord) {
				r.Description = ""
				r.PublishTime = ""
				r.Provider = ""
			},
			wantMissing: []string{"description", "publishtime", "provider"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			validator := crawl.NewValidator("test", nil, nil)
			raw := rawRecord("headline")
			tt.mutate(&raw)

			_, rejection := validator.Validate(raw)
			require.NotNil(t, rejection)
			assert.Equal(t, crawl.ReasonMissingFields, rejection.Reason)
			assert.Equal(t, tt.wantMissing, rejection.Missing)
		})
	}
}

func TestValidateRejectsExtractionError(t *testing.T) {
	t.Parallel()

	validator := crawl.NewValidator("test", nil, nil)
	raw := rawRecord("headline")
	raw.ExtractionError = true

	_, rejection := validator.Validate(raw)
	require.NotNil(t, rejection)
	assert.Equal(t, crawl.ReasonExtractionError, rejection.Reason)
}

func TestDeduperAcceptsFirstRejectsRepeat(t *testing.T) {
	t.Parallel()

	d := crawl.NewDeduper()

	assert.True(t, d.Accept("Market rallies"))
	assert.False(t, d.Accept("Market rallies"))
	assert.False(t, d.Accept("  Market rallies  "), "comparison trims surrounding whitespace")
	assert.True(t, d.Accept("market rallies"), "comparison is case-sensitive")
	assert.Equal(t, 2, d.Len())
}
