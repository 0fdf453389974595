package crawl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsharvest/internal/config"
	"github.com/jonesrussell/newsharvest/internal/crawl"
	"github.com/jonesrussell/newsharvest/internal/extract"
	"github.com/jonesrussell/newsharvest/internal/sources"
)

func testFactory(t *testing.T) crawl.RunnerFactory {
	t.Helper()
	return crawl.NewRunnerFactory(crawl.FactoryDeps{
		Crawl: config.CrawlConfig{
			MaxPages:    config.DefaultMaxPages,
			MaxAttempts: config.DefaultMaxAttempts,
		},
		Topic: "news-events",
		Sink:  newMemorySink(),
		Engine: func(apiKey string, _ sources.Config) (extract.Engine, error) {
			assert.Equal(t, "secret", apiKey)
			return &stubEngine{}, nil
		},
	})
}

func TestFactoryBuildsPaginatedRunner(t *testing.T) {
	t.Setenv("TEST_EXTRACT_KEY", "secret")

	runner, err := testFactory(t)(sources.Config{
		Name:          "example",
		Kind:          sources.KindPaginated,
		BaseURL:       "https://example.com/news",
		Selector:      "li.article",
		Schema:        sources.SchemaNews,
		CredentialEnv: "TEST_EXTRACT_KEY",
	})

	require.NoError(t, err)
	assert.IsType(t, &crawl.Session{}, runner)
}

func TestFactoryBuildsOneShotRunner(t *testing.T) {
	t.Setenv("TEST_API_KEY", "secret")

	runner, err := testFactory(t)(sources.Config{
		Name:          "api",
		Kind:          sources.KindOneShot,
		APIURL:        "https://newsdata.example/api/1/latest",
		CredentialEnv: "TEST_API_KEY",
	})

	require.NoError(t, err)
	assert.IsType(t, &crawl.OneShotRunner{}, runner)
}

func TestFactoryRejectsMissingCredential(t *testing.T) {
	t.Setenv("TEST_UNSET_KEY", "")

	_, err := testFactory(t)(sources.Config{
		Name:          "example",
		Kind:          sources.KindPaginated,
		CredentialEnv: "TEST_UNSET_KEY",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, crawl.ErrMissingCredential)
	assert.Contains(t, err.Error(), "TEST_UNSET_KEY")
}

func TestFactoryRejectsUnknownKind(t *testing.T) {
	t.Setenv("TEST_EXTRACT_KEY", "secret")

	_, err := testFactory(t)(sources.Config{
		Name:          "odd",
		Kind:          sources.Kind("rss"),
		CredentialEnv: "TEST_EXTRACT_KEY",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported kind")
}
