package sources_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/newsharvest/internal/sources"
)

func writeSourceFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validTable = `
sources:
  - name: moneycontrol
    kind: paginated
    base_url: https://example.com/business
    selector: li.clearfix
    schema: news
    credential_env: EXTRACT_API_KEY
  - name: newsdata
    kind: oneshot
    api_url: https://newsdata.example/api/1/latest
    credential_env: NEWSDATA_API_KEY
`

func TestLoadValidTable(t *testing.T) {
	t.Parallel()

	srcs, err := sources.Load(writeSourceFile(t, validTable), nil)
	require.NoError(t, err)

	configs := srcs.GetSources()
	require.Len(t, configs, 2)
	assert.Equal(t, sources.KindPaginated, configs[0].Kind)
	assert.Equal(t, sources.SchemaNews, configs[0].Schema)
	assert.Equal(t, sources.KindOneShot, configs[1].Kind)
	assert.Equal(t, "NEWSDATA_API_KEY", configs[1].CredentialEnv)
}

func TestFindByName(t *testing.T) {
	t.Parallel()

	srcs, err := sources.Load(writeSourceFile(t, validTable), nil)
	require.NoError(t, err)

	src, err := srcs.FindByName("newsdata")
	require.NoError(t, err)
	assert.Equal(t, sources.KindOneShot, src.Kind)

	_, err = srcs.FindByName("missing")
	assert.Error(t, err)
}

func TestLoadEmptyTable(t *testing.T) {
	t.Parallel()

	_, err := sources.Load(writeSourceFile(t, "sources: []\n"), nil)
	assert.ErrorIs(t, err, sources.ErrNoSources)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := sources.Load(filepath.Join(t.TempDir(), "nope.yml"), nil)
	assert.Error(t, err)
}

func TestLoadRejectsInvalidTables(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "duplicate names",
			content: `
sources:
  - name: dup
    kind: oneshot
    api_url: https://example.com/api
    credential_env: KEY
  - name: dup
    kind: oneshot
    api_url: https://example.com/api
    credential_env: KEY
`,
			wantErr: "duplicate source name",
		},
		{
			name: "unknown kind",
			content: `
sources:
  - name: odd
    kind: rss
    credential_env: KEY
`,
			wantErr: "unknown kind",
		},
		{
			name: "paginated without selector",
			content: `
sources:
  - name: partial
    kind: paginated
    base_url: https://example.com/news
    schema: news
    credential_env: KEY
`,
			wantErr: "selector is required",
		},
		{
			name: "paginated with unknown schema",
			content: `
sources:
  - name: odd
    kind: paginated
    base_url: https://example.com/news
    selector: li
    schema: recipes
    credential_env: KEY
`,
			wantErr: "unknown schema",
		},
		{
			name: "oneshot without api url",
			content: `
sources:
  - name: api
    kind: oneshot
    credential_env: KEY
`,
			wantErr: "api_url is required",
		},
		{
			name: "missing credential env",
			content: `
sources:
  - name: nocred
    kind: oneshot
    api_url: https://example.com/api
`,
			wantErr: "credential_env is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := sources.Load(writeSourceFile(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
