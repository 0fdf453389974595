// Package sources manages the configuration and lifecycle of news
// sources for the harvester. Sources are loaded once at startup from a
// YAML file and are immutable for the rest of the run.
package sources

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/jonesrussell/newsharvest/internal/logger"
)

// Kind discriminates how a source is harvested.
type Kind string

const (
	// KindPaginated sources are driven page by page through the
	// extraction engine.
	KindPaginated Kind = "paginated"

	// KindOneShot sources are fetched in a single API call.
	KindOneShot Kind = "oneshot"
)

// Valid reports whether the kind is one of the known values.
func (k Kind) Valid() bool {
	return k == KindPaginated || k == KindOneShot
}

// Schema identifies the record shape the extraction engine is asked to
// produce. Schemas are resolved at configuration-load time; an unknown
// schema is a configuration error, not a runtime dispatch.
type Schema string

// SchemaNews is the common news-article shape: title, description,
// url, publishtime, provider.
const SchemaNews Schema = "news"

// Valid reports whether the schema is one of the known values.
func (s Schema) Valid() bool {
	return s == SchemaNews
}

// Config represents a single source configuration.
type Config struct {
	// Name uniquely identifies the source within a run.
	Name string `mapstructure:"name"`

	// Kind selects the harvest strategy.
	Kind Kind `mapstructure:"kind"`

	// BaseURL is the paginated fetch target; pages are addressed as
	// <base_url>/page-<N>/.
	BaseURL string `mapstructure:"base_url"`

	// APIURL is the one-shot API endpoint.
	APIURL string `mapstructure:"api_url"`

	// Selector is the CSS content-selection rule applied before
	// extraction. Paginated sources only.
	Selector string `mapstructure:"selector"`

	// Schema names the expected record shape.
	Schema Schema `mapstructure:"schema"`

	// CredentialEnv is the environment variable holding the source's
	// API credential.
	CredentialEnv string `mapstructure:"credential_env"`
}

// ErrNoSources is returned when the source file contains no sources.
var ErrNoSources = errors.New("no sources found")

// Sources holds the immutable set of configured sources.
type Sources struct {
	sources []Config
	logger  logger.Interface
}

// Load reads and validates the source table from a YAML file.
// The logger parameter is optional and can be nil.
func Load(path string, log logger.Interface) (*Sources, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read source file %s: %w", path, err)
	}

	var configs []Config
	if err := v.UnmarshalKey("sources", &configs); err != nil {
		return nil, fmt.Errorf("failed to parse source file %s: %w", path, err)
	}

	if len(configs) == 0 {
		return nil, ErrNoSources
	}

	if err := validate(configs); err != nil {
		return nil, err
	}

	if log != nil {
		log.Info("Sources loaded", "path", path, "count", len(configs))
	}

	return &Sources{sources: configs, logger: log}, nil
}

// GetSources returns a copy of all configured sources.
func (s *Sources) GetSources() []Config {
	out := make([]Config, len(s.sources))
	copy(out, s.sources)
	return out
}

// FindByName returns the source with the given name.
func (s *Sources) FindByName(name string) (Config, error) {
	for _, src := range s.sources {
		if src.Name == name {
			return src, nil
		}
	}
	return Config{}, fmt.Errorf("source not found: %s", name)
}

// validate checks the full source table for per-source and cross-source
// invariants.
func validate(configs []Config) error {
	seen := make(map[string]struct{}, len(configs))
	for i := range configs {
		src := &configs[i]
		if err := validateSource(src); err != nil {
			return err
		}
		if _, dup := seen[src.Name]; dup {
			return fmt.Errorf("duplicate source name: %s", src.Name)
		}
		seen[src.Name] = struct{}{}
	}
	return nil
}

// validateSource checks a single source configuration.
func validateSource(src *Config) error {
	if src.Name == "" {
		return errors.New("source name is required")
	}
	if !src.Kind.Valid() {
		return fmt.Errorf("source %s: unknown kind %q", src.Name, src.Kind)
	}
	if src.CredentialEnv == "" {
		return fmt.Errorf("source %s: credential_env is required", src.Name)
	}

	switch src.Kind {
	case KindPaginated:
		if src.BaseURL == "" {
			return fmt.Errorf("source %s: base_url is required for paginated sources", src.Name)
		}
		if src.Selector == "" {
			return fmt.Errorf("source %s: selector is required for paginated sources", src.Name)
		}
		if !src.Schema.Valid() {
			return fmt.Errorf("source %s: unknown schema %q", src.Name, src.Schema)
		}
	case KindOneShot:
		if src.APIURL == "" {
			return fmt.Errorf("source %s: api_url is required for oneshot sources", src.Name)
		}
	}

	return nil
}
