package crawl

import (
	"fmt"
	"os"

	"github.com/jonesrussell/newsharvest/internal/config"
	"github.com/jonesrussell/newsharvest/internal/extract"
	"github.com/jonesrussell/newsharvest/internal/logger"
	"github.com/jonesrussell/newsharvest/internal/metrics"
	"github.com/jonesrussell/newsharvest/internal/newsdata"
	"github.com/jonesrussell/newsharvest/internal/sink"
	"github.com/jonesrussell/newsharvest/internal/sources"
)

// EngineBuilder constructs the extraction engine for one paginated
// source. The default builder creates the model-backed engine; tests
// substitute a fake.
type EngineBuilder func(apiKey string, src sources.Config) (extract.Engine, error)

// FactoryDeps holds the shared collaborators from which per-source
// runners are assembled.
type FactoryDeps struct {
	Crawl   config.CrawlConfig
	Extract config.ExtractConfig
	Topic   string
	Sink    sink.Sink
	Logger  logger.Interface
	Metrics *metrics.Metrics

	// Engine overrides the default extraction engine builder.
	Engine EngineBuilder
}

// NewRunnerFactory returns the factory the orchestrator uses to build
// a runner for each configured source. Credential resolution happens
// here, per source, so a missing credential fails only that source.
func NewRunnerFactory(deps FactoryDeps) RunnerFactory {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOp()
	}
	buildEngine := deps.Engine
	if buildEngine == nil {
		buildEngine = func(apiKey string, _ sources.Config) (extract.Engine, error) {
			return extract.NewLLMEngine(extract.LLMConfig{
				APIKey:         apiKey,
				Model:          deps.Extract.Model,
				RequestTimeout: deps.Extract.RequestTimeout,
				UserAgent:      deps.Extract.UserAgent,
			}, log)
		}
	}

	return func(src sources.Config) (SourceRunner, error) {
		credential := os.Getenv(src.CredentialEnv)
		if credential == "" {
			return nil, fmt.Errorf("%w: %s is not set for source %s",
				ErrMissingCredential, src.CredentialEnv, src.Name)
		}

		switch src.Kind {
		case sources.KindPaginated:
			engine, err := buildEngine(credential, src)
			if err != nil {
				return nil, fmt.Errorf("failed to build extraction engine for %s: %w", src.Name, err)
			}
			return NewSession(SessionConfig{
				Source:    src.Name,
				Topic:     deps.Topic,
				MaxPages:  deps.Crawl.MaxPages,
				PageDelay: deps.Crawl.PageDelay,
				Fetcher:   NewPageFetcher(engine, src, log),
				Retrier:   NewRetrier(src.Name, deps.Crawl.MaxAttempts, deps.Crawl.RetryDelay, log, deps.Metrics),
				Validator: NewValidator(src.Name, log, deps.Metrics),
				Sink:      deps.Sink,
				Logger:    log,
				Metrics:   deps.Metrics,
			}), nil

		case sources.KindOneShot:
			client := newsdata.NewClient(newsdata.Config{
				APIURL: src.APIURL,
				APIKey: credential,
			}, log)
			return NewOneShotRunner(OneShotConfig{
				Source:    src.Name,
				Topic:     deps.Topic,
				Fetcher:   client,
				Validator: NewValidator(src.Name, log, deps.Metrics),
				Sink:      deps.Sink,
				Logger:    log,
				Metrics:   deps.Metrics,
			}), nil

		default:
			return nil, fmt.Errorf("source %s has unsupported kind %q", src.Name, src.Kind)
		}
	}
}
