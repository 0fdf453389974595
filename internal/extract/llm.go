package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/jonesrussell/newsharvest/internal/logger"
	"github.com/jonesrussell/newsharvest/internal/sources"
)

const (
	// DefaultModel is the extraction model used when none is configured.
	DefaultModel = "claude-sonnet-4-5"

	// DefaultRequestTimeout bounds a single page fetch.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultUserAgent is sent on page fetches.
	DefaultUserAgent = "newsharvest/1.0"

	// maxExtractionTokens bounds the model response size.
	maxExtractionTokens = 4096

	// maxFragmentBytes bounds the HTML fragment handed to the model.
	maxFragmentBytes = 120_000
)

// newsInstruction asks the model for the common news-article shape.
// Field names must match the lowercase JSON keys of RawRecord.
const newsInstruction = "Extract news articles from the HTML content. " +
	"For each article, extract the following fields: " +
	"title (article headline), description (brief summary), " +
	"url (article link), publishtime (publication date/time), " +
	"provider (source/author). " +
	"Return only a valid JSON array of objects with these exact field names in lowercase, " +
	"with no surrounding prose or markdown."

// LLMConfig configures the default extraction engine.
type LLMConfig struct {
	// APIKey is the per-source model credential.
	APIKey string
	// Model overrides DefaultModel when set.
	Model string
	// RequestTimeout overrides DefaultRequestTimeout when set.
	RequestTimeout time.Duration
	// UserAgent overrides DefaultUserAgent when set.
	UserAgent string
}

// LLMEngine is the default Engine implementation: a plain HTTP fetch,
// CSS content selection, and a schema-constrained model call.
type LLMEngine struct {
	httpClient *http.Client
	client     anthropic.Client
	model      string
	userAgent  string
	logger     logger.Interface
}

// Ensure LLMEngine implements Engine.
var _ Engine = (*LLMEngine)(nil)

// NewLLMEngine creates a new extraction engine for one source.
func NewLLMEngine(cfg LLMConfig, log logger.Interface) (*LLMEngine, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("extraction engine requires an API key")
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if log == nil {
		log = logger.NewNoOp()
	}

	return &LLMEngine{
		httpClient: &http.Client{Timeout: timeout},
		client:     anthropic.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:      model,
		userAgent:  userAgent,
		logger:     log.WithComponent("extract"),
	}, nil
}

// Render fetches a page and returns its raw HTML. Used for the
// terminal-marker probe; no extraction is attempted.
func (e *LLMEngine) Render(ctx context.Context, url string) (string, error) {
	return e.fetch(ctx, url)
}

// Extract fetches a page, narrows it to the configured selector, and
// asks the model for structured records matching the requested schema.
func (e *LLMEngine) Extract(ctx context.Context, req Request) (Result, error) {
	html, err := e.fetch(ctx, req.URL)
	if err != nil {
		return Result{ErrorMessage: err.Error()}, err
	}

	fragment, err := selectContent(html, req.Selector)
	if err != nil {
		return Result{ErrorMessage: err.Error()}, err
	}
	if fragment == "" {
		// Nothing matched the selector; hand the model nothing rather
		// than the whole page.
		return Result{Success: true, Content: "[]"}, nil
	}
	if len(fragment) > maxFragmentBytes {
		fragment = fragment[:maxFragmentBytes]
	}

	content, err := e.complete(ctx, req.Schema, fragment)
	if err != nil {
		return Result{ErrorMessage: err.Error()}, err
	}

	return Result{Success: true, Content: content}, nil
}

// fetch performs a single GET and returns the response body.
func (e *LLMEngine) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read body of %s: %w", url, err)
	}

	return string(body), nil
}

// complete runs the structured-extraction model call.
func (e *LLMEngine) complete(ctx context.Context, schema sources.Schema, fragment string) (string, error) {
	instruction := instructionFor(schema)

	started := time.Now()
	msg, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(e.model),
		MaxTokens: maxExtractionTokens,
		System: []anthropic.TextBlockParam{
			{Text: instruction},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(fragment)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("extraction call failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	e.logger.Debug("Extraction call completed",
		"model", e.model,
		"duration", time.Since(started),
		"output_bytes", sb.Len())

	return strings.TrimSpace(sb.String()), nil
}

// instructionFor returns the extraction instruction for a schema. The
// schema set is closed and validated at configuration-load time.
func instructionFor(schema sources.Schema) string {
	switch schema {
	case sources.SchemaNews:
		return newsInstruction
	default:
		return newsInstruction
	}
}

// selectContent narrows a page to the elements matching the CSS rule
// and returns their combined outer HTML. An empty selector keeps the
// whole page.
func selectContent(html, selector string) (string, error) {
	if selector == "" {
		return html, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse page HTML: %w", err)
	}

	var sb strings.Builder
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		if fragment, htmlErr := goquery.OuterHtml(sel); htmlErr == nil {
			sb.WriteString(fragment)
			sb.WriteString("\n")
		}
	})

	return strings.TrimSpace(sb.String()), nil
}
