// Package newsdata provides the client for the newsdata.io one-shot
// search API. Provider field names are mapped mechanically onto the
// common record schema; no extraction engine is involved.
package newsdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jonesrussell/newsharvest/internal/logger"
	"github.com/jonesrussell/newsharvest/internal/models"
)

const (
	// DefaultCountry filters results by country code.
	DefaultCountry = "in"

	// DefaultLanguage filters results by language code.
	DefaultLanguage = "en"

	// DefaultCategory filters results by category.
	DefaultCategory = "top"

	// defaultTimeout bounds the API call.
	defaultTimeout = 30 * time.Second

	// statusSuccess is the API's success marker.
	statusSuccess = "success"
)

// Config holds client configuration.
type Config struct {
	APIURL   string
	APIKey   string `json:"-"`
	Country  string
	Language string
	Category string
}

// apiResponse is the provider's response envelope.
type apiResponse struct {
	Status  string     `json:"status"`
	Message string     `json:"message"`
	Results []apiEntry `json:"results"`
}

// apiEntry is one item with provider-specific field names.
type apiEntry struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	PubDate     string `json:"pubDate"`
	SourceID    string `json:"source_id"`
}

// Client fetches the latest items from the search API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     logger.Interface
}

// NewClient creates a client for one configured one-shot source.
func NewClient(cfg Config, log logger.Interface) *Client {
	if cfg.Country == "" {
		cfg.Country = DefaultCountry
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.Category == "" {
		cfg.Category = DefaultCategory
	}
	if log == nil {
		log = logger.NewNoOp()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     log.WithComponent("newsdata"),
	}
}

// Fetch performs the single API call and maps the results onto the
// common raw-record shape: link becomes url, pubDate becomes
// publishtime, source_id becomes provider.
func (c *Client) Fetch(ctx context.Context) ([]models.RawRecord, error) {
	endpoint, err := url.Parse(c.cfg.APIURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %s: %w", c.cfg.APIURL, err)
	}

	query := endpoint.Query()
	query.Set("apikey", c.cfg.APIKey)
	query.Set("country", c.cfg.Country)
	query.Set("language", c.cfg.Language)
	query.Set("category", c.cfg.Category)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build API request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode API response: %w", err)
	}
	if envelope.Status != statusSuccess {
		return nil, fmt.Errorf("API error: %s", envelope.Message)
	}

	records := make([]models.RawRecord, 0, len(envelope.Results))
	for i := range envelope.Results {
		entry := &envelope.Results[i]
		provider := entry.SourceID
		if provider == "" {
			provider = "newsdata"
		}
		records = append(records, models.RawRecord{
			Title:       entry.Title,
			Description: entry.Description,
			URL:         entry.Link,
			PublishTime: entry.PubDate,
			Provider:    provider,
		})
	}

	c.logger.Debug("Fetched API results", "count", len(records))
	return records, nil
}
