package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultNewsDataURL is the newsdata.io latest-news endpoint.
const DefaultNewsDataURL = "https://newsdata.io/api/1/news"

// NewsDataConfig holds the query parameters for newsdata.io.
type NewsDataConfig struct {
	APIKey   string
	BaseURL  string
	Category string
	Language string
	Timeout  time.Duration
}

// NewsDataSource fetches top headlines from newsdata.io.
type NewsDataSource struct {
	config NewsDataConfig
	client *http.Client
}

// NewNewsDataSource creates a newsdata.io source. Empty fields fall back to
// the public endpoint, the "top" category, English and a 10 second timeout.
func NewNewsDataSource(cfg NewsDataConfig) *NewsDataSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultNewsDataURL
	}
	if cfg.Category == "" {
		cfg.Category = "top"
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &NewsDataSource{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (n *NewsDataSource) Name() string { return "newsdata" }

type newsDataResponse struct {
	Status  string    `json:"status"`
	Results []Article `json:"results"`
	Message string    `json:"message,omitempty"`
}

func (n *NewsDataSource) Fetch(ctx context.Context, country string) ([]Article, error) {
	u, err := url.Parse(n.config.BaseURL)
	if err != nil {
		return nil, n.fail(country, fmt.Errorf("parse base url: %w", err))
	}
	q := u.Query()
	q.Set("apikey", n.config.APIKey)
	q.Set("country", country)
	q.Set("category", n.config.Category)
	q.Set("language", n.config.Language)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, n.fail(country, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, n.fail(country, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, n.fail(country, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{
			Source:     n.Name(),
			Country:    country,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), 512),
		}
	}

	var data newsDataResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, n.fail(country, fmt.Errorf("decode response: %w", err))
	}
	if data.Status == "error" {
		return nil, &FetchError{Source: n.Name(), Country: country, Body: truncate(string(body), 512)}
	}

	return data.Results, nil
}

func (n *NewsDataSource) fail(country string, err error) *FetchError {
	return &FetchError{Source: n.Name(), Country: country, Err: err}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
