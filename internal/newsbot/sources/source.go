// Package sources defines the news source interface and the newsdata.io
// implementation used to fetch breaking news per country.
package sources

import (
	"context"
	"fmt"
)

// Article represents a single news article as returned by the provider.
type Article struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description,omitempty"`
	SourceID    string `json:"source_id,omitempty"`
	PubDate     string `json:"pubDate,omitempty"`
}

// Source is the interface that all news data sources must implement.
type Source interface {
	// Name returns the human-readable name of the source.
	Name() string

	// Fetch retrieves the current articles for a country code. Each call
	// goes to the network; results are returned in provider order.
	Fetch(ctx context.Context, country string) ([]Article, error)
}

// FetchError reports a failed request to a news provider.
type FetchError struct {
	Source     string
	Country    string
	StatusCode int
	Body       string
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s fetch %s: %v", e.Source, e.Country, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s fetch %s: status %d: %s", e.Source, e.Country, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("%s fetch %s: %s", e.Source, e.Country, e.Body)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }
