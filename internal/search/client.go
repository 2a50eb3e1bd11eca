package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/jonesrussell/crc-worker/internal/domain"
)

// Config holds search index connection settings. CloudID+APIKey is the
// managed deployment path; URL is the self-hosted fallback.
type Config struct {
	CloudID    string
	APIKey     string
	URL        string
	Username   string
	Password   string
	Index      string
	MaxRetries int
}

// Client wraps the Elasticsearch client for case record searches.
type Client struct {
	es    *es.Client
	index string
}

// TransportError marks a failure to reach the index at all, as opposed to a
// query the index received and rejected. An unreachable index aborts the
// whole run; a rejected query only degrades its own cascade slot.
type TransportError struct {
	Label string
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("search %s: index unreachable: %v", e.Label, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NewClient creates a search client. An unreachable index surfaces on the
// first Ping, not here; construction only fails on bad configuration.
func NewClient(cfg Config) (*Client, error) {
	esCfg := es.Config{
		CloudID:    cfg.CloudID,
		APIKey:     cfg.APIKey,
		Username:   cfg.Username,
		Password:   cfg.Password,
		MaxRetries: cfg.MaxRetries,
	}
	if cfg.URL != "" {
		esCfg.Addresses = []string{cfg.URL}
	}

	client, err := es.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	return &Client{es: client, index: cfg.Index}, nil
}

// Ping verifies the index is reachable. A connection error here is fatal to
// the run.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Info(c.es.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("connect to elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch info: %s", res.String())
	}
	return nil
}

// Search executes one cascade query and returns the decoded hits.
func (c *Client) Search(ctx context.Context, query Query, size int) ([]*domain.CaseHit, error) {
	body, err := json.Marshal(query.Body)
	if err != nil {
		return nil, fmt.Errorf("marshal query %s: %w", query.Label, err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(body)),
		c.es.Search.WithSize(size),
	)
	if err != nil {
		return nil, &TransportError{Label: query.Label, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", query.Label, res.String())
	}

	var searchResult struct {
		Hits struct {
			Hits []struct {
				Source domain.CaseHit `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&searchResult); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	hits := make([]*domain.CaseHit, 0, len(searchResult.Hits.Hits))
	for _, hit := range searchResult.Hits.Hits {
		h := hit.Source
		hits = append(hits, &h)
	}
	return hits, nil
}
