package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonesrussell/crc-worker/internal/domain"
	"github.com/jonesrussell/crc-worker/internal/logging"
)

// DefaultResultSize caps hits per query unless the caller raises it.
const DefaultResultSize = 100

// defaultQueryTimeout bounds a single search request.
const defaultQueryTimeout = 100 * time.Second

// Searcher executes one query against the index. Failures to reach the
// index at all are reported as TransportError; any other error means the
// index rejected that one query.
type Searcher interface {
	Search(ctx context.Context, query Query, size int) ([]*domain.CaseHit, error)
}

// Retriever fans the query cascade out against the index and joins the
// results in cascade order.
type Retriever struct {
	client  Searcher
	logger  logging.Logger
	timeout time.Duration
}

// NewRetriever creates a retriever. A zero timeout falls back to the
// default per-query ceiling.
func NewRetriever(client Searcher, logger logging.Logger, timeout time.Duration) *Retriever {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &Retriever{
		client:  client,
		logger:  logger,
		timeout: timeout,
	}
}

// Retrieve dispatches every query concurrently and waits for all of them.
// No query blocks another and there is no early cancellation: a rejected or
// timed-out query degrades to an empty hit set for its slot so siblings
// still contribute. A connection-level failure is different; an unreachable
// index means the run saw nothing, not that no cases exist, so it surfaces
// as an error instead of an empty cascade. The returned slice preserves
// cascade order.
func (r *Retriever) Retrieve(ctx context.Context, queries []Query, size int) ([][]*domain.CaseHit, error) {
	if size <= 0 {
		size = DefaultResultSize
	}

	hitSets := make([][]*domain.CaseHit, len(queries))
	errs := make([]error, len(queries))

	var wg sync.WaitGroup
	for i, query := range queries {
		wg.Add(1)
		go func(i int, query Query) {
			defer wg.Done()

			queryCtx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()

			hits, err := r.client.Search(queryCtx, query, size)
			if err != nil {
				errs[i] = err
				r.logger.Warn("search query failed",
					logging.String("query", query.Label),
					logging.Error(err))
				return
			}
			hitSets[i] = hits
		}(i, query)
	}
	wg.Wait()

	for _, err := range errs {
		var transportErr *TransportError
		if errors.As(err, &transportErr) && !errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("retrieve candidates: %w", err)
		}
	}
	return hitSets, nil
}
