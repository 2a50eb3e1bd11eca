// Package detail fetches case-detail documents and extracts their acts
// tables.
package detail

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonesrussell/crc-worker/internal/domain"
)

// defaultFetchTimeout bounds a single document fetch.
const defaultFetchTimeout = 30 * time.Second

// actsTableSelector locates the acts table in a case detail page.
const actsTableSelector = "table.Acts_table"

// Fetcher downloads case-detail HTML pages and scrapes (act, section) rows.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a fetcher. A nil client gets a default with a bounded
// timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &Fetcher{client: client}
}

// ActSections fetches the case-detail document at url and returns the
// (act, section) rows of its acts table. A document without an acts table
// contributes no rows and no error; only the fetch itself can fail.
func (f *Fetcher) ActSections(ctx context.Context, cnr, url string) ([]domain.ActSectionRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build case detail request for %s: %w", cnr, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch case detail for %s: %w", cnr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch case detail for %s: status %d", cnr, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse case detail for %s: %w", cnr, err)
	}

	return extractActSections(doc, cnr), nil
}

// extractActSections walks the acts table rows. Header rows and rows without
// cells are skipped; the first cell is the act, the second the
// comma-separated section string.
func extractActSections(doc *goquery.Document, cnr string) []domain.ActSectionRow {
	var rows []domain.ActSectionRow

	doc.Find(actsTableSelector).First().Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < 2 {
			return
		}
		rows = append(rows, domain.ActSectionRow{
			CNR:     cnr,
			Act:     strings.TrimSpace(cells.Eq(0).Text()),
			Section: strings.TrimSpace(cells.Eq(1).Text()),
		})
	})

	return rows
}

// SplitSections splits a comma-separated section string into trimmed code
// tokens.
func SplitSections(section string) []string {
	parts := strings.Split(section, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
