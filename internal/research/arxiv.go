// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/coursegen/internal/httputil"
	"github.com/pdiddy/coursegen/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivSearcher queries the arXiv API. It suits research-heavy topics
// where recent preprints matter more than general web pages.
type ArxivSearcher struct {
	Client    *http.Client
	UserAgent string
}

// Name returns the provider identifier.
func (b *ArxivSearcher) Name() string { return "arxiv" }

// Search queries the arXiv API and returns the newest matching papers.
func (b *ArxivSearcher) Search(ctx context.Context, query string, maxResults int) ([]types.ResearchResult, error) {
	q := buildArxivQuery(query)
	if q == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	u := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		arxivAPIBase, q, maxResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if b.UserAgent != "" {
		req.Header.Set("User-Agent", b.UserAgent)
	}

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, 2, nil)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var results []types.ResearchResult
	for _, entry := range feed.Entries {
		if entry.ID == "" {
			continue
		}
		r := types.ResearchResult{
			Title:   collapseSpace(entry.Title),
			URL:     strings.TrimSpace(entry.ID),
			Summary: collapseSpace(entry.Summary),
			Source:  "arxiv",
		}
		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			r.Date = t
		}
		results = append(results, r)
	}
	return results, nil
}

// buildArxivQuery turns free text into an all: field query joined with AND.
func buildArxivQuery(text string) string {
	var parts []string
	for _, term := range strings.Fields(text) {
		parts = append(parts, "all:"+url.QueryEscape(term))
	}
	return strings.Join(parts, "+AND+")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string `xml:"id"`
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
}
