// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ResearchResult is one web or paper snippet returned by a research provider.
type ResearchResult struct {
	// Title is the page or paper title.
	Title string `json:"title" yaml:"title"`

	// URL links to the source.
	URL string `json:"url" yaml:"url"`

	// Summary is a short body or abstract.
	Summary string `json:"summary" yaml:"summary"`

	// Source identifies which provider found this result (e.g. "duckduckgo", "arxiv").
	Source string `json:"source" yaml:"source"`

	// Date is the publication date when the provider reports one.
	Date time.Time `json:"date,omitempty" yaml:"date,omitempty"`
}
