// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/coursegen/pkg/types"
)

const defaultTimeout = 30 * time.Second

// NewSearcher builds the provider named by cfg.Provider (duckduckgo by default).
func NewSearcher(cfg types.ResearchConfig) (Searcher, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &http.Client{Timeout: timeout}

	switch strings.ToLower(cfg.Provider) {
	case "", "duckduckgo", "ddg":
		return &DuckDuckGoSearcher{Client: client, UserAgent: cfg.UserAgent}, nil
	case "arxiv":
		return &ArxivSearcher{Client: client, UserAgent: cfg.UserAgent}, nil
	default:
		return nil, fmt.Errorf("unknown research provider %q", cfg.Provider)
	}
}
