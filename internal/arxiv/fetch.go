// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv pages through the arXiv export API and normalizes Atom
// entries into paper records.
package arxiv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/paper-search/internal/httputil"
	"github.com/pdiddy/paper-search/pkg/types"
)

// arxivAPIBase is the arXiv export endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "http://export.arxiv.org/api/query"

const (
	defaultQuery    = "all"
	defaultPageSize = 100
	// arXiv asks API clients to wait three seconds between calls.
	defaultDelay = 3 * time.Second
)

// ErrFetch marks a failed page request. Pages that return a non-200 status
// are skipped; transport failures abort the fetch.
var ErrFetch = errors.New("arxiv fetch error")

// Fetcher retrieves recent submissions from arXiv, newest first.
type Fetcher struct {
	Client    *http.Client
	Query     string
	PageSize  int
	UserAgent string

	// Limiter spaces page requests. Nil means no spacing.
	Limiter *rate.Limiter

	// Strict makes entry and page parse failures fatal instead of logged
	// and skipped.
	Strict bool
}

// NewFetcher builds a Fetcher from configuration, filling defaults.
func NewFetcher(cfg types.ArxivConfig) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	query := cfg.Query
	if query == "" {
		query = defaultQuery
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	delay := cfg.Delay
	if delay < 0 {
		delay = 0
	} else if delay == 0 {
		delay = defaultDelay
	}

	return &Fetcher{
		Client:    &http.Client{Timeout: timeout},
		Query:     query,
		PageSize:  pageSize,
		UserAgent: cfg.UserAgent,
		Limiter:   rate.NewLimiter(rate.Every(delay), 1),
	}
}

// FetchResult holds the normalized papers and page statistics.
type FetchResult struct {
	Papers         []types.PaperRecord
	Pages          int
	FailedPages    int
	SkippedEntries int
}

// Fetch requests pages of PageSize entries until max papers have been
// requested or a page comes back empty. The final page asks only for the
// remainder, so max=250 issues requests for 100, 100 and 50 entries.
// Progress and skipped pages or entries are reported on w.
func (f *Fetcher) Fetch(ctx context.Context, max int, w io.Writer) (FetchResult, error) {
	var res FetchResult
	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	for start := 0; start < max; start += pageSize {
		n := min(pageSize, max-start)

		entries, err := f.fetchPage(ctx, start, n, w)
		res.Pages++
		if err != nil {
			switch {
			case errors.Is(err, ErrFetch) && ctx.Err() == nil && !isTransport(err):
				fmt.Fprintf(w, "Error fetching data from arXiv at start=%d: %v\n", start, err)
				res.FailedPages++
				continue
			case errors.Is(err, ErrParse) && !f.Strict:
				fmt.Fprintf(w, "Skipping unreadable page at start=%d: %v\n", start, err)
				res.FailedPages++
				continue
			default:
				return res, err
			}
		}

		if len(entries) == 0 {
			break
		}

		for _, e := range entries {
			paper, err := normalize(e)
			if err != nil {
				if f.Strict {
					return res, err
				}
				fmt.Fprintf(w, "Skipping entry: %v\n", err)
				res.SkippedEntries++
				continue
			}
			res.Papers = append(res.Papers, paper)
		}
		fmt.Fprintf(w, "Fetched %d papers starting from %d.\n", len(entries), start)
	}

	return res, nil
}

// transportError wraps a failure to get any response at all.
type transportError struct{ err error }

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

func isTransport(err error) bool {
	var te *transportError
	return errors.As(err, &te)
}

func (f *Fetcher) fetchPage(ctx context.Context, start, n int, w io.Writer) ([]entry, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	params := url.Values{
		"search_query": {f.Query},
		"start":        {strconv.Itoa(start)},
		"max_results":  {strconv.Itoa(n)},
		"sortBy":       {"submittedDate"},
		"sortOrder":    {"descending"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, arxivAPIBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, 0, w)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, &transportError{err})
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: arXiv API returned HTTP %d", ErrFetch, resp.StatusCode)
	}

	fd, err := decodeFeed(resp.Body)
	if err != nil {
		return nil, err
	}
	return fd.Entries, nil
}
