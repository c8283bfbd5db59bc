// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-search/pkg/types"
)

// Output formats accepted by Format.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Format writes resp to w in the named format.
func Format(resp types.SearchResponse, format string, w io.Writer) error {
	switch format {
	case "", FormatTable:
		WriteTable(resp, w)
		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(resp); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
	}
}

// WriteTable writes hits as a human-readable table.
func WriteTable(resp types.SearchResponse, w io.Writer) {
	if len(resp.Hits) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %s\n", "Rank", "Title", "Authors", "Year", "Score")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for i, h := range resp.Hits {
		year := ""
		if h.Paper.Year > 0 {
			year = fmt.Sprintf("%d", h.Paper.Year)
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-4s  %.4f\n",
			i+1, truncate(h.Paper.Title, 60), FormatAuthors(h.Paper.Authors), year, h.Score)
	}

	fmt.Fprintf(w, "\n%d results\n", len(resp.Hits))
}

// FormatAuthors abbreviates an author list to fit a table column.
func FormatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

// truncate shortens s to max runes, marking the cut with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
