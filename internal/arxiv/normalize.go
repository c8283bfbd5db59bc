// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/paper-search/pkg/types"
)

// ErrParse marks a malformed feed or an entry missing a required field.
var ErrParse = errors.New("arxiv parse error")

// arXiv Atom feed XML structures.
type feed struct {
	Entries []entry `xml:"entry"`
}

type entry struct {
	ID         string     `xml:"id"`
	Title      string     `xml:"title"`
	Summary    string     `xml:"summary"`
	Published  string     `xml:"published"`
	Authors    []author   `xml:"author"`
	Categories []category `xml:"category"`
}

type author struct {
	Name string `xml:"name"`
}

type category struct {
	Term string `xml:"term,attr"`
}

// decodeFeed parses an Atom response body.
func decodeFeed(r io.Reader) (feed, error) {
	var f feed
	if err := xml.NewDecoder(r).Decode(&f); err != nil {
		return feed{}, fmt.Errorf("%w: decoding feed: %v", ErrParse, err)
	}
	return f, nil
}

// normalize converts one feed entry into a PaperRecord. An entry missing
// id, title, summary, published, or every author name is rejected whole.
func normalize(e entry) (types.PaperRecord, error) {
	id := strings.TrimSpace(e.ID)
	if id == "" {
		return types.PaperRecord{}, fmt.Errorf("%w: entry without id", ErrParse)
	}

	missing := func(field string) error {
		return fmt.Errorf("%w: entry %s: missing %s", ErrParse, id, field)
	}

	title := cleanText(e.Title)
	if title == "" {
		return types.PaperRecord{}, missing("title")
	}
	abstract := cleanText(e.Summary)
	if abstract == "" {
		return types.PaperRecord{}, missing("summary")
	}

	// Authors keep the feed's order and count, blanks included; at least
	// one must carry a name.
	authors := make([]string, 0, len(e.Authors))
	named := false
	for _, a := range e.Authors {
		name := strings.TrimSpace(a.Name)
		named = named || name != ""
		authors = append(authors, name)
	}
	if !named {
		return types.PaperRecord{}, missing("author")
	}

	published := strings.TrimSpace(e.Published)
	if published == "" {
		return types.PaperRecord{}, missing("published")
	}
	year, err := parseYear(published)
	if err != nil {
		return types.PaperRecord{}, fmt.Errorf("%w: entry %s: %v", ErrParse, id, err)
	}

	keywords := make([]string, 0, len(e.Categories))
	for _, c := range e.Categories {
		if term := strings.TrimSpace(c.Term); term != "" {
			keywords = append(keywords, term)
		}
	}

	return types.PaperRecord{
		ID:       id,
		Title:    title,
		Authors:  authors,
		Abstract: abstract,
		Year:     year,
		Keywords: keywords,
	}, nil
}

// parseYear reads the 4-digit year prefix of a timestamp like
// "2024-01-15T18:59:59Z".
func parseYear(published string) (int, error) {
	if len(published) < 4 {
		return 0, fmt.Errorf("published %q too short for a year", published)
	}
	year, err := strconv.Atoi(published[:4])
	if err != nil || year < 0 {
		return 0, fmt.Errorf("published %q does not start with a year", published)
	}
	return year, nil
}

// lineBreak matches a line break with the indentation arXiv wraps around it.
var lineBreak = regexp.MustCompile(`[ \t]*\r?\n[ \t]*`)

// cleanText trims surrounding whitespace and collapses each line break into a
// single space.
func cleanText(s string) string {
	return lineBreak.ReplaceAllString(strings.TrimSpace(s), " ")
}
