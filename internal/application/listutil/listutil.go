package listutil

import (
	"net/url"
	"strconv"
)

// PageParams carries pagination parameters parsed from a request.
type PageParams struct {
	Page    int // 1-indexed page number
	PerPage int // rows per page
}

// DefaultPerPage is the default number of rows per page.
const DefaultPerPage = 50

// MaxPerPage bounds a single page.
const MaxPerPage = 200

// ParsePageParams extracts page and per_page from URL query values.
// PRE: none
// POST: Page >= 1 and 1 <= PerPage <= MaxPerPage
func ParsePageParams(q url.Values) PageParams {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return PageParams{Page: page, PerPage: perPage}
}

// Offset returns the SQL OFFSET for the current page.
// POST: Returns (Page-1) * PerPage
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// ParseFilters keeps only the recognised, non-empty filter keys.
func ParseFilters(q url.Values, keys ...string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, key := range keys {
		if v := q.Get(key); v != "" {
			out[key] = v
		}
	}
	return out
}

// ParseLimit reads ?limit= and falls back to def when it is absent or outside (0, max].
func ParseLimit(q url.Values, def, max int) int {
	n, err := strconv.Atoi(q.Get("limit"))
	if err != nil || n <= 0 || n > max {
		return def
	}
	return n
}
