package filters

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 10
	DefaultPage  = 1
	// limits at or below this value are rejected
	minLimitExclusive = 5
)

const (
	LimitMessage = "Limit must be a positive integer, greater than 5"
	PageMessage  = "Page must be 1 or a positive integer"
)

var (
	// ErrNoResults is returned when the filters match no row at all.
	ErrNoResults = errors.New("no results found")
	// ErrNoMoreResults is returned when the page is past the last one.
	ErrNoMoreResults = errors.New("no more results")
)

// QueryError is a malformed query parameter. Its message is client facing.
type QueryError struct {
	Param   string
	Message string
}

func (e *QueryError) Error() string {
	return e.Message
}

// Page is a 1-based page window.
type Page struct {
	Number int
	Limit  int
}

// Offset is the number of rows before the page. It saturates instead of
// overflowing, so a far page simply lands past the last row.
func (p Page) Offset() int {
	skipped := p.Number - 1
	if skipped <= 0 || p.Limit <= 0 {
		return 0
	}
	if skipped > math.MaxInt/p.Limit {
		return math.MaxInt
	}
	return skipped * p.Limit
}

// ParsePage reads limit and page from the query string.
func ParsePage(q url.Values) (Page, error) {
	page := Page{Number: DefaultPage, Limit: DefaultLimit}

	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= minLimitExclusive {
			return Page{}, &QueryError{Param: "limit", Message: LimitMessage}
		}
		page.Limit = limit
	}

	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		number, err := strconv.Atoi(raw)
		if err != nil || number < 1 {
			return Page{}, &QueryError{Param: "page", Message: PageMessage}
		}
		page.Number = number
	}

	return page, nil
}

// Pagination is the pagination block of a list response.
type Pagination struct {
	Total    int64 `json:"total"`
	Pages    int   `json:"pages"`
	Current  int   `json:"current"`
	Limit    int   `json:"limit"`
	Previous *int  `json:"previous,omitempty"`
	Next     *int  `json:"next,omitempty"`
}

// Paginate computes page numbers for total matching rows. It fails with
// ErrNoResults when total is zero and ErrNoMoreResults when the requested page
// is past the last one. With legacyNext the first page always offers page 2 as
// next, as older clients expect.
func Paginate(total int64, page Page, legacyNext bool) (Pagination, error) {
	if total == 0 {
		return Pagination{}, ErrNoResults
	}

	// divide first; total+limit-1 overflows for a limit near MaxInt
	limit := int64(page.Limit)
	pages := int(total / limit)
	if total%limit != 0 {
		pages++
	}
	if page.Number > pages {
		return Pagination{}, ErrNoMoreResults
	}

	p := Pagination{
		Total:   total,
		Pages:   pages,
		Current: page.Number,
		Limit:   page.Limit,
	}
	if page.Number > 1 {
		prev := page.Number - 1
		p.Previous = &prev
	}
	switch {
	case page.Number < pages:
		next := page.Number + 1
		p.Next = &next
	case legacyNext && page.Number == 1:
		next := 2
		p.Next = &next
	}
	return p, nil
}
