package handler

import (
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/prn-tf/marketplace/internal/repository"
)

// pageParam is the query parameter selecting a page.
const pageParam = "page"

// Page is the paginated list envelope.
type Page[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// pageRequest is a parsed, 1-based page selection.
type pageRequest struct {
	number int
	size   int
}

// parsePage reads ?page=. A missing value selects the first page. Pages
// whose end offset would not fit in an int are invalid.
func parsePage(r *http.Request, size int) (pageRequest, bool) {
	raw := r.URL.Query().Get(pageParam)
	if raw == "" {
		return pageRequest{number: 1, size: size}, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > math.MaxInt/size {
		return pageRequest{}, false
	}
	return pageRequest{number: n, size: size}, true
}

func (p pageRequest) options() repository.ListOptions {
	return repository.ListOptions{Offset: (p.number - 1) * p.size, Limit: p.size}
}

// valid reports whether the page exists. The first page always exists,
// even when empty.
func (p pageRequest) valid(total int64) bool {
	return p.number == 1 || int64(p.options().Offset) < total
}

// newPage builds the envelope with absolute next/previous links.
func newPage[T any](r *http.Request, p pageRequest, total int64, results []T) Page[T] {
	page := Page[T]{Count: total, Results: results}
	if page.Results == nil {
		page.Results = []T{}
	}

	if int64(p.number*p.size) < total {
		next := pageURL(r, p.number+1)
		page.Next = &next
	}
	if p.number > 1 {
		prev := pageURL(r, p.number-1)
		page.Previous = &prev
	}
	return page
}

// pageURL returns the request URL with page set to n. The first page is
// addressed without the parameter.
func pageURL(r *http.Request, n int) string {
	u := url.URL{
		Scheme: requestScheme(r),
		Host:   r.Host,
		Path:   r.URL.Path,
	}
	q := r.URL.Query()
	if n <= 1 {
		q.Del(pageParam)
	} else {
		q.Set(pageParam, strconv.Itoa(n))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func requestScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
