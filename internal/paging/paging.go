// Package paging holds the page request shared by catalog and ledger
// queries.
package paging

import (
	"net/http"
	"strconv"
)

const (
	defaultSize = 20
	maxSize     = 100
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// Normalize clamps the request to sane bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = defaultSize
	}
	if p.Size > maxSize {
		p.Size = maxSize
	}
	return p
}

// Limit returns the SQL LIMIT for the normalized page.
func (p Page) Limit() int {
	return p.Normalize().Size
}

// Offset returns the SQL OFFSET for the normalized page.
func (p Page) Offset() int {
	n := p.Normalize()
	return (n.Number - 1) * n.Size
}

// FromRequest reads "page" and "size" query parameters, falling back to
// defaults on absent or malformed values.
func FromRequest(r *http.Request) Page {
	page := Page{Number: 1, Size: defaultSize}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		page.Number = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil {
		page.Size = v
	}
	return page.Normalize()
}
