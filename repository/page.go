package repository

import "github.com/fastygo/volunteer/domain"

// MaxPageSize caps how many rows a single page may return.
const MaxPageSize = 100

// Pagination selects a 1-based page. The zero value means "no paging" and is
// only used by callers that need the full result set.
type Pagination struct {
	Page     int
	PageSize int
}

// Unpaged reports whether the caller asked for every row.
func (p Pagination) Unpaged() bool {
	return p.Page == 0 && p.PageSize == 0
}

// Validate rejects pages below 1 and non-positive page sizes.
func (p Pagination) Validate() error {
	if p.Page < 1 || p.PageSize <= 0 {
		return domain.NewError(domain.ErrCodeValidationFailed, "page must be >= 1 and page size > 0")
	}
	return nil
}

// Limit returns the clamped page size.
func (p Pagination) Limit() int {
	if p.PageSize <= 0 || p.PageSize > MaxPageSize {
		return MaxPageSize
	}
	return p.PageSize
}

// Offset returns the number of rows skipped before the page starts.
func (p Pagination) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

// Page is one slice of a listing plus the total number of matches.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// NewPage assembles a page from the already-sliced items.
func NewPage[T any](items []T, total int, p Pagination) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Page: p.Page, PageSize: p.PageSize}
}

// Slice cuts the requested window out of a fully materialized result.
func Slice[T any](all []T, p Pagination) Page[T] {
	if p.Unpaged() {
		return NewPage(all, len(all), p)
	}
	start := p.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + p.Limit()
	if end > len(all) {
		end = len(all)
	}
	return NewPage(all[start:end], len(all), p)
}
