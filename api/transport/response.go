package transport

import "github.com/fastygo/volunteer/repository"

// Envelope wraps every API response.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// PageMeta describes the window returned by a listing.
type PageMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewPage puts the items of p in data and its position in meta.
func NewPage[T any](p repository.Page[T]) Envelope {
	meta := PageMeta{Page: p.Page, PageSize: p.PageSize, Total: p.Total}
	if p.PageSize > 0 {
		meta.TotalPages = (p.Total + p.PageSize - 1) / p.PageSize
	}
	items := p.Items
	if items == nil {
		items = []T{}
	}
	return NewSuccess(items, meta)
}

func NewError(code, message string, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  message,
		Meta:   meta,
	}
}
