package paging

import "strings"

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Order is the creation-time sort direction of a listing.
type Order string

const (
	OrderAsc  Order = "ASC"
	OrderDesc Order = "DESC"
)

// ParseOrder accepts "asc"/"desc" in any case and falls back to DESC.
func ParseOrder(s string) Order {
	if strings.EqualFold(s, string(OrderAsc)) {
		return OrderAsc
	}
	return OrderDesc
}

// Request holds normalized page/limit values.
type Request struct {
	Page  int
	Limit int
	Order Order
}

// NewRequest clamps page and limit into their valid ranges.
func NewRequest(page, limit int, order Order) Request {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if order != OrderAsc {
		order = OrderDesc
	}
	return Request{Page: page, Limit: limit, Order: order}
}

// Offset returns the number of rows to skip.
func (r Request) Offset() int {
	return (r.Page - 1) * r.Limit
}

// Result is a page of items together with the overall total.
type Result[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// NewResult builds a Result and derives the page count.
func NewResult[T any](items []T, total int64, page, limit int) Result[T] {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Result[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: pages,
	}
}
