package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Default pagination values applied when the caller leaves them unset.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Filter narrows a product listing. Zero/nil fields impose no constraint;
// set fields are combined with AND.
type Filter struct {
	Search   string
	Category Category
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Active   *bool
}

// Matches reports whether p satisfies every set predicate, applied in the
// order search, category, minPrice, maxPrice, active.
func (f *Filter) Matches(p *Product) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.Description), needle) {
			return false
		}
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.Active != nil && p.Active != *f.Active {
		return false
	}
	return true
}

// Pagination selects one page of a filtered listing. Page is 1-based.
type Pagination struct {
	Page     int
	PageSize int
}

// Normalize fills unset values with defaults. A page below 1 is not fixed
// up here: that is a caller error and rejected by the adapters.
func (p Pagination) Normalize() Pagination {
	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	return p
}

// PaginatedResult is the envelope for one page of products. The metadata
// fields are always derived from totalItems and the pagination parameters,
// never set independently.
type PaginatedResult struct {
	Data        []Product `json:"data"`
	CurrentPage int       `json:"currentPage"`
	PageSize    int       `json:"pageSize"`
	TotalItems  int       `json:"totalItems"`
	TotalPages  int       `json:"totalPages"`
	HasNext     bool      `json:"hasNext"`
	HasPrevious bool      `json:"hasPrevious"`
}

// NewPaginatedResult derives the paging metadata for one page slice.
func NewPaginatedResult(data []Product, page, pageSize, totalItems int) *PaginatedResult {
	if data == nil {
		data = []Product{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalItems + pageSize - 1) / pageSize
	}
	return &PaginatedResult{
		Data:        data,
		CurrentPage: page,
		PageSize:    pageSize,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

// EmptyPage returns a zero-item first page, used by listing callers that
// swallow fetch failures rather than surfacing them.
func EmptyPage(pageSize int) *PaginatedResult {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return NewPaginatedResult(nil, DefaultPage, pageSize, 0)
}
