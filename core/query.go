package core

import (
	"maps"
	"os"
	"strconv"
)

// Constants for pagination
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// SortDirection represents the sort order
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortField represents a field to sort by
type SortField struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"direction"`
}

// Pagination represents pagination parameters.
// A zero Limit means the query is not paginated.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// KeySet restricts a query to rows whose Field value is one of Values.
// An empty Values list matches no rows.
type KeySet struct {
	Field  string `json:"field"`
	Values []any  `json:"values"`
}

// Query represents a query with filters, key membership, sorting and pagination
type Query struct {
	Filters    map[string]any `json:"filters"`
	KeyIn      *KeySet        `json:"key_in,omitempty"`
	Sort       []SortField    `json:"sort"`
	Pagination Pagination     `json:"pagination"`
}

// Result represents paginated query results
type Result struct {
	Items      []any `json:"items"`
	TotalCount int64 `json:"total_count"`
	HasMore    bool  `json:"has_more"`
	Query      Query `json:"query"`
}

// NewQuery creates a new Query with default pagination
func NewQuery() *Query {
	return &Query{
		Filters: make(map[string]any),
		Sort:    []SortField{},
		Pagination: Pagination{
			Limit:  getPageSizeFromEnv(),
			Offset: 0,
		},
	}
}

// WithFilters adds filters to the query
func (q *Query) WithFilters(filters map[string]any) *Query {
	maps.Copy(q.Filters, filters)
	return q
}

// WithSort adds a sort field to the query
func (q *Query) WithSort(field string, direction SortDirection) *Query {
	q.Sort = append(q.Sort, SortField{
		Field:     field,
		Direction: direction,
	})
	return q
}

// WithPagination sets pagination parameters
func (q *Query) WithPagination(limit, offset int) *Query {
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if limit <= 0 {
		limit = getPageSizeFromEnv()
	}
	if offset < 0 {
		offset = 0
	}

	q.Pagination.Limit = limit
	q.Pagination.Offset = offset
	return q
}

// WithKeys narrows the query to rows whose field value is in values
func (q *Query) WithKeys(field string, values []any) *Query {
	q.KeyIn = &KeySet{Field: field, Values: append([]any{}, values...)}
	return q
}

// Unpaginated drops pagination so the query spans every matching row
func (q *Query) Unpaginated() *Query {
	q.Pagination = Pagination{}
	return q
}

// IsPaginated reports whether a LIMIT applies to the query
func (q *Query) IsPaginated() bool {
	return q.Pagination.Limit > 0
}

// Clone returns a deep copy of the query
func (q *Query) Clone() *Query {
	clone := &Query{
		Filters:    make(map[string]any, len(q.Filters)),
		Sort:       make([]SortField, len(q.Sort)),
		Pagination: q.Pagination,
	}
	maps.Copy(clone.Filters, q.Filters)
	copy(clone.Sort, q.Sort)
	if q.KeyIn != nil {
		clone.KeyIn = &KeySet{Field: q.KeyIn.Field, Values: append([]any{}, q.KeyIn.Values...)}
	}
	return clone
}

// NextPage creates a new query for the next page
func (q *Query) NextPage() *Query {
	next := q.Clone()
	next.Pagination.Offset += next.Pagination.Limit
	return next
}

// HasFilters returns true if the query has any filters
func (q *Query) HasFilters() bool {
	return len(q.Filters) > 0
}

// HasSort returns true if the query has sorting
func (q *Query) HasSort() bool {
	return len(q.Sort) > 0
}

// ApplyDefaultSort applies the resource's default sort if no sort is specified
func (q *Query) ApplyDefaultSort(resource *Resource) {
	if q.HasSort() {
		return
	}
	defaultSort := resource.GetEffectiveDefaultSort()
	q.WithSort(defaultSort.Field, defaultSort.Direction)
}

// getPageSizeFromEnv gets page size from environment variable or default
func getPageSizeFromEnv() int {
	if envSize := os.Getenv("BACKOFFICE_PAGE_SIZE"); envSize != "" {
		if size, err := strconv.Atoi(envSize); err == nil && size > 0 && size <= MaxPageSize {
			return size
		}
	}
	return DefaultPageSize
}

// IsValid checks if the sort direction is valid
func (sd SortDirection) IsValid() bool {
	return sd == SortAsc || sd == SortDesc
}
