package repository

import (
	"strings"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100

	OrderAsc  = "ASC"
	OrderDesc = "DESC"

	DefaultSortField = "created_at"
)

// sortableFields is the closed set of columns a list may be ordered by.
var sortableFields = map[string]struct{}{
	"title":      {},
	"status":     {},
	"priority":   {},
	"due_date":   {},
	"created_at": {},
	"updated_at": {},
}

// TaskQuery describes one list request. Every value except SortBy and Order is
// bound as a query parameter; those two are resolved against whitelists by
// Normalize before reaching the query layer.
type TaskQuery struct {
	UserID   uint64
	Status   string
	Priority string
	Search   string
	SortBy   string
	Order    string
	Limit    int
	Offset   int
}

// IsSortableField reports whether field may be used as an order column.
func IsSortableField(field string) bool {
	_, ok := sortableFields[field]
	return ok
}

// Normalize returns a copy with the sort column, direction and pagination
// resolved to safe values.
func (q TaskQuery) Normalize() TaskQuery {
	if !IsSortableField(q.SortBy) {
		q.SortBy = DefaultSortField
	}

	if strings.EqualFold(q.Order, OrderAsc) {
		q.Order = OrderAsc
	} else {
		q.Order = OrderDesc
	}

	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	return q
}

// SearchPattern returns the LIKE pattern for the search term, or "" when no
// search was requested.
func (q TaskQuery) SearchPattern() string {
	if q.Search == "" {
		return ""
	}
	return "%" + strings.ToLower(q.Search) + "%"
}
