// Package dashboard holds the client-side view of a user's tasks: the
// persisted filter, the stats cache and the optimistic edit protocol.
package dashboard

import (
	"errors"
	"strings"
	"time"

	"github.com/yukikurage/taskboard/internal/dto"
	"github.com/yukikurage/taskboard/internal/models"
	"github.com/yukikurage/taskboard/internal/repository"
)

const (
	FilterAll = "All"

	StatsTTL      = 5 * time.Minute
	SearchDelay   = 300 * time.Millisecond
	syncFailedMsg = "Failed to sync with server. Check your connection."
)

var (
	ErrNotLoggedIn     = errors.New("not logged in")
	ErrInvalidStatus   = errors.New("invalid status filter")
	ErrInvalidPriority = errors.New("invalid priority filter")
	ErrInvalidSort     = errors.New("invalid sort field")
)

// Phase is the loading state of the dashboard.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	}
	return "idle"
}

// FilterState is the persisted filter and sort preference.
type FilterState struct {
	Status   string `json:"status"`
	Priority string `json:"priority"`
	Search   string `json:"search"`
	SortBy   string `json:"sortBy"`
	Order    string `json:"order"`
}

func DefaultFilterState() FilterState {
	return FilterState{
		Status:   FilterAll,
		Priority: FilterAll,
		Search:   "",
		SortBy:   repository.DefaultSortField,
		Order:    repository.OrderDesc,
	}
}

// withDefaults fills fields missing from an older state file.
func (f FilterState) withDefaults() FilterState {
	def := DefaultFilterState()
	if f.Status == "" {
		f.Status = def.Status
	}
	if f.Priority == "" {
		f.Priority = def.Priority
	}
	if f.SortBy == "" {
		f.SortBy = def.SortBy
	}
	if f.Order != repository.OrderAsc {
		f.Order = def.Order
	}
	return f
}

func validStatusFilter(status string) bool {
	return status == FilterAll || models.TaskStatus(status).Valid()
}

func validPriorityFilter(priority string) bool {
	return priority == FilterAll || models.TaskPriority(priority).Valid()
}

func normalizeSearch(q string) string {
	return strings.ToLower(q)
}

// StatsCache keeps the last stats response for StatsTTL.
type StatsCache struct {
	Data      *dto.TaskStats
	Timestamp time.Time
}

// Get returns the cached stats while they are younger than StatsTTL.
func (c *StatsCache) Get(now time.Time) (*dto.TaskStats, bool) {
	if c.Data == nil || now.Sub(c.Timestamp) >= StatsTTL {
		return nil, false
	}
	return c.Data, true
}

func (c *StatsCache) Put(stats *dto.TaskStats, now time.Time) {
	c.Data = stats
	c.Timestamp = now
}
