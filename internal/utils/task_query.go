package utils

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskboard/internal/repository"
)

// GetTaskQueryParams extracts list filters from the request. Non-numeric
// limit/offset values fall back to their defaults; the remaining
// normalization happens in TaskQuery.Normalize.
func GetTaskQueryParams(c *gin.Context, userID uint64) repository.TaskQuery {
	return repository.TaskQuery{
		UserID:   userID,
		Status:   strings.TrimSpace(c.Query("status")),
		Priority: strings.TrimSpace(c.Query("priority")),
		Search:   c.Query("search"),
		SortBy:   c.Query("sortBy"),
		Order:    c.Query("order"),
		Limit:    atoiDefault(c.Query("limit"), repository.DefaultLimit),
		Offset:   atoiDefault(c.Query("offset"), 0),
	}
}

// ParseID parses a positive numeric path parameter.
func ParseID(value string) (uint64, bool) {
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func atoiDefault(value string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return n
}
