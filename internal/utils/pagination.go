package utils

import (
	"math"
	"strconv"
	"strings"

	"github.com/yukikurage/todo-reminder-api/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// NewPaginationParams parses raw page and page size values.
// Missing, non-numeric or out-of-range values fall back to the defaults.
func NewPaginationParams(pageRaw, sizeRaw string) PaginationParams {
	page, err := strconv.Atoi(strings.TrimSpace(pageRaw))
	if err != nil || page < 1 {
		page = constants.DefaultPage
	}

	limit, err := strconv.Atoi(strings.TrimSpace(sizeRaw))
	if err != nil || limit < 1 || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: offset(page, limit),
	}
}

// offset saturates at math.MaxInt instead of overflowing, so a huge page
// stays past the end of any result set.
func offset(page, limit int) int {
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

// TotalPages returns ceil(total / size).
func TotalPages(total int64, size int) int {
	if size <= 0 {
		return 0
	}
	pages := int(total) / size
	if int(total)%size > 0 {
		pages++
	}
	return pages
}
