package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "github.com/yukikurage/todo-reminder-api/internal/errors"
	"github.com/yukikurage/todo-reminder-api/internal/models"
)

func TestParseDefaults(t *testing.T) {
	f, err := Parse(Params{})
	require.NoError(t, err)

	assert.Nil(t, f.Completed)
	assert.Empty(t, f.Priorities)
	assert.False(t, f.Overdue)
	assert.Equal(t, SortNewest, f.Sort)
	assert.Equal(t, 1, f.Pagination.Page)
	assert.Equal(t, 100, f.Pagination.Limit)
}

func TestParseFullFilter(t *testing.T) {
	f, err := Parse(Params{
		Completed:   "FALSE",
		Priority:    "high, low,High",
		DueDateFrom: "2024-01-01",
		DueDateTo:   "2024-01-31T23:59:59Z",
		Overdue:     "true",
		Sort:        "priority",
		Page:        "2",
		PageSize:    "25",
	})
	require.NoError(t, err)

	require.NotNil(t, f.Completed)
	assert.False(t, *f.Completed)
	assert.Equal(t, []models.Priority{models.PriorityHigh, models.PriorityLow}, f.Priorities)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *f.DueFrom)
	assert.Equal(t, time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC), *f.DueTo)
	assert.True(t, f.Overdue)
	assert.Equal(t, SortPriority, f.Sort)
	assert.Equal(t, 2, f.Pagination.Page)
	assert.Equal(t, 25, f.Pagination.Limit)
	assert.Equal(t, 25, f.Pagination.Offset)
}

func TestParseExactDueDateUsesUTCDay(t *testing.T) {
	f, err := Parse(Params{DueDate: "2024-03-10T22:30:00-05:00"})
	require.NoError(t, err)

	// 22:30 at -05:00 is already the 11th in UTC.
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), *f.DueOn)
}

func TestParseLimitAlias(t *testing.T) {
	f, err := Parse(Params{Limit: "7"})
	require.NoError(t, err)
	assert.Equal(t, 7, f.Pagination.Limit)

	f, err = Parse(Params{Limit: "7", PageSize: "9"})
	require.NoError(t, err)
	assert.Equal(t, 9, f.Pagination.Limit)
}

func TestParseNonNumericPagingFallsBack(t *testing.T) {
	f, err := Parse(Params{Page: "two", PageSize: "many"})
	require.NoError(t, err)

	assert.Equal(t, 1, f.Pagination.Page)
	assert.Equal(t, 100, f.Pagination.Limit)
}

func TestParseRejectsUnknownValues(t *testing.T) {
	_, err := Parse(Params{
		Completed: "yes",
		Priority:  "Urgent",
		DueDate:   "tomorrow",
		Sort:      "random",
		Overdue:   "1",
	})
	require.Error(t, err)

	var apiErr *apierrors.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apierrors.KindValidation, apiErr.Kind)
	assert.Contains(t, apiErr.Details, "completed")
	assert.Contains(t, apiErr.Details, "priority")
	assert.Contains(t, apiErr.Details, "dueDate")
	assert.Contains(t, apiErr.Details, "sort")
	assert.Contains(t, apiErr.Details, "overdue")
}

func TestParseRejectsInvertedRange(t *testing.T) {
	_, err := Parse(Params{DueDateFrom: "2024-02-01", DueDateTo: "2024-01-01"})
	require.Error(t, err)
	assert.Equal(t, apierrors.KindValidation, apierrors.KindOf(err))
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2024, 5, 6, 13, 14, 15, 16, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC), StartOfDay(in))
}
