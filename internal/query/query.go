// Package query turns raw list parameters into a validated task filter and
// the gorm predicates and ordering that implement it.
package query

import (
	"strings"
	"time"

	apierrors "github.com/yukikurage/todo-reminder-api/internal/errors"
	"github.com/yukikurage/todo-reminder-api/internal/models"
	"github.com/yukikurage/todo-reminder-api/internal/utils"
	"gorm.io/gorm"
)

// Sort keys
const (
	SortNewest      = "newest"
	SortOldest      = "oldest"
	SortDueDate     = "dueDate"
	SortDueDateDesc = "dueDateDesc"
	SortPriority    = "priority"
	SortTitle       = "title"
	SortTitleDesc   = "titleDesc"
)

var sortKeys = map[string]struct{}{
	SortNewest:      {},
	SortOldest:      {},
	SortDueDate:     {},
	SortDueDateDesc: {},
	SortPriority:    {},
	SortTitle:       {},
	SortTitleDesc:   {},
}

const dateOnly = "2006-01-02"

// Params holds the raw query string values of a task listing.
type Params struct {
	Completed   string `form:"completed"`
	Priority    string `form:"priority"`
	DueDate     string `form:"dueDate"`
	DueDateFrom string `form:"dueDateFrom"`
	DueDateTo   string `form:"dueDateTo"`
	Overdue     string `form:"overdue"`
	Sort        string `form:"sort"`
	Page        string `form:"page"`
	PageSize    string `form:"pageSize"`
	Limit       string `form:"limit"`
}

// Filter is a validated listing request. All set criteria apply together.
type Filter struct {
	Completed  *bool
	Priorities []models.Priority
	DueOn      *time.Time
	DueFrom    *time.Time
	DueTo      *time.Time
	Overdue    bool
	Sort       string
	Pagination utils.PaginationParams
}

// Parse validates p. Unrecognised values are reported per field; malformed
// page values are not errors and fall back to defaults.
func Parse(p Params) (Filter, error) {
	details := map[string]string{}
	var f Filter

	if v := strings.TrimSpace(p.Completed); v != "" {
		b, ok := parseBool(v)
		if !ok {
			details["completed"] = "must be true or false"
		} else {
			f.Completed = &b
		}
	}

	if v := strings.TrimSpace(p.Overdue); v != "" {
		b, ok := parseBool(v)
		if !ok {
			details["overdue"] = "must be true or false"
		} else {
			f.Overdue = b
		}
	}

	if v := strings.TrimSpace(p.Priority); v != "" {
		seen := map[models.Priority]bool{}
		for _, part := range strings.Split(v, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			pr, err := models.ParsePriority(part)
			if err != nil {
				details["priority"] = "must be a comma separated list of Low, Medium, High"
				break
			}
			if !seen[pr] {
				seen[pr] = true
				f.Priorities = append(f.Priorities, pr)
			}
		}
	}

	parseDateField := func(name, raw string) *time.Time {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
		t, err := ParseDate(raw)
		if err != nil {
			details[name] = "must be an RFC 3339 timestamp or YYYY-MM-DD date"
			return nil
		}
		return &t
	}

	if d := parseDateField("dueDate", p.DueDate); d != nil {
		day := StartOfDay(*d)
		f.DueOn = &day
	}
	f.DueFrom = parseDateField("dueDateFrom", p.DueDateFrom)
	f.DueTo = parseDateField("dueDateTo", p.DueDateTo)
	if f.DueFrom != nil && f.DueTo != nil && f.DueFrom.After(*f.DueTo) {
		details["dueDateTo"] = "must not be before dueDateFrom"
	}

	f.Sort = strings.TrimSpace(p.Sort)
	if f.Sort == "" {
		f.Sort = SortNewest
	} else if _, ok := sortKeys[f.Sort]; !ok {
		details["sort"] = "must be one of newest, oldest, dueDate, dueDateDesc, priority, title, titleDesc"
	}

	size := p.PageSize
	if strings.TrimSpace(size) == "" {
		size = p.Limit
	}
	f.Pagination = utils.NewPaginationParams(p.Page, size)

	if len(details) > 0 {
		return Filter{}, apierrors.Validation("Invalid query parameters", details)
	}
	return f, nil
}

// ParseDate accepts an RFC 3339 timestamp or a calendar date, returned in UTC.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// StartOfDay truncates t to midnight UTC of its UTC calendar day.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

// Where returns the filter's predicates. now anchors the overdue check.
func (f Filter) Where(now time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Completed != nil {
			db = db.Where("tasks.completed = ?", *f.Completed)
		}
		if len(f.Priorities) > 0 {
			db = db.Where("tasks.priority IN ?", f.Priorities)
		}
		if f.DueOn != nil {
			db = db.Where("tasks.due_date >= ? AND tasks.due_date < ?", *f.DueOn, f.DueOn.AddDate(0, 0, 1))
		}
		if f.DueFrom != nil {
			db = db.Where("tasks.due_date >= ?", *f.DueFrom)
		}
		if f.DueTo != nil {
			db = db.Where("tasks.due_date <= ?", *f.DueTo)
		}
		if f.Overdue {
			db = db.Where("tasks.due_date < ? AND tasks.completed = ?", now.UTC(), false)
		}
		return db
	}
}

// severityOrder ranks priorities for sorting, most severe first.
const severityOrder = "CASE tasks.priority WHEN 'High' THEN 0 WHEN 'Medium' THEN 1 WHEN 'Low' THEN 2 ELSE 3 END"

// dueNullsLast keeps tasks without a due date after dated ones in either direction.
const dueNullsLast = "CASE WHEN tasks.due_date IS NULL THEN 1 ELSE 0 END"

// Order returns the sort for the filter. Ties fall back to newest first, then id.
func (f Filter) Order() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch f.Sort {
		case SortOldest:
			return db.Order("tasks.created_at ASC").Order("tasks.id ASC")
		case SortDueDate:
			db = db.Order(dueNullsLast).Order("tasks.due_date ASC")
		case SortDueDateDesc:
			db = db.Order(dueNullsLast).Order("tasks.due_date DESC")
		case SortPriority:
			db = db.Order(severityOrder)
		case SortTitle:
			db = db.Order("tasks.title ASC")
		case SortTitleDesc:
			db = db.Order("tasks.title DESC")
		}
		return db.Order("tasks.created_at DESC").Order("tasks.id DESC")
	}
}
