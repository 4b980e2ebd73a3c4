package validator

import (
	"strconv"
	"time"
)

// FeedbackFilterQuery carries the raw query-string filters before resolution.
type FeedbackFilterQuery struct {
	Course    string `form:"course"`
	Student   string `form:"student"`
	Rating    string `form:"rating"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
	Page      string `form:"page"`
	Limit     string `form:"limit"`
}

// FeedbackFilter is the fully resolved, typed filter set. Nil pointers
// mean "not filtered on".
type FeedbackFilter struct {
	CourseID  *uint
	StudentID *uint
	Rating    *int
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

// FilterBounds controls pagination defaults per caller.
type FilterBounds struct {
	DefaultLimit int
	MaxLimit     int
}

var (
	AdminFilterBounds   = FilterBounds{DefaultLimit: 20, MaxLimit: 100}
	StudentFilterBounds = FilterBounds{DefaultLimit: 10, MaxLimit: 50}
)

// ResolveFeedbackFilter validates and resolves every query parameter.
// All invalid fields are reported together so a client can fix them in
// one round trip. No defaults are applied to fields that failed.
func (v *Validator) ResolveFeedbackFilter(q FeedbackFilterQuery, bounds FilterBounds) (*FeedbackFilter, ValidationErrors) {
	var errors ValidationErrors
	filter := &FeedbackFilter{
		Page:  1,
		Limit: bounds.DefaultLimit,
	}

	if q.Course != "" {
		id, err := strconv.ParseUint(q.Course, 10, 32)
		if err != nil || id == 0 {
			errors = append(errors, ValidationError{
				Field:   "course",
				Message: "must be a positive course id",
				Value:   q.Course,
				Rule:    "filter",
			})
		} else {
			courseID := uint(id)
			filter.CourseID = &courseID
		}
	}

	if q.Student != "" {
		id, err := strconv.ParseUint(q.Student, 10, 32)
		if err != nil || id == 0 {
			errors = append(errors, ValidationError{
				Field:   "student",
				Message: "must be a positive student id",
				Value:   q.Student,
				Rule:    "filter",
			})
		} else {
			studentID := uint(id)
			filter.StudentID = &studentID
		}
	}

	if q.Rating != "" {
		rating, err := strconv.Atoi(q.Rating)
		if err != nil || rating < 1 || rating > 5 {
			errors = append(errors, ValidationError{
				Field:   "rating",
				Message: "must be between 1 and 5",
				Value:   q.Rating,
				Rule:    "filter",
			})
		} else {
			filter.Rating = &rating
		}
	}

	if q.StartDate != "" {
		start, err := parseFilterDate(q.StartDate, false)
		if err != nil {
			errors = append(errors, ValidationError{
				Field:   "startDate",
				Message: "must be a valid date (YYYY-MM-DD)",
				Value:   q.StartDate,
				Rule:    "filter",
			})
		} else {
			filter.StartDate = &start
		}
	}

	if q.EndDate != "" {
		end, err := parseFilterDate(q.EndDate, true)
		if err != nil {
			errors = append(errors, ValidationError{
				Field:   "endDate",
				Message: "must be a valid date (YYYY-MM-DD)",
				Value:   q.EndDate,
				Rule:    "filter",
			})
		} else {
			filter.EndDate = &end
		}
	}

	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		errors = append(errors, ValidationError{
			Field:   "endDate",
			Message: "must not be before startDate",
			Value:   q.EndDate,
			Rule:    "filter",
		})
	}

	if q.Page != "" {
		page, err := strconv.Atoi(q.Page)
		if err != nil || page < 1 {
			errors = append(errors, ValidationError{
				Field:   "page",
				Message: "must be a positive integer",
				Value:   q.Page,
				Rule:    "filter",
			})
		} else {
			filter.Page = page
		}
	}

	if q.Limit != "" {
		limit, err := strconv.Atoi(q.Limit)
		if err != nil || limit < 1 || limit > bounds.MaxLimit {
			errors = append(errors, ValidationError{
				Field:   "limit",
				Message: "must be between 1 and " + strconv.Itoa(bounds.MaxLimit),
				Value:   q.Limit,
				Rule:    "filter",
			})
		} else {
			filter.Limit = limit
		}
	}

	if len(errors) > 0 {
		return nil, errors
	}
	return filter, nil
}

// parseFilterDate accepts a plain date or a full RFC3339 timestamp.
// A plain end date is widened to the last instant of that day so the
// range stays inclusive.
func parseFilterDate(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Millisecond)
		}
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
