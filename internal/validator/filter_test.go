package validator

import (
	"testing"
	"time"
)

func TestResolveFeedbackFilter(t *testing.T) {
	v := New()

	t.Run("EmptyQueryUsesDefaults", func(t *testing.T) {
		filter, errs := v.ResolveFeedbackFilter(FeedbackFilterQuery{}, AdminFilterBounds)
		if len(errs) > 0 {
			t.Fatalf("Expected no errors, got %v", errs)
		}
		if filter.Page != 1 || filter.Limit != 20 {
			t.Errorf("Expected page=1 limit=20, got page=%d limit=%d", filter.Page, filter.Limit)
		}
		if filter.CourseID != nil || filter.StudentID != nil || filter.Rating != nil {
			t.Errorf("Expected no filters set, got %+v", filter)
		}
	})

	t.Run("StudentBoundsDiffer", func(t *testing.T) {
		filter, errs := v.ResolveFeedbackFilter(FeedbackFilterQuery{}, StudentFilterBounds)
		if len(errs) > 0 {
			t.Fatalf("Expected no errors, got %v", errs)
		}
		if filter.Limit != 10 {
			t.Errorf("Expected default limit 10, got %d", filter.Limit)
		}
	})

	t.Run("ResolvesAllFields", func(t *testing.T) {
		query := FeedbackFilterQuery{
			Course:    "3",
			Student:   "7",
			Rating:    "4",
			StartDate: "2026-01-01",
			EndDate:   "2026-06-30",
			Page:      "2",
			Limit:     "50",
		}

		filter, errs := v.ResolveFeedbackFilter(query, AdminFilterBounds)
		if len(errs) > 0 {
			t.Fatalf("Expected no errors, got %v", errs)
		}
		if *filter.CourseID != 3 || *filter.StudentID != 7 || *filter.Rating != 4 {
			t.Errorf("Unexpected filter values: %+v", filter)
		}
		if filter.Page != 2 || filter.Limit != 50 {
			t.Errorf("Expected page=2 limit=50, got page=%d limit=%d", filter.Page, filter.Limit)
		}
		if filter.StartDate.Day() != 1 {
			t.Errorf("Unexpected start date: %v", filter.StartDate)
		}
	})

	t.Run("EndDateWidenedToEndOfDay", func(t *testing.T) {
		filter, errs := v.ResolveFeedbackFilter(FeedbackFilterQuery{EndDate: "2026-06-30"}, AdminFilterBounds)
		if len(errs) > 0 {
			t.Fatalf("Expected no errors, got %v", errs)
		}
		if filter.EndDate.Hour() != 23 || filter.EndDate.Minute() != 59 {
			t.Errorf("Expected end of day, got %v", filter.EndDate)
		}
		if filter.EndDate.Day() != 30 {
			t.Errorf("Expected same calendar day, got %v", filter.EndDate)
		}
	})

	t.Run("AcceptsRFC3339Timestamps", func(t *testing.T) {
		filter, errs := v.ResolveFeedbackFilter(FeedbackFilterQuery{StartDate: "2026-01-15T08:30:00Z"}, AdminFilterBounds)
		if len(errs) > 0 {
			t.Fatalf("Expected no errors, got %v", errs)
		}
		want := time.Date(2026, 1, 15, 8, 30, 0, 0, time.UTC)
		if !filter.StartDate.Equal(want) {
			t.Errorf("Expected %v, got %v", want, filter.StartDate)
		}
	})

	t.Run("RejectsRatingOutOfRange", func(t *testing.T) {
		_, errs := v.ResolveFeedbackFilter(FeedbackFilterQuery{Rating: "6"}, AdminFilterBounds)
		if len(errs) != 1 || errs[0].Field != "rating" {
			t.Errorf("Expected a single rating error, got %v", errs)
		}
	})

	t.Run("RejectsLimitAboveMax", func(t *testing.T) {
		_, errs := v.ResolveFeedbackFilter(FeedbackFilterQuery{Limit: "101"}, AdminFilterBounds)
		if len(errs) != 1 || errs[0].Field != "limit" {
			t.Errorf("Expected a single limit error, got %v", errs)
		}

		// The same limit is still valid for the wider admin page size
		_, errs = v.ResolveFeedbackFilter(FeedbackFilterQuery{Limit: "51"}, StudentFilterBounds)
		if len(errs) != 1 {
			t.Errorf("Expected student bounds to reject 51, got %v", errs)
		}
	})

	t.Run("RejectsEndBeforeStart", func(t *testing.T) {
		query := FeedbackFilterQuery{StartDate: "2026-06-30", EndDate: "2026-01-01"}
		_, errs := v.ResolveFeedbackFilter(query, AdminFilterBounds)
		if len(errs) != 1 || errs[0].Field != "endDate" {
			t.Errorf("Expected endDate ordering error, got %v", errs)
		}
	})

	t.Run("ReportsAllErrorsTogether", func(t *testing.T) {
		query := FeedbackFilterQuery{
			Course:  "abc",
			Student: "0",
			Rating:  "nine",
			Page:    "-1",
			Limit:   "0",
		}

		_, errs := v.ResolveFeedbackFilter(query, AdminFilterBounds)
		if len(errs) != 5 {
			t.Fatalf("Expected 5 errors, got %d: %v", len(errs), errs)
		}

		fields := make(map[string]bool)
		for _, e := range errs {
			fields[e.Field] = true
		}
		for _, want := range []string{"course", "student", "rating", "page", "limit"} {
			if !fields[want] {
				t.Errorf("Expected an error for %s", want)
			}
		}
	})
}
