package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/crypticandwired/StudentFeedback/internal/repositories"
	"github.com/crypticandwired/StudentFeedback/internal/validator"
)

func TestExportServiceResolveFilters(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	v := validator.New()
	svc := NewExportService(newMockRepository(), logger, v, 500)

	t.Run("IgnoresPagination", func(t *testing.T) {
		filters, err := svc.ResolveFilters(&validator.FeedbackFilterQuery{Page: "3", Limit: "10", Rating: "4"})
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if filters.Page != 0 || filters.Limit != 0 {
			t.Errorf("Expected unpaginated export, got page=%d limit=%d", filters.Page, filters.Limit)
		}
		if filters.Rating == nil || *filters.Rating != 4 {
			t.Errorf("Expected rating filter carried through, got %v", filters.Rating)
		}
	})

	t.Run("RejectsInvalidFilter", func(t *testing.T) {
		_, err := svc.ResolveFilters(&validator.FeedbackFilterQuery{Rating: "9"})
		if err == nil {
			t.Fatal("Expected validation error for rating 9")
		}
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("Expected validation error, got %v", err)
		}
		var verr *ValidationError
		if !errors.As(err, &verr) || len(verr.Fields) != 1 || verr.Fields[0].Field != "rating" {
			t.Errorf("Expected the rating field named, got %v", err)
		}
	})
}

func TestExportServiceCSV(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	v := validator.New()

	createdAt := time.Date(2026, 8, 15, 14, 30, 5, 0, time.UTC)

	t.Run("HeaderAndRow", func(t *testing.T) {
		repo := newMockRepository()
		repo.feedback.exportBatchesFn = func(filters repositories.FeedbackFilters, batchSize int, fn func(rows []repositories.FeedbackExportRow) error) error {
			return fn([]repositories.FeedbackExportRow{
				{
					FeedbackID:   7,
					StudentName:  "Priya Sharma",
					StudentEmail: "priya@example.com",
					StudentPhone: "9876543210",
					CourseName:   "Data Structures",
					CourseCode:   "CS201",
					Instructor:   "Dr. Rao",
					Credits:      4,
					Rating:       5,
					Message:      "Great course",
					CreatedAt:    createdAt,
				},
			})
		}
		svc := NewExportService(repo, logger, v, 500)

		var buf bytes.Buffer
		if err := svc.ExportCSV(context.Background(), &repositories.FeedbackFilters{}, &buf); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		if len(lines) != 2 {
			t.Fatalf("Expected header plus one row, got %d lines", len(lines))
		}
		if !strings.HasPrefix(lines[0], "Feedback ID,Student Name,") {
			t.Errorf("Unexpected header: %s", lines[0])
		}
		if got := strings.Count(lines[0], ",") + 1; got != 12 {
			t.Errorf("Expected 12 columns, got %d", got)
		}
		want := `7,"Priya Sharma",priya@example.com,9876543210,"Data Structures",CS201,"Dr. Rao",4,5,"Great course",2026-08-15,14:30:05`
		if lines[1] != want {
			t.Errorf("Expected row %q, got %q", want, lines[1])
		}
	})

	t.Run("FlattensMessage", func(t *testing.T) {
		repo := newMockRepository()
		repo.feedback.exportBatchesFn = func(filters repositories.FeedbackFilters, batchSize int, fn func(rows []repositories.FeedbackExportRow) error) error {
			return fn([]repositories.FeedbackExportRow{
				{FeedbackID: 1, Message: "Too fast,\r\nneeds more labs", CreatedAt: createdAt},
			})
		}
		svc := NewExportService(repo, logger, v, 500)

		var buf bytes.Buffer
		if err := svc.ExportCSV(context.Background(), &repositories.FeedbackFilters{}, &buf); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if !strings.Contains(buf.String(), `"Too fast; needs more labs"`) {
			t.Errorf("Expected flattened message, got: %s", buf.String())
		}
	})

	t.Run("DoublesEmbeddedQuotes", func(t *testing.T) {
		if got := quote(`the "best" one`); got != `"the ""best"" one"` {
			t.Errorf("Unexpected quoting: %s", got)
		}
	})

	t.Run("TimestampsInUTC", func(t *testing.T) {
		ist := time.FixedZone("IST", 5*3600+1800)
		repo := newMockRepository()
		repo.feedback.exportBatchesFn = func(filters repositories.FeedbackFilters, batchSize int, fn func(rows []repositories.FeedbackExportRow) error) error {
			return fn([]repositories.FeedbackExportRow{
				// 2026-01-01 03:15:00 IST is still 2025-12-31 21:45:00 UTC
				{FeedbackID: 1, CreatedAt: time.Date(2026, 1, 1, 3, 15, 0, 0, ist)},
			})
		}
		svc := NewExportService(repo, logger, v, 500)

		var buf bytes.Buffer
		if err := svc.ExportCSV(context.Background(), &repositories.FeedbackFilters{}, &buf); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		if !strings.Contains(buf.String(), "2025-12-31,21:45:00") {
			t.Errorf("Expected UTC date and time columns, got: %s", buf.String())
		}
	})
}

func TestExportServiceXLSX(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	v := validator.New()

	repo := newMockRepository()
	repo.feedback.exportBatchesFn = func(filters repositories.FeedbackFilters, batchSize int, fn func(rows []repositories.FeedbackExportRow) error) error {
		return fn([]repositories.FeedbackExportRow{
			{FeedbackID: 1, StudentName: "Priya", Rating: 4, CreatedAt: time.Now().UTC()},
		})
	}
	svc := NewExportService(repo, logger, v, 500)

	var buf bytes.Buffer
	if err := svc.ExportXLSX(context.Background(), &repositories.FeedbackFilters{}, &buf); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// XLSX is a zip archive, check the magic bytes
	if buf.Len() < 4 || buf.Bytes()[0] != 'P' || buf.Bytes()[1] != 'K' {
		t.Error("Expected a zip-format workbook")
	}
}

func TestExportFilename(t *testing.T) {
	want := "feedback-export-" + time.Now().UTC().Format("2006-01-02") + ".csv"
	if got := ExportFilename("csv"); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}
