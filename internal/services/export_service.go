package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/crypticandwired/StudentFeedback/internal/repositories"
	"github.com/crypticandwired/StudentFeedback/internal/validator"
)

// exportHeader is the fixed column set consumers of the export rely on.
var exportHeader = []string{
	"Feedback ID",
	"Student Name",
	"Student Email",
	"Student Phone",
	"Course Name",
	"Course Code",
	"Instructor",
	"Credits",
	"Rating",
	"Feedback Message",
	"Submitted Date",
	"Submitted Time",
}

type exportService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	batchSize int
}

func NewExportService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, batchSize int) ExportService {
	if batchSize < 1 {
		batchSize = 500
	}
	return &exportService{
		repo:      repo,
		logger:    logger,
		validator: v,
		batchSize: batchSize,
	}
}

// ResolveFilters validates the raw query before any response bytes are
// written, so the HTTP layer can still answer with a 400 when a filter
// is invalid.
func (s *exportService) ResolveFilters(query *validator.FeedbackFilterQuery) (*repositories.FeedbackFilters, error) {
	filter, verrs := s.validator.ResolveFeedbackFilter(*query, validator.AdminFilterBounds)
	if len(verrs) > 0 {
		return nil, NewValidationError(verrs)
	}

	// Exports cover the whole filtered set, pagination does not apply.
	return &repositories.FeedbackFilters{
		CourseID:  filter.CourseID,
		StudentID: filter.StudentID,
		Rating:    filter.Rating,
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
	}, nil
}

// ExportCSV streams the filtered feedback set without loading it all
// into memory. Free-text columns are always quoted and the message is
// flattened (newlines to spaces, commas to semicolons) so rows stay
// one-per-line for downstream spreadsheet imports.
func (s *exportService) ExportCSV(ctx context.Context, filters *repositories.FeedbackFilters, w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(exportHeader, ",") + "\n"); err != nil {
		return fmt.Errorf("failed to write export header: %w", err)
	}

	var exported int64
	err := s.repo.Feedback().ExportBatches(ctx, nil, *filters, s.batchSize, func(rows []repositories.FeedbackExportRow) error {
		for i := range rows {
			if _, err := bw.WriteString(formatExportLine(&rows[i])); err != nil {
				return fmt.Errorf("failed to write export row: %w", err)
			}
		}
		exported += int64(len(rows))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to export feedback: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush export: %w", err)
	}

	s.logger.Info("Feedback exported", "format", "csv", "rows", exported)

	return nil
}

// ExportXLSX writes the same column set as a spreadsheet workbook.
func (s *exportService) ExportXLSX(ctx context.Context, filters *repositories.FeedbackFilters, w io.Writer) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	sw, err := f.NewStreamWriter("Sheet1")
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	header := make([]interface{}, len(exportHeader))
	for i, col := range exportHeader {
		header[i] = col
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	rowNum := 2
	err = s.repo.Feedback().ExportBatches(ctx, nil, *filters, s.batchSize, func(rows []repositories.FeedbackExportRow) error {
		for i := range rows {
			row := &rows[i]
			cell, err := excelize.CoordinatesToCellName(1, rowNum)
			if err != nil {
				return err
			}
			submitted := row.CreatedAt.UTC()
			values := []interface{}{
				row.FeedbackID,
				row.StudentName,
				row.StudentEmail,
				row.StudentPhone,
				row.CourseName,
				row.CourseCode,
				row.Instructor,
				row.Credits,
				row.Rating,
				flattenMessage(row.Message),
				submitted.Format("2006-01-02"),
				submitted.Format("15:04:05"),
			}
			if err := sw.SetRow(cell, values); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
			rowNum++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to export feedback: %w", err)
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush stream writer: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	s.logger.Info("Feedback exported", "format", "xlsx", "rows", rowNum-2)

	return nil
}

func formatExportLine(row *repositories.FeedbackExportRow) string {
	// Timestamps export in UTC regardless of the server zone, matching
	// the date in the download filename.
	submitted := row.CreatedAt.UTC()
	fields := []string{
		strconv.FormatUint(uint64(row.FeedbackID), 10),
		quote(row.StudentName),
		row.StudentEmail,
		row.StudentPhone,
		quote(row.CourseName),
		row.CourseCode,
		quote(row.Instructor),
		strconv.Itoa(row.Credits),
		strconv.Itoa(row.Rating),
		quote(flattenMessage(row.Message)),
		submitted.Format("2006-01-02"),
		submitted.Format("15:04:05"),
	}

	return strings.Join(fields, ",") + "\n"
}

// flattenMessage keeps a feedback message on one physical line and out
// of the way of the column separator.
func flattenMessage(message string) string {
	message = strings.ReplaceAll(message, "\r\n", " ")
	message = strings.ReplaceAll(message, "\n", " ")
	message = strings.ReplaceAll(message, "\r", " ")
	message = strings.ReplaceAll(message, ",", ";")
	return message
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func ExportFilename(ext string) string {
	return fmt.Sprintf("feedback-export-%s.%s", time.Now().UTC().Format("2006-01-02"), ext)
}
