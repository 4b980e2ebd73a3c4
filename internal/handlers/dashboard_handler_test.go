package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/crypticandwired/StudentFeedback/internal/repositories"
	"github.com/crypticandwired/StudentFeedback/internal/services"
	"github.com/crypticandwired/StudentFeedback/internal/utils"
	"github.com/crypticandwired/StudentFeedback/internal/validator"
)

type mockAnalyticsService struct {
	dashboardFn func() (*services.DashboardResponse, error)
	analyticsFn func() (*services.AnalyticsResponse, error)
}

func (m *mockAnalyticsService) Dashboard(ctx context.Context) (*services.DashboardResponse, error) {
	if m.dashboardFn != nil {
		return m.dashboardFn()
	}
	return &services.DashboardResponse{}, nil
}

func (m *mockAnalyticsService) Analytics(ctx context.Context) (*services.AnalyticsResponse, error) {
	if m.analyticsFn != nil {
		return m.analyticsFn()
	}
	return &services.AnalyticsResponse{}, nil
}

type mockExportService struct {
	resolveFn func(query *validator.FeedbackFilterQuery) (*repositories.FeedbackFilters, error)
	csvFn     func(filters *repositories.FeedbackFilters, w io.Writer) error
	xlsxFn    func(filters *repositories.FeedbackFilters, w io.Writer) error
}

func (m *mockExportService) ResolveFilters(query *validator.FeedbackFilterQuery) (*repositories.FeedbackFilters, error) {
	if m.resolveFn != nil {
		return m.resolveFn(query)
	}
	return &repositories.FeedbackFilters{}, nil
}

func (m *mockExportService) ExportCSV(ctx context.Context, filters *repositories.FeedbackFilters, w io.Writer) error {
	if m.csvFn != nil {
		return m.csvFn(filters, w)
	}
	return nil
}

func (m *mockExportService) ExportXLSX(ctx context.Context, filters *repositories.FeedbackFilters, w io.Writer) error {
	if m.xlsxFn != nil {
		return m.xlsxFn(filters, w)
	}
	return nil
}

func newExportTestRouter(exportSvc services.ExportService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stdout, nil)))
	handler := NewDashboardHandler(&mockAnalyticsService{}, exportSvc, logger)

	router := gin.New()
	router.GET("/export", handler.ExportFeedback)
	return router
}

func TestExportFeedbackHandler(t *testing.T) {
	t.Run("InvalidFilterReturnsJSON400", func(t *testing.T) {
		exportSvc := &mockExportService{
			resolveFn: func(query *validator.FeedbackFilterQuery) (*repositories.FeedbackFilters, error) {
				return nil, services.NewFieldValidationError("rating", "must be between 1 and 5")
			},
		}
		router := newExportTestRouter(exportSvc)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/export?rating=9", nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
			t.Errorf("Expected JSON error body, got %s", ct)
		}
		if w.Header().Get("Content-Disposition") != "" {
			t.Error("Expected no download headers on validation failure")
		}
		body := w.Body.String()
		if !strings.Contains(body, `"errors"`) || !strings.Contains(body, `"rating"`) {
			t.Errorf("Expected rating named in the error body, got %s", body)
		}
	})

	t.Run("StreamsCSVWithDownloadHeaders", func(t *testing.T) {
		exportSvc := &mockExportService{
			csvFn: func(filters *repositories.FeedbackFilters, w io.Writer) error {
				_, err := w.Write([]byte("Feedback ID,Student Name\n"))
				return err
			},
		}
		router := newExportTestRouter(exportSvc)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/export", nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/csv") {
			t.Errorf("Expected CSV content type, got %s", ct)
		}
		if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "feedback-export-") {
			t.Errorf("Expected download disposition, got %s", cd)
		}
		if !strings.HasPrefix(w.Body.String(), "Feedback ID,") {
			t.Errorf("Unexpected body: %s", w.Body.String())
		}
	})

	t.Run("RejectsUnknownFormat", func(t *testing.T) {
		router := newExportTestRouter(&mockExportService{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/export?format=pdf", nil)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", w.Code)
		}
	})
}
