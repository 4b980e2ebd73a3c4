package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crypticandwired/StudentFeedback/internal/services"
	"github.com/crypticandwired/StudentFeedback/internal/utils"
	"github.com/crypticandwired/StudentFeedback/internal/validator"
)

type DashboardHandler struct {
	BaseHandler
	analyticsService services.AnalyticsService
	exportService    services.ExportService
}

func NewDashboardHandler(analyticsService services.AnalyticsService, exportService services.ExportService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler:      NewBaseHandler(logger),
		analyticsService: analyticsService,
		exportService:    exportService,
	}
}

// GetDashboard returns the admin overview
// @Summary Admin dashboard
// @Description Totals, average rating, rating distribution, recent feedback and top courses
// @Tags admin
// @Produce json
// @Success 200 {object} SuccessResponse{data=services.DashboardResponse}
// @Router /admin/dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	h.LogRequest(c, "Getting dashboard")

	dashboard, err := h.analyticsService.Dashboard(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    dashboard,
	})
}

// GetAnalytics returns the detailed analytics report
// @Summary Admin analytics
// @Description Monthly trends, rating trends, course performance, student engagement and instructor performance
// @Tags admin
// @Produce json
// @Success 200 {object} SuccessResponse{data=services.AnalyticsResponse}
// @Router /admin/analytics [get]
func (h *DashboardHandler) GetAnalytics(c *gin.Context) {
	h.LogRequest(c, "Getting analytics")

	analytics, err := h.analyticsService.Analytics(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Data:    analytics,
	})
}

// ExportFeedback streams the filtered feedback set as a download
// @Summary Export feedback
// @Description Streams CSV by default, a spreadsheet workbook with ?format=xlsx
// @Tags admin
// @Produce text/csv
// @Param format query string false "csv (default) or xlsx"
// @Param course query uint false "Course ID"
// @Param student query uint false "Student ID"
// @Param rating query int false "Rating 1-5"
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Router /admin/feedback/export [get]
func (h *DashboardHandler) ExportFeedback(c *gin.Context) {
	var query validator.FeedbackFilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	format := c.DefaultQuery("format", "csv")

	h.LogRequest(c, "Exporting feedback", "format", format)

	// Resolve the filters before any headers go out so invalid filters
	// still get a JSON 400.
	filters, err := h.exportService.ResolveFilters(&query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	switch format {
	case "csv":
		filename := services.ExportFilename("csv")
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

		if err := h.exportService.ExportCSV(c.Request.Context(), filters, c.Writer); err != nil {
			// Headers may already be on the wire, log instead of
			// rewriting the response.
			h.LogError(c, err, "Feedback export failed", "format", format)
			c.Abort()
			return
		}
	case "xlsx":
		filename := services.ExportFilename("xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

		if err := h.exportService.ExportXLSX(c.Request.Context(), filters, c.Writer); err != nil {
			h.LogError(c, err, "Feedback export failed", "format", format)
			c.Abort()
			return
		}
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid export format",
			Details: "format must be csv or xlsx",
		})
	}
}
