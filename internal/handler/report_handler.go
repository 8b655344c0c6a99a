package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"salesdesk/internal/middleware"
	"salesdesk/internal/model"
	"salesdesk/internal/service"
	"salesdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	reportService service.ReportService
	now           func() time.Time
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService, now: time.Now}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/reports")
	reports.Use(middleware.RequireRole(model.RoleAdmin, model.RoleManager))
	{
		reports.GET("/summary", h.Summary)
		reports.GET("/documents.xlsx", h.ExportDocuments)
	}
}

// dateRange reads from/to (YYYY-MM-DD), defaulting to the current month.
// to is inclusive of the whole day.
func (h *ReportHandler) dateRange(c *gin.Context) (time.Time, time.Time, error) {
	now := h.now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := now

	if v := c.Query("from"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: from must be YYYY-MM-DD", service.ErrInvalidInput)
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: to must be YYYY-MM-DD", service.ErrInvalidInput)
		}
		to = t.Add(24*time.Hour - time.Nanosecond)
	}
	return from, to, nil
}

// Summary returns document counts and totals for a date range
// @Summary      Sales summary
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        from  query     string  false  "Start date YYYY-MM-DD (default first of month)"
// @Param        to    query     string  false  "End date YYYY-MM-DD (default today)"
// @Success      200   {object}  response.Response{data=service.SummaryResponse}
// @Router       /api/v1/sales/reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	from, to, err := h.dateRange(c)
	if err != nil {
		respondError(c, err)
		return
	}
	summary, err := h.reportService.Summary(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// ExportDocuments downloads challans, invoices and payments as a workbook
// @Summary      Export documents
// @Tags         reports
// @Security     BearerAuth
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        from  query  string  false  "Start date YYYY-MM-DD"
// @Param        to    query  string  false  "End date YYYY-MM-DD"
// @Success      200   {file}  binary
// @Router       /api/v1/sales/reports/documents.xlsx [get]
func (h *ReportHandler) ExportDocuments(c *gin.Context) {
	from, to, err := h.dateRange(c)
	if err != nil {
		respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := h.reportService.ExportXLSX(c.Request.Context(), from, to, &buf); err != nil {
		respondError(c, err)
		return
	}
	filename := fmt.Sprintf("documents_%s_%s.xlsx", from.Format("20060102"), to.Format("20060102"))
	c.Header("Content-Disposition", attachment(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
