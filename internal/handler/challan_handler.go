package handler

import (
	"bytes"
	"mime"
	"net/http"
	"strings"

	"salesdesk/internal/middleware"
	"salesdesk/internal/service"
	"salesdesk/pkg/pagination"
	"salesdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type DeliveryChallanHandler struct {
	challanService service.DeliveryChallanService
}

func NewDeliveryChallanHandler(challanService service.DeliveryChallanService) *DeliveryChallanHandler {
	return &DeliveryChallanHandler{challanService: challanService}
}

func (h *DeliveryChallanHandler) RegisterRoutes(router *gin.RouterGroup) {
	challans := router.Group("/delivery-challans")
	challans.Use(middleware.RequireRole(anyRole...))
	{
		challans.GET("/", h.ListChallans)
		challans.POST("/create/", h.CreateChallan)
		challans.GET("/:id/", h.GetChallan)
		challans.GET("/:id/pdf", h.DownloadPDF)
	}
}

// ListChallans returns delivery challans, newest first
// @Summary      List delivery challans
// @Tags         delivery-challans
// @Security     BearerAuth
// @Produce      json
// @Param        customer  query     string  false  "Filter by customer ID"
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Number of items per page (default 20)"
// @Success      200       {object}  response.Response{data=response.Page}
// @Router       /api/v1/sales/delivery-challans/ [get]
func (h *DeliveryChallanHandler) ListChallans(c *gin.Context) {
	p := pagination.Parse(c)
	challans, total, err := h.challanService.ListChallans(c.Request.Context(), c.Query("customer"), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paged(http.StatusOK, challans, total, p.Page, p.Limit))
}

// CreateChallan records a delivery challan
// @Summary      Create delivery challan
// @Description  Line amounts, totals and the challan number are computed by the server
// @Tags         delivery-challans
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateDeliveryChallanRequest  true  "Delivery challan"
// @Success      201      {object}  response.Response{data=service.DeliveryChallanResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/v1/sales/delivery-challans/create/ [post]
func (h *DeliveryChallanHandler) CreateChallan(c *gin.Context) {
	var req service.CreateDeliveryChallanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	challan, err := h.challanService.CreateChallan(c.Request.Context(), req, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, challan))
}

// GetChallan returns one delivery challan
// @Summary      Get delivery challan
// @Tags         delivery-challans
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Challan ID"
// @Success      200  {object}  response.Response{data=service.DeliveryChallanResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/v1/sales/delivery-challans/{id}/ [get]
func (h *DeliveryChallanHandler) GetChallan(c *gin.Context) {
	challan, err := h.challanService.GetChallan(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, challan))
}

// DownloadPDF streams the printable challan
// @Summary      Delivery challan PDF
// @Tags         delivery-challans
// @Security     BearerAuth
// @Produce      application/pdf
// @Param        id   path  string  true  "Challan ID"
// @Success      200  {file}  binary
// @Failure      404  {object}  response.Response
// @Router       /api/v1/sales/delivery-challans/{id}/pdf [get]
func (h *DeliveryChallanHandler) DownloadPDF(c *gin.Context) {
	var buf bytes.Buffer
	number, err := h.challanService.RenderPDF(c.Request.Context(), c.Param("id"), &buf)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", attachment(number+".pdf"))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

var filenameReplacer = strings.NewReplacer("/", "-", "\\", "-")

// attachment builds a Content-Disposition value. Document numbers may carry
// path separators, e.g. DC-2025/03-001.
func attachment(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filenameReplacer.Replace(filename)})
}
