package handler

import (
	"net/http"

	"salesdesk/internal/middleware"
	"salesdesk/internal/model"
	"salesdesk/internal/service"
	"salesdesk/pkg/pagination"
	"salesdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type RecurringInvoiceHandler struct {
	recurringService service.RecurringInvoiceService
}

func NewRecurringInvoiceHandler(recurringService service.RecurringInvoiceService) *RecurringInvoiceHandler {
	return &RecurringInvoiceHandler{recurringService: recurringService}
}

func (h *RecurringInvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	profiles := router.Group("/recurring-invoices")
	profiles.Use(middleware.RequireRole(anyRole...))
	{
		profiles.GET("/", h.ListProfiles)
		profiles.POST("/create/", h.CreateProfile)
		profiles.POST("/:id/generate/", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.GenerateNow)
	}
}

// ListProfiles returns recurring invoice profiles
// @Summary      List recurring invoices
// @Tags         recurring-invoices
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "ACTIVE, STOPPED or EXPIRED"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=response.Page}
// @Router       /api/v1/sales/recurring-invoices/ [get]
func (h *RecurringInvoiceHandler) ListProfiles(c *gin.Context) {
	p := pagination.Parse(c)
	profiles, total, err := h.recurringService.ListProfiles(c.Request.Context(), c.Query("status"), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paged(http.StatusOK, profiles, total, p.Page, p.Limit))
}

// CreateProfile creates a recurring invoice profile
// @Summary      Create recurring invoice
// @Tags         recurring-invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateRecurringInvoiceRequest  true  "Recurring invoice"
// @Success      201      {object}  response.Response{data=service.RecurringInvoiceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/v1/sales/recurring-invoices/create/ [post]
func (h *RecurringInvoiceHandler) CreateProfile(c *gin.Context) {
	var req service.CreateRecurringInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	profile, err := h.recurringService.CreateProfile(c.Request.Context(), req, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, profile))
}

// GenerateNow issues an invoice from a profile immediately
// @Summary      Generate invoice now
// @Tags         recurring-invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Recurring invoice ID"
// @Success      201  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/v1/sales/recurring-invoices/{id}/generate/ [post]
func (h *RecurringInvoiceHandler) GenerateNow(c *gin.Context) {
	invoice, err := h.recurringService.GenerateNow(c.Request.Context(), c.Param("id"), middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}
