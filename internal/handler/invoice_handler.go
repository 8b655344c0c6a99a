package handler

import (
	"net/http"

	"salesdesk/internal/middleware"
	"salesdesk/internal/service"
	"salesdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/invoices")
	invoices.Use(middleware.RequireRole(anyRole...))
	{
		invoices.GET("/unpaid/", h.ListUnpaid)
		invoices.POST("/create/", h.CreateInvoice)
		invoices.GET("/:id/", h.GetInvoice)
	}
}

// ListUnpaid returns a customer's invoices with an amount still due
// @Summary      List unpaid invoices
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        customer  query     string  true  "Customer ID"
// @Success      200       {object}  response.Response{data=[]service.UnpaidInvoiceResponse}
// @Failure      400       {object}  response.Response
// @Router       /api/v1/sales/invoices/unpaid/ [get]
func (h *InvoiceHandler) ListUnpaid(c *gin.Context) {
	invoices, err := h.invoiceService.ListUnpaid(c.Request.Context(), c.Query("customer"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoices))
}

// CreateInvoice issues a one-off invoice
// @Summary      Create invoice
// @Description  Totals and the invoice number are assigned by the server
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateInvoiceRequest  true  "Invoice"
// @Success      201      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/v1/sales/invoices/create/ [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), req, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// GetInvoice returns one invoice with its lines
// @Summary      Get invoice
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/v1/sales/invoices/{id}/ [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}
