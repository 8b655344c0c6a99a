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

// anyRole admits every authenticated back-office user.
var anyRole = []string{model.RoleAdmin, model.RoleManager, model.RoleStaff}

type CustomerHandler struct {
	customerService service.CustomerService
}

func NewCustomerHandler(customerService service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

func (h *CustomerHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.RequireRole(anyRole...)
	router.GET("/customers/", auth, h.ListCustomers)
	router.POST("/customers/", auth, h.CreateCustomer)
	router.GET("/sales-persons/", auth, h.ListSalesPersons)
	router.POST("/sales-persons/", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.CreateSalesPerson)
}

// ListCustomers returns customers matching an optional search term
// @Summary      List customers
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        search  query     string  false  "Matches name, company, email or phone"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=response.Page}
// @Router       /api/v1/sales/customers/ [get]
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	p := pagination.Parse(c)
	customers, total, err := h.customerService.ListCustomers(c.Request.Context(), c.Query("search"), p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paged(http.StatusOK, customers, total, p.Page, p.Limit))
}

// CreateCustomer adds a customer
// @Summary      Create customer
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateCustomerRequest  true  "Customer"
// @Success      201      {object}  response.Response{data=service.CustomerResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/v1/sales/customers/ [post]
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req service.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	customer, err := h.customerService.CreateCustomer(c.Request.Context(), req, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, customer))
}

// ListSalesPersons returns every sales person
// @Summary      List sales persons
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.SalesPersonResponse}
// @Router       /api/v1/sales/sales-persons/ [get]
func (h *CustomerHandler) ListSalesPersons(c *gin.Context) {
	persons, err := h.customerService.ListSalesPersons(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, persons))
}

// CreateSalesPerson adds a sales person
// @Summary      Create sales person
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateSalesPersonRequest  true  "Sales person"
// @Success      201      {object}  response.Response{data=service.SalesPersonResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/v1/sales/sales-persons/ [post]
func (h *CustomerHandler) CreateSalesPerson(c *gin.Context) {
	var req service.CreateSalesPersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	person, err := h.customerService.CreateSalesPerson(c.Request.Context(), req, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, person))
}
