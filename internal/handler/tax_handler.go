package handler

import (
	"net/http"

	"salesdesk/internal/middleware"
	"salesdesk/internal/model"
	"salesdesk/internal/service"
	"salesdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type TaxHandler struct {
	taxService service.TaxService
}

func NewTaxHandler(taxService service.TaxService) *TaxHandler {
	return &TaxHandler{taxService: taxService}
}

func (h *TaxHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.RequireRole(anyRole...)
	router.GET("/TDS/", auth, h.list(model.TaxKindTDS))
	router.GET("/TCS/", auth, h.list(model.TaxKindTCS))
	router.POST("/TCS/", auth, h.CreateTCS)
}

// list returns the options of one tax kind
// @Summary      List TDS or TCS options
// @Tags         tax
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.TaxOptionResponse}
// @Router       /api/v1/sales/TDS/ [get]
// @Router       /api/v1/sales/TCS/ [get]
func (h *TaxHandler) list(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		options, err := h.taxService.ListOptions(c.Request.Context(), kind)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.Success(http.StatusOK, options))
	}
}

// CreateTCS adds a TCS option; TDS options are read-only
// @Summary      Create TCS option
// @Tags         tax
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateTaxOptionRequest  true  "Name and rate percent"
// @Success      201      {object}  response.Response{data=service.TaxOptionResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/v1/sales/TCS/ [post]
func (h *TaxHandler) CreateTCS(c *gin.Context) {
	var req service.CreateTaxOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	option, err := h.taxService.CreateOption(c.Request.Context(), model.TaxKindTCS, req, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, option))
}
