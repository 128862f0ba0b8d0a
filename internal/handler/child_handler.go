package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/clinic-scheduler-api/internal/dto"
	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/internal/service"
	"github.com/noah-isme/clinic-scheduler-api/pkg/response"
)

// ChildHandler wires child services to HTTP routes.
type ChildHandler struct {
	children  *service.ChildService
	analytics *service.AnalyticsService
}

// NewChildHandler constructs a new ChildHandler.
func NewChildHandler(children *service.ChildService, analytics *service.AnalyticsService) *ChildHandler {
	return &ChildHandler{children: children, analytics: analytics}
}

// List godoc
// @Summary List children
// @Tags Children
// @Produce json
// @Param search query string false "Search by name"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /children [get]
func (h *ChildHandler) List(c *gin.Context) {
	filter := models.ChildFilter{Search: strings.TrimSpace(c.Query("search"))}
	filter.Page, filter.PageSize = pagingFromQuery(c)

	children, pagination, err := h.children.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, children, pagination)
}

// Get godoc
// @Summary Get child detail
// @Tags Children
// @Produce json
// @Param id path string true "Child ID"
// @Success 200 {object} response.Envelope
// @Router /children/{id} [get]
func (h *ChildHandler) Get(c *gin.Context) {
	child, err := h.children.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, child, nil)
}

// Create godoc
// @Summary Register child
// @Tags Children
// @Accept json
// @Produce json
// @Param payload body dto.CreateChildRequest true "Child payload"
// @Success 201 {object} response.Envelope
// @Router /children [post]
func (h *ChildHandler) Create(c *gin.Context) {
	var req dto.CreateChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid child payload"))
		return
	}
	child, err := h.children.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, child)
}

// Update godoc
// @Summary Update child
// @Tags Children
// @Accept json
// @Produce json
// @Param id path string true "Child ID"
// @Param payload body dto.UpdateChildRequest true "Child payload"
// @Success 200 {object} response.Envelope
// @Router /children/{id} [put]
func (h *ChildHandler) Update(c *gin.Context) {
	var req dto.UpdateChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid child payload"))
		return
	}
	child, err := h.children.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, child, nil)
}

// Coverage godoc
// @Summary Weekly therapy coverage of a child
// @Tags Children
// @Produce json
// @Param id path string true "Child ID"
// @Param week query string false "Any date of the week (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /children/{id}/coverage [get]
func (h *ChildHandler) Coverage(c *gin.Context) {
	week, err := weekFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	coverage, cacheHit, err := h.analytics.Coverage(c.Request.Context(), c.Param("id"), week)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondDerived(c, coverage, cacheHit)
}
