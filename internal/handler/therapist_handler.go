package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/clinic-scheduler-api/internal/dto"
	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/internal/service"
	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
	"github.com/noah-isme/clinic-scheduler-api/pkg/response"
)

// TherapistHandler wires therapist services to HTTP routes.
type TherapistHandler struct {
	therapists *service.TherapistService
	analytics  *service.AnalyticsService
	schedules  *service.ScheduleService
}

// NewTherapistHandler constructs a new TherapistHandler.
func NewTherapistHandler(therapists *service.TherapistService, analytics *service.AnalyticsService, schedules *service.ScheduleService) *TherapistHandler {
	return &TherapistHandler{therapists: therapists, analytics: analytics, schedules: schedules}
}

// List godoc
// @Summary List therapists
// @Tags Therapists
// @Produce json
// @Param search query string false "Search by name"
// @Param specialty query string false "Filter by specialty"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /therapists [get]
func (h *TherapistHandler) List(c *gin.Context) {
	filter := models.TherapistFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		Specialty: strings.TrimSpace(c.Query("specialty")),
	}
	filter.Page, filter.PageSize = pagingFromQuery(c)

	therapists, pagination, err := h.therapists.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, therapists, pagination)
}

// Get godoc
// @Summary Get therapist detail
// @Tags Therapists
// @Produce json
// @Param id path string true "Therapist ID"
// @Success 200 {object} response.Envelope
// @Router /therapists/{id} [get]
func (h *TherapistHandler) Get(c *gin.Context) {
	therapist, err := h.therapists.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, therapist, nil)
}

// Create godoc
// @Summary Register therapist
// @Tags Therapists
// @Accept json
// @Produce json
// @Param payload body dto.CreateTherapistRequest true "Therapist payload"
// @Success 201 {object} response.Envelope
// @Router /therapists [post]
func (h *TherapistHandler) Create(c *gin.Context) {
	var req dto.CreateTherapistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid therapist payload"))
		return
	}
	therapist, err := h.therapists.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, therapist)
}

// Update godoc
// @Summary Update therapist
// @Tags Therapists
// @Accept json
// @Produce json
// @Param id path string true "Therapist ID"
// @Param payload body dto.UpdateTherapistRequest true "Therapist payload"
// @Success 200 {object} response.Envelope
// @Router /therapists/{id} [put]
func (h *TherapistHandler) Update(c *gin.Context) {
	var req dto.UpdateTherapistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid therapist payload"))
		return
	}
	therapist, err := h.therapists.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, therapist, nil)
}

// Workload godoc
// @Summary Weekly workload of a therapist
// @Tags Therapists
// @Produce json
// @Param id path string true "Therapist ID"
// @Param week query string false "Any date of the week (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /therapists/{id}/workload [get]
func (h *TherapistHandler) Workload(c *gin.Context) {
	week, err := weekFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	workload, cacheHit, err := h.analytics.Workload(c.Request.Context(), c.Param("id"), week)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondDerived(c, workload, cacheHit)
}

// AvailableSlots godoc
// @Summary Free start times for a therapist on a day
// @Tags Therapists
// @Produce json
// @Param id path string true "Therapist ID"
// @Param date query string true "Day (YYYY-MM-DD)"
// @Param duration query int false "Session length in minutes"
// @Param child_id query string false "Also avoid this child's sessions"
// @Success 200 {object} response.Envelope
// @Router /therapists/{id}/available-slots [get]
func (h *TherapistHandler) AvailableSlots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date required"))
		return
	}
	duration := 0
	if raw := c.Query("duration"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "duration must be a positive integer"))
			return
		}
		duration = parsed
	}
	slots, err := h.schedules.AvailableSlots(c.Request.Context(), c.Param("id"), date, duration, c.Query("child_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Suggestions godoc
// @Summary Rank therapists able to take a session
// @Tags Therapists
// @Accept json
// @Produce json
// @Param payload body dto.SuggestionRequest true "Proposed session"
// @Success 200 {object} response.Envelope
// @Router /therapists/suggestions [post]
func (h *TherapistHandler) Suggestions(c *gin.Context) {
	var req dto.SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid suggestion payload"))
		return
	}
	suggestions, err := h.schedules.Suggestions(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, suggestions, nil)
}
