package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/clinic-scheduler-api/internal/dto"
	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/internal/service"
	"github.com/noah-isme/clinic-scheduler-api/pkg/response"
)

// ScheduleHandler exposes session booking, mutation and history routes.
type ScheduleHandler struct {
	schedules *service.ScheduleService
}

// NewScheduleHandler constructs a ScheduleHandler.
func NewScheduleHandler(schedules *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules}
}

// List godoc
// @Summary List sessions
// @Tags Schedules
// @Produce json
// @Param therapist_id query string false "Therapist ID"
// @Param child_id query string false "Child ID"
// @Param status query string false "scheduled, completed, cancelled or rescheduled"
// @Param week query string false "Any date of the week (YYYY-MM-DD)"
// @Param date query string false "Exact day (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	filter := models.ScheduleFilter{
		TherapistID: c.Query("therapist_id"),
		ChildID:     c.Query("child_id"),
		Status:      models.ScheduleStatus(strings.ToLower(c.Query("status"))),
	}
	var err error
	if filter.Week, err = dateFromQuery(c, "week"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.Date, err = dateFromQuery(c, "date"); err != nil {
		response.Error(c, err)
		return
	}
	filter.Page, filter.PageSize = pagingFromQuery(c)

	schedules, pagination, err := h.schedules.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, pagination)
}

// Get godoc
// @Summary Get session detail
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	schedule, err := h.schedules.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Create godoc
// @Summary Book a session
// @Tags Schedules
// @Accept json
// @Produce json
// @Param X-User-ID header string false "Staff member performing the change"
// @Param payload body dto.CreateScheduleRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /schedules [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid schedule payload"))
		return
	}
	schedule, err := h.schedules.Create(c.Request.Context(), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, schedule)
}

// Update godoc
// @Summary Patch a session
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param X-User-ID header string false "Staff member performing the change"
// @Param payload body dto.UpdateScheduleRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /schedules/{id} [patch]
func (h *ScheduleHandler) Update(c *gin.Context) {
	var req dto.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid schedule payload"))
		return
	}
	schedule, err := h.schedules.Update(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Move godoc
// @Summary Move a session to another slot
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param X-User-ID header string false "Staff member performing the change"
// @Param payload body dto.MoveScheduleRequest true "Target slot"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /schedules/{id}/move [post]
func (h *ScheduleHandler) Move(c *gin.Context) {
	var req dto.MoveScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid move payload"))
		return
	}
	schedule, err := h.schedules.Move(c.Request.Context(), c.Param("id"), req, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// PreviewMove godoc
// @Summary Preview the impact of a move without saving it
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body dto.MoveScheduleRequest true "Target slot"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/move/preview [post]
func (h *ScheduleHandler) PreviewMove(c *gin.Context) {
	var req dto.MoveScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid move payload"))
		return
	}
	preview, err := h.schedules.PreviewMove(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, preview, nil)
}

// Cancel godoc
// @Summary Cancel a session
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param X-User-ID header string false "Staff member performing the change"
// @Param payload body dto.StatusChangeRequest false "Reason"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/cancel [post]
func (h *ScheduleHandler) Cancel(c *gin.Context) {
	req, ok := bindStatusChange(c)
	if !ok {
		return
	}
	schedule, err := h.schedules.Cancel(c.Request.Context(), c.Param("id"), req.Reason, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Complete godoc
// @Summary Mark a session as delivered
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param X-User-ID header string false "Staff member performing the change"
// @Param payload body dto.StatusChangeRequest false "Reason"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/complete [post]
func (h *ScheduleHandler) Complete(c *gin.Context) {
	req, ok := bindStatusChange(c)
	if !ok {
		return
	}
	schedule, err := h.schedules.Complete(c.Request.Context(), c.Param("id"), req.Reason, actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// History godoc
// @Summary Change history of a session, newest first
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/history [get]
func (h *ScheduleHandler) History(c *gin.Context) {
	entries, err := h.schedules.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Validate godoc
// @Summary Check a proposed session against the scheduling rules
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.CandidateRequest true "Proposed session"
// @Success 200 {object} response.Envelope
// @Router /schedules/validate [post]
func (h *ScheduleHandler) Validate(c *gin.Context) {
	var req dto.CandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid candidate payload"))
		return
	}
	result, err := h.schedules.Validate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Conflicts godoc
// @Summary List sessions overlapping a proposed one
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.CandidateRequest true "Proposed session"
// @Success 200 {object} response.Envelope
// @Router /schedules/conflicts [post]
func (h *ScheduleHandler) Conflicts(c *gin.Context) {
	var req dto.CandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid candidate payload"))
		return
	}
	conflicts, err := h.schedules.DetectConflicts(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conflicts, nil)
}

// bindStatusChange accepts an empty body as a change without a reason.
func bindStatusChange(c *gin.Context) (dto.StatusChangeRequest, bool) {
	var req dto.StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, bindError(err, "invalid status payload"))
		return req, false
	}
	return req, true
}
