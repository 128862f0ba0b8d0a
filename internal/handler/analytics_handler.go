package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/clinic-scheduler-api/internal/middleware"
	"github.com/noah-isme/clinic-scheduler-api/internal/models"
	"github.com/noah-isme/clinic-scheduler-api/internal/service"
	appErrors "github.com/noah-isme/clinic-scheduler-api/pkg/errors"
	"github.com/noah-isme/clinic-scheduler-api/pkg/response"
)

// AnalyticsHandler exposes weekly workload, coverage and ledger views.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	schedules *service.ScheduleService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService, schedules *service.ScheduleService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, schedules: schedules}
}

// Workloads godoc
// @Summary Workload of every therapist for a week, heaviest first
// @Tags Analytics
// @Produce json
// @Param week query string false "Any date of the week (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /analytics/workload [get]
func (h *AnalyticsHandler) Workloads(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	week, err := weekFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	workloads, err := h.analytics.ListWorkloads(c.Request.Context(), week)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, workloads, nil)
}

// WorkloadAlerts godoc
// @Summary Therapists near or over their weekly limit
// @Tags Analytics
// @Produce json
// @Param week query string false "Any date of the week (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /analytics/workload/alerts [get]
func (h *AnalyticsHandler) WorkloadAlerts(c *gin.Context) {
	week, err := weekFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	alerts, err := h.analytics.WorkloadAlerts(c.Request.Context(), week)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, alerts, nil)
}

// Coverage godoc
// @Summary Therapy coverage of every child for a week
// @Tags Analytics
// @Produce json
// @Param week query string false "Any date of the week (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /analytics/coverage [get]
func (h *AnalyticsHandler) Coverage(c *gin.Context) {
	week, err := weekFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	coverage, err := h.analytics.ListCoverage(c.Request.Context(), week)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, coverage, nil)
}

// History godoc
// @Summary Clinic-wide change ledger, newest first
// @Tags Analytics
// @Produce json
// @Param schedule_id query string false "Schedule ID"
// @Param change_type query string false "created, updated, cancelled, rescheduled or completed"
// @Param changed_by query string false "Actor"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /history [get]
func (h *AnalyticsHandler) History(c *gin.Context) {
	filter := models.HistoryFilter{
		ScheduleID: c.Query("schedule_id"),
		ChangeType: models.ChangeType(c.Query("change_type")),
		ChangedBy:  c.Query("changed_by"),
	}
	filter.Page, filter.PageSize = pagingFromQuery(c)
	entries, pagination, err := h.schedules.AllHistory(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}

// respondDerived writes a derived value with its cache metadata.
func respondDerived(c *gin.Context, data interface{}, cacheHit bool) {
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, data, nil, middleware.ExtractMeta(c))
}
