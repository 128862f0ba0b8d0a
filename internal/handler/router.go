package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups every route handler of the API.
type Handlers struct {
	Children   *ChildHandler
	Therapists *TherapistHandler
	Schedules  *ScheduleHandler
	Analytics  *AnalyticsHandler
	Reports    *ReportHandler
	Metrics    *MetricsHandler
}

// RegisterRoutes mounts the versioned API under group.
func RegisterRoutes(group *gin.RouterGroup, h Handlers) {
	children := group.Group("/children")
	children.GET("", h.Children.List)
	children.POST("", h.Children.Create)
	children.GET("/:id", h.Children.Get)
	children.PUT("/:id", h.Children.Update)
	children.GET("/:id/coverage", h.Children.Coverage)

	therapists := group.Group("/therapists")
	therapists.GET("", h.Therapists.List)
	therapists.POST("", h.Therapists.Create)
	therapists.POST("/suggestions", h.Therapists.Suggestions)
	therapists.GET("/:id", h.Therapists.Get)
	therapists.PUT("/:id", h.Therapists.Update)
	therapists.GET("/:id/workload", h.Therapists.Workload)
	therapists.GET("/:id/available-slots", h.Therapists.AvailableSlots)

	schedules := group.Group("/schedules")
	schedules.GET("", h.Schedules.List)
	schedules.POST("", h.Schedules.Create)
	schedules.POST("/validate", h.Schedules.Validate)
	schedules.POST("/conflicts", h.Schedules.Conflicts)
	schedules.GET("/:id", h.Schedules.Get)
	schedules.PATCH("/:id", h.Schedules.Update)
	schedules.POST("/:id/move", h.Schedules.Move)
	schedules.POST("/:id/move/preview", h.Schedules.PreviewMove)
	schedules.POST("/:id/cancel", h.Schedules.Cancel)
	schedules.POST("/:id/complete", h.Schedules.Complete)
	schedules.GET("/:id/history", h.Schedules.History)

	analytics := group.Group("/analytics")
	analytics.GET("/workload", h.Analytics.Workloads)
	analytics.GET("/workload/alerts", h.Analytics.WorkloadAlerts)
	analytics.GET("/coverage", h.Analytics.Coverage)
	group.GET("/history", h.Analytics.History)

	group.GET("/reports/:kind", h.Reports.Download)
	group.GET("/system/metrics", h.Metrics.System)
}
