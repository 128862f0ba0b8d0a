package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/clinic-scheduler-api/internal/service"
	"github.com/noah-isme/clinic-scheduler-api/pkg/response"
)

// ReportHandler exposes downloadable weekly reports.
type ReportHandler struct {
	exports *service.ExportService
}

// NewReportHandler constructs handler.
func NewReportHandler(exports *service.ExportService) *ReportHandler {
	return &ReportHandler{exports: exports}
}

// Download godoc
// @Summary Download a weekly report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param kind path string true "workload, coverage or history"
// @Param week query string false "Any date of the week (YYYY-MM-DD)"
// @Param format query string false "csv (default) or pdf"
// @Param store query bool false "Also keep a copy in report storage"
// @Success 200 {file} file
// @Router /reports/{kind} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	week, err := weekFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.Generate(c.Request.Context(), c.Param("kind"), week, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if keep, _ := strconv.ParseBool(c.Query("store")); keep {
		if _, err := h.exports.Store(file); err != nil {
			response.Error(c, err)
			return
		}
	}
	response.File(c, file.Filename, file.ContentType, file.Payload)
}
