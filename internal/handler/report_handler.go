package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/dm-report/internal/response"
)

// ReportHandler serves the aggregate views.
type ReportHandler struct {
	reportService ReportService
	log           zerolog.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService ReportService, log zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		log:           log.With().Str("component", "report_handler").Logger(),
	}
}

// Home returns table-wide statistics.
// GET /
func (h *ReportHandler) Home(c *gin.Context) {
	stats, err := h.reportService.GetGlobalStats(c.Request.Context())
	if err != nil {
		failStore(c, h.log, err, "Failed to compute global stats")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// Trend returns case sums per year.
// GET /trend
func (h *ReportHandler) Trend(c *gin.Context) {
	trend, err := h.reportService.GetYearlyTrend(c.Request.Context())
	if err != nil {
		failStore(c, h.log, err, "Failed to compute yearly trend")
		return
	}
	response.Success(c, http.StatusOK, trend)
}

// Regional returns the regency ranking and pie breakdown.
// GET /regional
func (h *ReportHandler) Regional(c *gin.Context) {
	breakdown, err := h.reportService.GetRegionalBreakdown(c.Request.Context())
	if err != nil {
		failStore(c, h.log, err, "Failed to compute regional breakdown")
		return
	}
	response.Success(c, http.StatusOK, breakdown)
}
