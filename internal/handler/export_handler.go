package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/dm-report/internal/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves spreadsheet downloads.
type ExportHandler struct {
	exportService ExportService
	log           zerolog.Logger
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportService ExportService, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		exportService: exportService,
		log:           log.With().Str("component", "export_handler").Logger(),
	}
}

// ExportRecords downloads the filtered listing as xlsx.
// GET /dashboard/export?q=&year=
func (h *ExportHandler) ExportRecords(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportService.ExportRecords(c.Request.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to export records")
		response.Fail(c, http.StatusInternalServerError, response.ErrExportFailed)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
