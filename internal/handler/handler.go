package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/dm-report/internal/model"
	"github.com/stemsi/dm-report/internal/repository"
	"github.com/stemsi/dm-report/internal/response"
)

// RecordService is the record store as seen by the HTTP layer.
type RecordService interface {
	GetByID(ctx context.Context, id int) (*model.CaseRecord, error)
	List(ctx context.Context, filter model.CaseRecordFilter) ([]model.CaseRecord, error)
	AvailableYears(ctx context.Context) ([]int, error)
	Create(ctx context.Context, req *model.CaseRecordRequest) (*model.CaseRecord, error)
	Update(ctx context.Context, id int, req *model.CaseRecordRequest) (*model.CaseRecord, error)
	Delete(ctx context.Context, id int) error
}

// ReportService computes the aggregate views.
type ReportService interface {
	GetGlobalStats(ctx context.Context) (*model.GlobalStats, error)
	GetYearlyTrend(ctx context.Context) (*model.YearlyTrend, error)
	GetRegionalBreakdown(ctx context.Context) (*model.RegionalBreakdown, error)
}

// ExportService renders record listings as spreadsheets.
type ExportService interface {
	ExportRecords(ctx context.Context, filter model.CaseRecordFilter) (*bytes.Buffer, string, error)
}

// parseID reads the :id path parameter.
func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return 0, false
	}
	return id, true
}

// parseFilter reads the q and year query parameters shared by the listing
// and the export. q is used as typed; an empty q or year means no filter.
func parseFilter(c *gin.Context) (model.CaseRecordFilter, bool) {
	filter := model.CaseRecordFilter{Query: c.Query("q")}

	raw := strings.TrimSpace(c.Query("year"))
	if raw == "" {
		return filter, true
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidYear, map[string]string{
			"year": strconv.Quote(raw) + " is not a valid number",
		})
		return filter, false
	}
	filter.Year = &year
	return filter, true
}

// failStore maps store errors onto responses. Unknown errors are logged.
func failStore(c *gin.Context, log zerolog.Logger, err error, msg string) {
	if errors.Is(err, repository.ErrNotFound) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	log.Error().Err(err).Msg(msg)
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}
