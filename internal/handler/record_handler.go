package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/dm-report/internal/model"
	"github.com/stemsi/dm-report/internal/response"
	"github.com/stemsi/dm-report/internal/validator"
)

// dashboardPath is where browser form submissions land after a write.
const dashboardPath = "/dashboard"

// recordFormFields lists the inputs of the create/edit form, in display order.
var recordFormFields = []string{
	"province_code", "province_name", "regency_code", "regency_name",
	"case_count", "unit", "year",
}

// RecordHandler serves the record listing and the create/edit/delete flows.
type RecordHandler struct {
	recordService RecordService
	log           zerolog.Logger
}

// NewRecordHandler creates a new RecordHandler.
func NewRecordHandler(recordService RecordService, log zerolog.Logger) *RecordHandler {
	return &RecordHandler{
		recordService: recordService,
		log:           log.With().Str("component", "record_handler").Logger(),
	}
}

// Dashboard lists records filtered by q (regency substring) and year.
// GET /dashboard?q=&year=
func (h *RecordHandler) Dashboard(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	records, err := h.recordService.List(ctx, filter)
	if err != nil {
		failStore(c, h.log, err, "Failed to list records")
		return
	}
	years, err := h.recordService.AvailableYears(ctx)
	if err != nil {
		failStore(c, h.log, err, "Failed to list years")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"data":           records,
		"current_search": filter.Query,
		"current_year":   filter.Year,
		"years":          years,
	})
}

// CreateForm describes an empty record form.
// GET /create
func (h *RecordHandler) CreateForm(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"action": "Add",
		"fields": recordFormFields,
	})
}

// Create stores a new record.
// POST /create
func (h *RecordHandler) Create(c *gin.Context) {
	var req model.CaseRecordRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	rec, err := h.recordService.Create(c.Request.Context(), &req)
	if err != nil {
		failStore(c, h.log, err, "Failed to create record")
		return
	}
	response.SuccessOrRedirect(c, http.StatusCreated, gin.H{"record": rec}, dashboardPath)
}

// EditForm returns an existing record for editing.
// GET /edit/:id
func (h *RecordHandler) EditForm(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rec, err := h.recordService.GetByID(c.Request.Context(), id)
	if err != nil {
		failStore(c, h.log, err, "Failed to load record")
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"action": "Edit",
		"data":   rec,
		"fields": recordFormFields,
	})
}

// Update overwrites an existing record.
// POST /edit/:id
func (h *RecordHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req model.CaseRecordRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	rec, err := h.recordService.Update(c.Request.Context(), id, &req)
	if err != nil {
		failStore(c, h.log, err, "Failed to update record")
		return
	}
	response.SuccessOrRedirect(c, http.StatusOK, gin.H{"record": rec}, dashboardPath)
}

// Delete removes a record.
// POST /delete/:id
func (h *RecordHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.recordService.Delete(c.Request.Context(), id); err != nil {
		failStore(c, h.log, err, "Failed to delete record")
		return
	}
	response.SuccessOrRedirect(c, http.StatusOK, gin.H{"message": "record deleted successfully"}, dashboardPath)
}
