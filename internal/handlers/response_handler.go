package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/formify/form-service/internal/services"
	"github.com/formify/form-service/internal/utils"
	"github.com/formify/form-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type ResponseHandler struct {
	BaseHandler
	responseService services.ResponseService
}

func NewResponseHandler(responseService services.ResponseService, v *validator.Validator, logger utils.Logger) *ResponseHandler {
	return &ResponseHandler{
		BaseHandler:     NewBaseHandler(logger, v),
		responseService: responseService,
	}
}

// SubmitResponse stores one response. The body carries either normalized
// answers or raw values keyed by question id.
// @Summary Submit response
// @Tags responses
// @Accept json
// @Produce json
// @Param id path string true "Form ID"
// @Param response body services.SubmitResponseRequest true "Answers or raw values"
// @Success 201 {object} submission.SubmitResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id}/responses [post]
func (h *ResponseHandler) SubmitResponse(c *gin.Context) {
	formID := ParseStringIDParam(c, "id")
	if formID == "" {
		return
	}

	var req services.SubmitResponseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.responseService.Submit(c.Request.Context(), SessionFromContext(c), formID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListResponses lists stored responses, newest first
// @Summary List responses
// @Tags responses
// @Produce json
// @Param id path string true "Form ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Param date_from query string false "Earliest submission date"
// @Param date_to query string false "Latest submission date"
// @Success 200 {object} services.ResponseListResponse
// @Router /forms/{id}/responses [get]
func (h *ResponseHandler) ListResponses(c *gin.Context) {
	formID := ParseStringIDParam(c, "id")
	if formID == "" {
		return
	}

	list, err := h.responseService.List(c.Request.Context(), SessionFromContext(c), formID, parseResponseFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetResponseTable returns the answers grid
// @Summary Response table
// @Tags responses
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} services.ResponseTable
// @Router /forms/{id}/responses/table [get]
func (h *ResponseHandler) GetResponseTable(c *gin.Context) {
	formID := ParseStringIDParam(c, "id")
	if formID == "" {
		return
	}

	table, err := h.responseService.BuildTable(c.Request.Context(), SessionFromContext(c), formID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

// ExportResponses downloads the answers grid as a spreadsheet
// @Summary Export responses
// @Tags responses
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce text/csv
// @Param id path string true "Form ID"
// @Param format query string false "xlsx (default) or csv"
// @Router /forms/{id}/responses/export [get]
func (h *ResponseHandler) ExportResponses(c *gin.Context) {
	formID := ParseStringIDParam(c, "id")
	if formID == "" {
		return
	}
	format := services.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(services.ExportXLSX))))

	var buf bytes.Buffer
	if err := h.responseService.Export(c.Request.Context(), SessionFromContext(c), formID, format, &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Exported responses", "form_id", formID, "format", format, "bytes", buf.Len())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-responses.%s"`, formID, format))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
