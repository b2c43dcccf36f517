package handlers

import (
	"net/http"

	"github.com/formify/form-service/internal/formschema"
	"github.com/formify/form-service/internal/services"
	"github.com/formify/form-service/internal/utils"
	"github.com/formify/form-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type FormHandler struct {
	BaseHandler
	formService services.FormService
}

func NewFormHandler(formService services.FormService, v *validator.Validator, logger utils.Logger) *FormHandler {
	return &FormHandler{
		BaseHandler: NewBaseHandler(logger, v),
		formService: formService,
	}
}

// CreateForm creates a form from a definition
// @Summary Create form
// @Tags forms
// @Accept json
// @Produce json
// @Param form body services.CreateFormRequest true "Form definition"
// @Success 201 {object} models.Form
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /forms [post]
func (h *FormHandler) CreateForm(c *gin.Context) {
	var req services.CreateFormRequest
	if !h.BindJSON(c, &req) {
		return
	}

	form, err := h.formService.Create(c.Request.Context(), SessionFromContext(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, form)
}

// ListMyForms lists the caller's forms
// @Summary List own forms
// @Tags forms
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Param access query string false "Access filter"
// @Success 200 {object} services.FormListResponse
// @Router /forms/mine [get]
func (h *FormHandler) ListMyForms(c *gin.Context) {
	list, err := h.formService.ListMine(c.Request.Context(), SessionFromContext(c), parseFormFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GetForm returns a form the caller may view
// @Summary Get form
// @Tags forms
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} models.Form
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id} [get]
func (h *FormHandler) GetForm(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	form, err := h.formService.Get(c.Request.Context(), SessionFromContext(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// GetFormSchema returns the questions, rule descriptors and default values
// needed to render the form
// @Summary Get form schema
// @Tags forms
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} services.FormSchemaResponse
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id}/schema [get]
func (h *FormHandler) GetFormSchema(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	schema, err := h.formService.Schema(c.Request.Context(), SessionFromContext(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, schema)
}

// GetFormOpenAPI returns an OpenAPI 3 document for the form's submit and
// validate endpoints
// @Summary Form OpenAPI document
// @Tags forms
// @Produce json
// @Param id path string true "Form ID"
// @Success 200 {object} object
// @Failure 404 {object} ErrorResponse
// @Router /forms/{id}/openapi [get]
func (h *FormHandler) GetFormOpenAPI(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	doc, err := h.formService.OpenAPI(c.Request.Context(), SessionFromContext(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// ValidateForm checks raw values without storing anything. It answers 200
// with the field errors, which may be empty.
// @Summary Validate answers
// @Tags forms
// @Accept json
// @Produce json
// @Param id path string true "Form ID"
// @Param values body formschema.FormState true "Raw values keyed by question id"
// @Router /forms/{id}/validate [post]
func (h *FormHandler) ValidateForm(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var state formschema.FormState
	if err := c.ShouldBindJSON(&state); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err, err.Error())
		return
	}

	errs, err := h.formService.Validate(c.Request.Context(), SessionFromContext(c), id, state)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if errs == nil {
		errs = services.ValidationErrors{}
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":  len(errs) == 0,
		"errors": errs,
	})
}

// UpdateFormAccess changes who can open the form
// @Summary Update form access
// @Tags forms
// @Accept json
// @Produce json
// @Param id path string true "Form ID"
// @Param access body services.UpdateAccessRequest true "New access level"
// @Success 200 {object} models.Form
// @Failure 403 {object} ErrorResponse
// @Router /forms/{id}/access [put]
func (h *FormHandler) UpdateFormAccess(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	var req services.UpdateAccessRequest
	if !h.BindJSON(c, &req) {
		return
	}

	form, err := h.formService.UpdateAccess(c.Request.Context(), SessionFromContext(c), id, req.Access)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// DeleteForm removes a form and its responses
// @Summary Delete form
// @Tags forms
// @Param id path string true "Form ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Router /forms/{id} [delete]
func (h *FormHandler) DeleteForm(c *gin.Context) {
	id := ParseStringIDParam(c, "id")
	if id == "" {
		return
	}

	h.LogRequest(c, "Deleting form", "form_id", id)
	if err := h.formService.Delete(c.Request.Context(), SessionFromContext(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
