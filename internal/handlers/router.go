package handlers

import (
	"net/http"

	"github.com/formify/form-service/internal/services"
	"github.com/formify/form-service/internal/utils"
	"github.com/formify/form-service/internal/validator"
	"github.com/gin-gonic/gin"
)

type HandlerManager struct {
	formHandler     *FormHandler
	responseHandler *ResponseHandler
	tokenParser     TokenParser
	logger          utils.Logger
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	tokenParser TokenParser,
	v *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		formHandler:     NewFormHandler(serviceManager.Form(), v, logger),
		responseHandler: NewResponseHandler(serviceManager.Response(), v, logger),
		tokenParser:     tokenParser,
		logger:          logger,
	}
}

// NewRouter builds a gin engine with the shared middleware chain and all
// routes registered.
func (hm *HandlerManager) NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		utils.RequestID(),
		utils.LoggerMiddleware(hm.logger, "/health"),
		utils.ContextLogger(hm.logger),
	)
	hm.SetupRoutes(router)
	return router
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(SessionMiddleware(hm.tokenParser, hm.logger))
	{
		forms := v1.Group("/forms")
		{
			// Routes open to anonymous respondents; visibility is decided
			// by the form's access level
			forms.GET("/:id", hm.formHandler.GetForm)
			forms.GET("/:id/schema", hm.formHandler.GetFormSchema)
			forms.GET("/:id/openapi", hm.formHandler.GetFormOpenAPI)
			forms.POST("/:id/validate", hm.formHandler.ValidateForm)
			forms.POST("/:id/responses", hm.responseHandler.SubmitResponse)

			owner := forms.Group("", RequireSession())
			{
				owner.POST("", hm.formHandler.CreateForm)
				owner.GET("/mine", hm.formHandler.ListMyForms)
				owner.PUT("/:id/access", hm.formHandler.UpdateFormAccess)
				owner.DELETE("/:id", hm.formHandler.DeleteForm)

				owner.GET("/:id/responses", hm.responseHandler.ListResponses)
				owner.GET("/:id/responses/table", hm.responseHandler.GetResponseTable)
				owner.GET("/:id/responses/export", hm.responseHandler.ExportResponses)
			}
		}
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "form-service",
	})
}
