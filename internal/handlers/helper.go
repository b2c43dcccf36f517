package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/formify/form-service/internal/formschema"
	"github.com/formify/form-service/internal/models"
	"github.com/formify/form-service/internal/repositories"
	"github.com/gin-gonic/gin"
)

func ParseStringIDParam(c *gin.Context, param string) string {
	idStr := strings.TrimSpace(c.Param(param))
	if idStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: "ID cannot be empty",
		})
		return ""
	}
	return idStr
}

// queryInt reads a non-negative integer query parameter. Malformed values
// fall back to def.
func queryInt(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func queryTime(c *gin.Context, key string) *time.Time {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	t, ok := formschema.ParseDate(raw)
	if !ok {
		return nil
	}
	return &t
}

func parseFormFilters(c *gin.Context) repositories.FormFilters {
	filters := repositories.FormFilters{
		Limit:     queryInt(c, "limit", 20),
		Offset:    queryInt(c, "offset", 0),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if raw := c.Query("access"); raw != "" {
		access := models.FormAccess(strings.ToUpper(raw))
		if access.Valid() {
			filters.Access = &access
		}
	}
	return filters
}

func parseResponseFilters(c *gin.Context) repositories.ResponseFilters {
	return repositories.ResponseFilters{
		DateFrom: queryTime(c, "date_from"),
		DateTo:   queryTime(c, "date_to"),
		Limit:    queryInt(c, "limit", 50),
		Offset:   queryInt(c, "offset", 0),
	}
}
