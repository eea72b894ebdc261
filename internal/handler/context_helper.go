package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/husseinvr97/fasee7System-sub002/internal/middleware"
	"github.com/husseinvr97/fasee7System-sub002/internal/models"
	appErrors "github.com/husseinvr97/fasee7System-sub002/pkg/errors"
	"github.com/husseinvr97/fasee7System-sub002/pkg/response"
)

// actorID returns the user ID of the authenticated caller, or "" outside the JWT group.
func actorID(c *gin.Context) string {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return ""
	}
	if claims, ok := value.(*models.JWTClaims); ok && claims != nil {
		return claims.UserID
	}
	return ""
}

// pathID returns a trimmed path parameter.
func pathID(c *gin.Context, name string) string {
	return strings.TrimSpace(c.Param(name))
}

// bindJSON decodes the request body into dst. On failure the validation
// error is already written and false is returned.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return false
	}
	return true
}
