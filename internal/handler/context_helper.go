package handler

import (
	"database/sql"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/prepdeck/study-planner-api/internal/middleware"
	"github.com/prepdeck/study-planner-api/internal/models"
	appErrors "github.com/prepdeck/study-planner-api/pkg/errors"
	"github.com/prepdeck/study-planner-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// studentIDFromContext resolves the authenticated student or aborts with 401.
func studentIDFromContext(c *gin.Context) (string, bool) {
	claims := claimsFromContext(c)
	if claims == nil || claims.StudentID == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return claims.StudentID, true
}

// respondError normalises raw repository misses into 404 responses.
func respondError(c *gin.Context, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		response.Error(c, appErrors.ErrNotFound)
		return
	}
	response.Error(c, err)
}
