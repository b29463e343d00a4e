package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/exam-assess-api/internal/middleware"
	"github.com/noah-isme/exam-assess-api/internal/models"
)

// currentClaims extracts JWT claims placed by the auth middleware.
func currentClaims(c *gin.Context) *models.JWTClaims {
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

// enteredBy resolves the acting staff ID for mark attribution.
func enteredBy(c *gin.Context) string {
	if claims := currentClaims(c); claims != nil {
		return claims.UserID
	}
	return ""
}
