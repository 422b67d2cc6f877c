package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/diaryfi/diaryfi-api/pkg/helpers"
	"github.com/diaryfi/diaryfi-api/pkg/response"
)

// Auth validates the bearer session token and sets userID in the Gin
// context. Expiry and signature are the only checks; there is no server-side
// session or revocation list.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.Error[any](c, http.StatusUnauthorized, "missing bearer token", nil)
			c.Abort()
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		claims, err := jwt.Parse(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid or expired token", nil)
			c.Abort()
			return
		}
		c.Set("userID", claims.UserID)
		c.Next()
	}
}
