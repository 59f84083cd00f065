package httpHandler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/harumaki2000/medication-app/usecases"
)

// RequireUser rejects requests to /users/:user_id/... unless they carry a
// bearer token issued to that same user.
func RequireUser(users *usecases.UserUseCase) gin.HandlerFunc {
	return func(c *gin.Context) {
		scheme, token, found := strings.Cut(c.GetHeader("Authorization"), " ")
		if !found || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			return
		}

		user, err := users.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
			return
		}

		if c.Param("user_id") != strconv.FormatUint(uint64(user.ID), 10) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Not permitted for this user"})
			return
		}
		c.Next()
	}
}
