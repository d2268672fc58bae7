package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio/api/utils"
)

const (
	AdminPasswordHeader = "X-Admin-Password"
	AdminTokenCookie    = "admin_token"
)

// AdminRequired lets a request through when it carries the admin password
// header or a valid admin token (bearer header or cookie). Failures all
// get the same response.
func AdminRequired(guard *utils.AdminGuard, tokens *utils.TokenIssuer, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if password := c.GetHeader(AdminPasswordHeader); password != "" {
			if guard.Check(password) {
				c.Set("auth_method", "password")
				c.Next()
				return
			}
			deny(c, logger, "password")
			return
		}

		tokenString := utils.BearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			if cookie, err := c.Cookie(AdminTokenCookie); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" || tokens == nil {
			deny(c, logger, "missing")
			return
		}
		if _, err := tokens.ValidateJWT(tokenString); err != nil {
			deny(c, logger, "token")
			return
		}

		c.Set("auth_method", "token")
		c.Next()
	}
}

func deny(c *gin.Context, logger *zap.Logger, method string) {
	logger.Info("admin access denied",
		zap.String("path", c.FullPath()),
		zap.String("method", method),
		zap.String("client_ip", c.ClientIP()),
	)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
}
