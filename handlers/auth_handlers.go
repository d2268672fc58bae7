// api/handlers/auth_handlers.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfolio/api/middleware"
	"portfolio/api/models"
	"portfolio/api/utils"
)

type AuthHandlers struct {
	Guard        *utils.AdminGuard
	Tokens       *utils.TokenIssuer
	Logger       *zap.Logger
	SecureCookie bool
}

func NewAuthHandlers(guard *utils.AdminGuard, tokens *utils.TokenIssuer, logger *zap.Logger, secureCookie bool) *AuthHandlers {
	return &AuthHandlers{Guard: guard, Tokens: tokens, Logger: logger, SecureCookie: secureCookie}
}

// Login exchanges the admin password for a signed token, returned in the
// body and as an HttpOnly cookie.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if !h.Guard.Check(req.Password) {
		h.Logger.Info("admin login failed", zap.String("client_ip", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokenString, expiresAt, err := h.Tokens.GenerateJWT()
	if err != nil {
		h.Logger.Error("failed to generate admin token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		middleware.AdminTokenCookie,
		tokenString,
		int(time.Until(expiresAt)/time.Second),
		"/",
		"",
		h.SecureCookie,
		true,
	)

	h.Logger.Info("admin logged in", zap.String("client_ip", c.ClientIP()))
	c.JSON(http.StatusOK, models.LoginResponse{Token: tokenString, ExpiresAt: expiresAt})
}

func (h *AuthHandlers) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		middleware.AdminTokenCookie,
		"",
		-1,
		"/",
		"",
		h.SecureCookie,
		true,
	)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
