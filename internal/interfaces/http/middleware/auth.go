package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"glycoanalyzer/internal/infrastructure/auth"
	"glycoanalyzer/internal/shared/logger"
	"glycoanalyzer/internal/shared/utils"
)

// ContextKeySessionID is where RequireSession stores the verified session ID.
const ContextKeySessionID = "session_id"

type AuthMiddleware struct {
	jwtService *auth.JWTService
	logger     logger.Interface
}

func NewAuthMiddleware(jwtService *auth.JWTService, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		logger:     logger,
	}
}

// RequireSession verifies the bearer token and exposes the session ID to
// handlers. Token validity does not guarantee the session still exists; the
// registry decides that.
func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := m.jwtService.Verify(parts[1])
		if err != nil {
			m.logger.Warnw("failed to verify token", "error", err)
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextKeySessionID, claims.SessionID)
		c.Set("email", claims.Email)

		c.Next()
	}
}

// SessionID reads the session ID placed by RequireSession.
func SessionID(c *gin.Context) string {
	return c.GetString(ContextKeySessionID)
}
