package middleware

import (
	"gato/Gato-Game/internal/api/response"
	"gato/Gato-Game/internal/api/service"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SessionIDKey is the gin context key holding the authenticated session ID.
const SessionIDKey = "session.id"

// RefreshedTokenHeader carries a newly issued token on every authenticated
// response, so an active player's token lives as long as the session does.
const RefreshedTokenHeader = "X-Session-Token"

// RequireSession rejects requests without a valid bearer token and stores
// the token's session ID in the context.
func RequireSession(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || raw == "" {
			response.AbortWithError(c, http.StatusUnauthorized, "missing bearer token")
			return
		}

		sessionID, err := tokens.Parse(raw)
		if err != nil {
			slog.WarnContext(c.Request.Context(), "Rejected session token", "error", err)
			response.AbortWithError(c, http.StatusUnauthorized, "invalid session token")
			return
		}

		if fresh, err := tokens.Issue(sessionID); err != nil {
			slog.WarnContext(c.Request.Context(), "Failed to refresh session token", "session.id", sessionID, "error", err)
		} else {
			c.Header(RefreshedTokenHeader, fresh)
		}

		c.Set(SessionIDKey, sessionID)
		c.Next()
	}
}

// SessionID returns the session ID stored by RequireSession.
func SessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
