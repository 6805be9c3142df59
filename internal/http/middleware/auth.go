// README: Firebase auth middleware; extracts the bearer token and stores the caller UID.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kerb/internal/infra"
)

const ctxKeyUID = "auth.uid"

// Auth verifies the Authorization bearer token and aborts with 401 on any
// failure. The verified UID is the owner identity for every downstream
// handler.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header must be a bearer token"})
			return
		}
		token, err := verifier.VerifyIDToken(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ctxKeyUID, token.UID)
		c.Next()
	}
}

// CallerUID returns the authenticated user's UID, or "" when the request is
// unauthenticated.
func CallerUID(c *gin.Context) string {
	return c.GetString(ctxKeyUID)
}
