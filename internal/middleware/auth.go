package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/therealutkarshpriyadarshi/streamtube/internal/auth"
	"github.com/therealutkarshpriyadarshi/streamtube/internal/response"
)

const (
	AuthContextKey     = "user_id"
	UsernameContextKey = "username"
)

// JWTAuth validates the access token from the accessToken cookie or the
// Authorization header and stores the caller's identity in the context.
func JWTAuth(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractAccessToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization required"})
			c.Abort()
			return
		}

		claims, err := tokens.VerifyAccess(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(AuthContextKey, claims.UserID)
		c.Set(UsernameContextKey, claims.Username)
		c.Next()
	}
}

// OptionalAuth resolves the identity when a valid access token is present
// but lets anonymous requests through. Used by endpoints like the channel
// profile where the viewer identity only refines the response.
func OptionalAuth(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractAccessToken(c)
		if tokenString != "" {
			if claims, err := tokens.VerifyAccess(tokenString); err == nil {
				c.Set(AuthContextKey, claims.UserID)
				c.Set(UsernameContextKey, claims.Username)
			}
		}
		c.Next()
	}
}

// extractAccessToken looks in the cookie first, then in "Bearer <token>".
func extractAccessToken(c *gin.Context) string {
	if cookie, err := c.Cookie(response.AccessTokenCookie); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}

	return ""
}

// GetUserID retrieves the user ID from the context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(AuthContextKey)
	if !exists {
		return "", false
	}

	userIDStr, ok := userID.(string)
	return userIDStr, ok
}
