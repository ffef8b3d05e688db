package auth

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CookieName is the session cookie holding the signed token.
const CookieName = "jwt"

const userIDKey = "auth_user_id"

// RequireAuth validates the session cookie and stores the user id in the
// request context. Absent or invalid tokens get a 401.
func RequireAuth(jwtService *JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "authentication required"})
			return
		}

		claims, err := jwtService.ValidateToken(token)
		if err != nil {
			log.Printf("auth: invalid token from %s: %v", c.ClientIP(), err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid token"})
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// UserID returns the authenticated user id set by RequireAuth.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
