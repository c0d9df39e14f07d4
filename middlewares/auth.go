package middlewares

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"stellargather/utils"
)

// Context keys set by Authenticate.
const (
	CtxUserID  = "userId"
	CtxEmail   = "email"
	CtxIsAdmin = "isAdmin"
)

// Authenticate reads the token from the Authorization header, with or
// without a "Bearer " prefix, and stores the identity in the context.
func Authenticate(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader("Authorization"))
		token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authorized."})
			return
		}

		id, err := tokens.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authorized."})
			return
		}

		c.Set(CtxUserID, id.UserID)
		c.Set(CtxEmail, id.Email)
		c.Set(CtxIsAdmin, id.IsAdmin)
		c.Next()
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin(c *gin.Context) {
	if !c.GetBool(CtxIsAdmin) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Admin privileges required."})
		return
	}
	c.Next()
}

// RequireSelfOrAdmin must run after Authenticate. It lets the request through
// when the caller is an admin or owns the user id in the named path param.
func RequireSelfOrAdmin(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool(CtxIsAdmin) {
			c.Next()
			return
		}
		id, err := strconv.ParseInt(c.Param(param), 10, 64)
		if err != nil || id != c.GetInt64(CtxUserID) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "You can only change your own account."})
			return
		}
		c.Next()
	}
}
