package middleware

import (
	"errors"
	"net/http"

	"shift-tracker/internal/auth"
	"shift-tracker/internal/models"
	"shift-tracker/internal/util"

	"github.com/gin-gonic/gin"
)

// Session resolves the session cookie and puts the current user into the
// context. Missing, expired and revoked tokens all read as unauthenticated.
func Session(sessions *auth.SessionAuthority, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(cookieName)

		user, err := sessions.Resolve(token)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				util.Error(c, http.StatusUnauthorized, "not authenticated")
			} else {
				util.Error(c, http.StatusInternalServerError, "failed to resolve session")
			}
			c.Abort()
			return
		}

		c.Set("currentUser", user)
		c.Set("sessionToken", token)
		c.Next()
	}
}

// RequireAdmin gates a route behind the administrative check. It must run
// after Session.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			util.Error(c, http.StatusUnauthorized, "not authenticated")
			c.Abort()
			return
		}
		if !auth.IsAdministrative(user.Role) {
			util.Error(c, http.StatusForbidden, "access denied")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user placed in the context by Session, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get("currentUser")
	if !ok {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}
