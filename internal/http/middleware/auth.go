package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mustafa2080/tourism-API/internal/domain"
	"github.com/mustafa2080/tourism-API/internal/domain/models"
)

const (
	userKey           = "auth_user"
	AccessTokenCookie = "accessToken"
)

// Authenticator resolves an access token to an active user.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (models.User, error)
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if v, err := c.Cookie(AccessTokenCookie); err == nil {
		return v
	}
	return ""
}

func setUser(c *gin.Context, u models.User) {
	c.Set(userKey, u)
	rc := domain.RequestContextFrom(c.Request.Context())
	rc.UserID = u.ID
	rc.Role = u.Role
	c.Request = c.Request.WithContext(domain.WithRequestContext(c.Request.Context(), rc))
}

// Authenticate rejects requests without a valid access token.
func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortWithError(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		u, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if domain.IsUnauthorized(err) {
				abortWithError(c, http.StatusUnauthorized, err.Error())
				return
			}
			abortWithError(c, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		setUser(c, u)
		c.Next()
	}
}

// OptionalAuth attaches the user when a valid token is present and ignores
// anything else.
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if u, err := auth.Authenticate(c.Request.Context(), token); err == nil {
				setUser(c, u)
			}
		}
		c.Next()
	}
}

// Authorize must run after Authenticate.
func Authorize(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		for _, r := range roles {
			if u.Role == r {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, "Insufficient permissions")
	}
}

func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return models.User{}, false
	}
	u, ok := v.(models.User)
	return u, ok
}

func UserID(c *gin.Context) string {
	u, _ := CurrentUser(c)
	return u.ID
}

// Actor is the request context of the current caller.
func Actor(c *gin.Context) domain.RequestContext {
	return domain.RequestContextFrom(c.Request.Context())
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success":    false,
		"error":      gin.H{"message": message},
		"request_id": GetRequestID(c),
	})
}
