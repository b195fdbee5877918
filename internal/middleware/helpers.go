package middleware

import (
	"artisanal-futures/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// GetUserID returns the authenticated user id.
func GetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxUserID)
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// GetEmail returns the authenticated user's email.
func GetEmail(c *gin.Context) string {
	email, _ := c.Get(ctxEmail)
	s, _ := email.(string)
	return s
}

// GetRoles gets user roles from context
func GetRoles(c *gin.Context) []string {
	roles, exists := c.Get(ctxRoles)
	if !exists {
		return []string{}
	}

	rolesList, ok := roles.([]string)
	if !ok {
		return []string{}
	}

	return rolesList
}

func HasRole(c *gin.Context, role string) bool {
	for _, r := range GetRoles(c) {
		if r == role {
			return true
		}
	}
	return false
}

func IsAuthenticated(c *gin.Context) bool {
	_, ok := GetUserID(c)
	return ok
}

func IsAdmin(c *gin.Context) bool {
	return HasRole(c, jwt.RoleAdmin)
}

// MustGetUserID panics when called outside Auth.
func MustGetUserID(c *gin.Context) string {
	id, ok := GetUserID(c)
	if !ok {
		panic("user_id not found in context")
	}
	return id
}
