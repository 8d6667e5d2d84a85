package middleware

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/academic-dashboard/pkg/errors"
	"github.com/noah-isme/academic-dashboard/pkg/response"
)

// RequireGroup admits callers belonging to at least one of the groups.
func RequireGroup(groups ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}
		for _, g := range groups {
			if claims.HasGroup(g) {
				c.Next()
				return
			}
		}
		response.Abort(c, appErrors.ErrForbidden)
	}
}

// RequireStaff admits staff users only.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}
		if !claims.IsStaff {
			response.Abort(c, appErrors.ErrForbidden)
			return
		}
		c.Next()
	}
}
