package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/complaint-desk-api/internal/models"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
	"github.com/noah-isme/complaint-desk-api/pkg/response"
)

// selfRule grants access when the named path parameter equals the caller's user id.
// "SELF" alone checks the "id" parameter; "SELF:agentId" checks "agentId".
const selfRule = "SELF"

// RBAC enforces user-type access control for routes.
func RBAC(allowed ...string) gin.HandlerFunc {
	allowedTypes := make(map[models.UserType]struct{})
	var selfParams []string
	for _, a := range allowed {
		if a == selfRule {
			selfParams = append(selfParams, "id")
			continue
		}
		if param, ok := strings.CutPrefix(a, selfRule+":"); ok {
			selfParams = append(selfParams, param)
			continue
		}
		allowedTypes[models.UserType(a)] = struct{}{}
	}

	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowedTypes[claims.UserType]; ok {
			c.Next()
			return
		}

		for _, param := range selfParams {
			if targetID := c.Param(param); targetID != "" && targetID == claims.UserID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireUserTypes is a helper that accepts a list of user types.
func RequireUserTypes(types ...models.UserType) gin.HandlerFunc {
	allowed := make([]string, len(types))
	for i, t := range types {
		allowed[i] = string(t)
	}
	return RBAC(allowed...)
}

// AdminOrSelf allows admins and the user identified by the param path parameter.
func AdminOrSelf(param string) gin.HandlerFunc {
	return RBAC(string(models.UserTypeAdmin), selfRule+":"+param)
}
