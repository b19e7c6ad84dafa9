package router

import (
	"crypto/subtle"
	"net/http"

	"github.com/akeren/trustlink-waitlist/pkg/constants"
)

// AdminKeyMiddleware rejects requests whose x-admin-key header does not equal
// secret. An empty secret rejects everything.
func (routerService *RouterService) AdminKeyMiddleware(secret string) MiddlewareFunc {
	expected := []byte(secret)

	return func(c *RequestContext) {
		provided := c.GetHeader(constants.AdminKeyHeader)

		if secret == "" || provided == "" || subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
			GetLogger(c).Warn("Admin request rejected", "path", c.Request.URL.Path, "key_present", provided != "")
			c.AbortWithStatusJSON(http.StatusUnauthorized, UnauthorizedResult("Unauthorized").ToJSON())
			return
		}

		c.Next()
	}
}
