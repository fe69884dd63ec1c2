package tenants

import (
	"lead_outcomes_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Resolver returns middleware that resolves the :tenantSlug path segment
// into a tenant id on the request context. Unknown slugs abort with 404 so
// the URL space never confirms which tenants exist.
func Resolver(repo *Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant, err := repo.ResolveBySlug(c.Request.Context(), c.Param("tenantSlug"))
		if err != nil {
			httpkit.HandleError(c, err)
			c.Abort()
			return
		}

		c.Set(ContextTenantIDKey, tenant.ID)
		c.Next()
	}
}
