// Package tenants provides the tenant registry: slug resolution and the
// middleware that pins every downstream call to one resolved tenant.
// All other modules receive the tenant id from here and must scope every
// query by it.
package tenants

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextTenantIDKey is the gin context key for the resolved tenant ID.
const ContextTenantIDKey = "tenantID"

// Tenant is an operator account owning all other entities.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// GetTenantID extracts the resolved tenant id from a Gin context.
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	value, ok := c.Get(ContextTenantIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}

// MustGetTenantID extracts the resolved tenant id or aborts with 404.
// The resolver middleware always sets it; a miss means the route was
// mounted outside the tenant group.
func MustGetTenantID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := GetTenantID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "tenant not resolved"})
		return uuid.Nil, false
	}
	return id, true
}
