// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Identity represents the resolved principal for a request. Authentication
// itself happens upstream; the core only consumes this resolved fact.
type Identity interface {
	// PrincipalID returns the authenticated principal's ID.
	PrincipalID() uuid.UUID
	// IsAuthenticated returns true if the principal is authenticated.
	IsAuthenticated() bool
}

type identity struct {
	principalID   uuid.UUID
	authenticated bool
}

func (i *identity) PrincipalID() uuid.UUID {
	return i.principalID
}

func (i *identity) IsAuthenticated() bool {
	return i.authenticated
}

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if principal info is not present.
func GetIdentity(c *gin.Context) Identity {
	principalID, ok := c.Get(ContextPrincipalIDKey)
	if !ok {
		return &identity{authenticated: false}
	}

	pid, ok := principalID.(uuid.UUID)
	if !ok {
		return &identity{authenticated: false}
	}

	return &identity{principalID: pid, authenticated: true}
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the principal is not authenticated, it aborts with 401 Unauthorized
// and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return id
}
