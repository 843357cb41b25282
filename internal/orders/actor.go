package orders

import (
	"github.com/google/uuid"

	"github.com/example/bazaar/internal/models"
)

// Actor is the caller identity every workflow operation is validated
// against. Handlers build it from the authenticated request context.
type Actor struct {
	ID   uuid.UUID
	Role models.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

func (a Actor) IsSeller() bool {
	return a.Role == models.RoleSeller
}

func (a Actor) IsCustomer() bool {
	return a.Role == models.RoleCustomer
}
