package auth

import (
	"strings"

	"github.com/barkshad/Real-estate/internal/models"
)

// RolePolicy derives an actor's role from a verified identity. Swap the
// implementation for one backed by server-validated claims before relying
// on roles for anything sensitive.
type RolePolicy interface {
	Role(identity models.Identity) models.Role
}

// EmailRolePolicy grants the admin role to one configured email address.
//
// Demo only: anyone who can register that address becomes an admin.
type EmailRolePolicy struct {
	AdminEmail  string
	DefaultRole models.Role
}

func (p EmailRolePolicy) Role(identity models.Identity) models.Role {
	if p.AdminEmail != "" && strings.EqualFold(identity.Email, p.AdminEmail) {
		return models.RoleAdmin
	}
	if p.DefaultRole != "" {
		return p.DefaultRole
	}
	return models.RoleBuyer
}

// ActorFor materializes the signed-in actor from an identity
func ActorFor(policy RolePolicy, identity models.Identity) *models.User {
	name := identity.DisplayName
	if name == "" {
		name, _, _ = strings.Cut(identity.Email, "@")
	}
	return &models.User{
		ID:       identity.ID,
		Email:    identity.Email,
		FullName: name,
		Role:     policy.Role(identity),
	}
}
