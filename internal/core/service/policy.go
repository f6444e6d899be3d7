package service

import "github.com/adboard/board-api/internal/core/domain"

// RequireRole fails with domain.ErrForbidden unless identity holds exactly one
// of the allowed roles.
func RequireRole(identity *domain.User, allowed ...domain.Role) error {
	if identity == nil {
		return domain.ErrForbidden
	}
	for _, r := range allowed {
		if identity.Role == r {
			return nil
		}
	}
	return domain.ErrForbidden
}

// RequireOwnerOrAdmin fails with domain.ErrForbidden unless identity authored
// resource or is an administrator. Apply it before any mutation of an Ownable.
func RequireOwnerOrAdmin(resource domain.Ownable, identity *domain.User) error {
	if identity == nil || resource == nil {
		return domain.ErrForbidden
	}
	if resource.AuthorID() == identity.ID || identity.Role == domain.RoleAdmin {
		return nil
	}
	return domain.ErrForbidden
}
