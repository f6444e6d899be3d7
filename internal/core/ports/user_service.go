package ports

import (
	"context"

	"github.com/adboard/board-api/internal/core/domain"
)

// Profile is the caller's own account together with what they have posted.
type Profile struct {
	User           *domain.User
	Advertisements []*domain.Advertisement
}

// UpdateProfileInput carries self-service changes. Nil fields are left untouched.
type UpdateProfileInput struct {
	Username *string
	Password *string
	Fullname *string
	Email    *string
}

// AdminUpdateInput carries administrator-only changes. Nil fields are left untouched.
type AdminUpdateInput struct {
	Role     *domain.Role
	IsActive *bool
}

type UserService interface {
	Profile(ctx context.Context, identity *domain.User) (*Profile, error)
	UpdateProfile(ctx context.Context, identity *domain.User, input UpdateProfileInput) (*domain.User, error)
	DeleteAccount(ctx context.Context, identity *domain.User) error
	List(ctx context.Context, identity *domain.User) ([]*domain.User, error)
	AdminUpdate(ctx context.Context, identity *domain.User, username string, input AdminUpdateInput) (*domain.User, error)
	AdminDelete(ctx context.Context, identity *domain.User, username string) error
}
