package ports

import (
	"context"

	"github.com/adboard/board-api/internal/core/domain"
)

// UserRepository persists identities.
type UserRepository interface {
	// Create inserts user and returns the stored row. Returns domain.ErrUserExists
	// when the username is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindByUsername is an exact, case-sensitive lookup.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// Update overwrites every mutable column of user, keyed by ID.
	Update(ctx context.Context, user *domain.User) error
	// Delete removes the identity and, by cascade, everything it authored.
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*domain.User, error)
}

// ListAdvertisementsFilter carries the query parameters for listing advertisements.
type ListAdvertisementsFilter struct {
	Group    domain.Group // empty = any group
	AuthorID int64        // 0 = any author
	Page     int          // 1-based
	Limit    int          // <= 0 = no limit
}

// AdvertisementRepository persists advertisements.
type AdvertisementRepository interface {
	Create(ctx context.Context, adv *domain.Advertisement) error
	FindByID(ctx context.Context, id int64) (*domain.Advertisement, error)
	// List returns a page of advertisements matching filter and the total count.
	List(ctx context.Context, filter ListAdvertisementsFilter) ([]*domain.Advertisement, int64, error)
	Update(ctx context.Context, adv *domain.Advertisement) error
	// Delete removes the advertisement and its comments.
	Delete(ctx context.Context, id int64) error
}

// CommentRepository persists comments.
type CommentRepository interface {
	Create(ctx context.Context, c *domain.Comment) error
	FindByID(ctx context.Context, id int64) (*domain.Comment, error)
	ListByAdvertisement(ctx context.Context, advertisementID int64) ([]*domain.Comment, error)
	Update(ctx context.Context, c *domain.Comment) error
	Delete(ctx context.Context, id int64) error
}

// Repositories groups the repositories bound to one connection or transaction.
type Repositories interface {
	Users() UserRepository
	Advertisements() AdvertisementRepository
	Comments() CommentRepository
}

// Store is the datastore as seen by the services. Reads go through the
// embedded Repositories; every read-modify-write goes through WithinTx, which
// commits when fn returns nil and rolls back otherwise.
type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error
	Ping(ctx context.Context) error
}
