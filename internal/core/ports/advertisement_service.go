package ports

import (
	"context"

	"github.com/adboard/board-api/internal/core/domain"
)

// ListAdvertisementsInput carries all parameters for the list endpoint.
type ListAdvertisementsInput struct {
	Group string
	Page  int
	Limit int
}

// ListAdvertisementsResult is returned by AdvertisementService.List.
type ListAdvertisementsResult struct {
	Items      []*domain.Advertisement
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// CreateAdvertisementInput carries the data needed to post an advertisement.
type CreateAdvertisementInput struct {
	Title          string
	Body           string
	Group          domain.Group
	IdempotencyKey string
}

// CreateAdvertisementResult wraps the created advertisement.
type CreateAdvertisementResult struct {
	Advertisement *domain.Advertisement
	// AlreadyExisted is true when the Idempotency-Key matched an earlier request.
	AlreadyExisted bool
}

// UpdateAdvertisementInput carries partial changes. Nil fields are left untouched.
type UpdateAdvertisementInput struct {
	Title    *string
	Body     *string
	Group    *domain.Group
	IsActive *bool
}

type AdvertisementService interface {
	List(ctx context.Context, input ListAdvertisementsInput) (*ListAdvertisementsResult, error)
	Get(ctx context.Context, id int64) (*domain.Advertisement, error)
	Create(ctx context.Context, identity *domain.User, input CreateAdvertisementInput) (*CreateAdvertisementResult, error)
	Update(ctx context.Context, identity *domain.User, id int64, input UpdateAdvertisementInput) (*domain.Advertisement, error)
	Delete(ctx context.Context, identity *domain.User, id int64) (*domain.Advertisement, error)
}

// IdempotencyStore remembers which advertisement a client-supplied key produced.
//
// Reserve claims an unused key and reports reserved=true. For a key that
// already produced an advertisement it returns that id with reserved=false.
// A key claimed by a request that has not finished yields
// domain.ErrIdempotencyInProgress. A reservation ends with Complete after the
// advertisement is committed, or with Release when creation failed.
type IdempotencyStore interface {
	Reserve(ctx context.Context, scope, key string) (id int64, reserved bool, err error)
	Complete(ctx context.Context, scope, key string, id int64) error
	Release(ctx context.Context, scope, key string) error
}
