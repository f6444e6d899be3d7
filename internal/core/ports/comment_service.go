package ports

import (
	"context"

	"github.com/adboard/board-api/internal/core/domain"
)

type CommentService interface {
	List(ctx context.Context, advertisementID int64) ([]*domain.Comment, error)
	Create(ctx context.Context, identity *domain.User, advertisementID int64, body string) (*domain.Comment, error)
	Update(ctx context.Context, identity *domain.User, advertisementID, commentID int64, body string) (*domain.Comment, error)
	Delete(ctx context.Context, identity *domain.User, advertisementID, commentID int64) (*domain.Comment, error)
}
