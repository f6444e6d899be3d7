package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/adboard/board-api/internal/core/domain"
	"github.com/adboard/board-api/internal/core/ports"
)

const maxCommentLen = 500

// CommentService implements comments on advertisements.
type CommentService struct {
	store ports.Store
	log   zerolog.Logger
}

func NewCommentService(store ports.Store, log zerolog.Logger) *CommentService {
	return &CommentService{store: store, log: log}
}

func (s *CommentService) List(ctx context.Context, advertisementID int64) ([]*domain.Comment, error) {
	if _, err := s.store.Advertisements().FindByID(ctx, advertisementID); err != nil {
		return nil, err
	}
	return s.store.Comments().ListByAdvertisement(ctx, advertisementID)
}

func (s *CommentService) Create(ctx context.Context, identity *domain.User, advertisementID int64, body string) (*domain.Comment, error) {
	if err := validateComment(body); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c := &domain.Comment{
		Body:            body,
		Author:          identity.ID,
		AdvertisementID: advertisementID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Repositories) error {
		if _, err := tx.Advertisements().FindByID(ctx, advertisementID); err != nil {
			return err
		}
		return tx.Comments().Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("comment_id", c.ID).Int64("advertisement_id", advertisementID).Msg("comment created")
	return c, nil
}

func (s *CommentService) Update(ctx context.Context, identity *domain.User, advertisementID, commentID int64, body string) (*domain.Comment, error) {
	if err := validateComment(body); err != nil {
		return nil, err
	}

	var updated *domain.Comment
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Repositories) error {
		c, err := findComment(ctx, tx, advertisementID, commentID)
		if err != nil {
			return err
		}
		if err := RequireOwnerOrAdmin(c, identity); err != nil {
			return err
		}
		c.Body = body
		c.UpdatedAt = time.Now().UTC()
		if err := tx.Comments().Update(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *CommentService) Delete(ctx context.Context, identity *domain.User, advertisementID, commentID int64) (*domain.Comment, error) {
	var deleted *domain.Comment
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Repositories) error {
		c, err := findComment(ctx, tx, advertisementID, commentID)
		if err != nil {
			return err
		}
		if err := RequireOwnerOrAdmin(c, identity); err != nil {
			return err
		}
		if err := tx.Comments().Delete(ctx, c.ID); err != nil {
			return err
		}
		deleted = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("comment_id", commentID).Str("by", identity.Username).Msg("comment deleted")
	return deleted, nil
}

// findComment loads a comment and checks it hangs off advertisementID.
func findComment(ctx context.Context, tx ports.Repositories, advertisementID, commentID int64) (*domain.Comment, error) {
	if _, err := tx.Advertisements().FindByID(ctx, advertisementID); err != nil {
		return nil, err
	}
	c, err := tx.Comments().FindByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if c.AdvertisementID != advertisementID {
		return nil, domain.ErrCommentNotFound
	}
	return c, nil
}

func validateComment(body string) error {
	if n := len([]rune(body)); n < 1 || n > maxCommentLen {
		return fmt.Errorf("%w: body must be 1 to %d characters", domain.ErrInvalidInput, maxCommentLen)
	}
	return nil
}
