package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/adboard/board-api/internal/core/domain"
	"github.com/adboard/board-api/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100

	minTitleLen = 3
	maxTitleLen = 50
	maxBodyLen  = 2500
)

// AdvertisementService implements advertisement CRUD. Mutations are limited
// to the author or an administrator.
type AdvertisementService struct {
	store ports.Store
	// idem may be nil, in which case Idempotency-Key is ignored.
	idem ports.IdempotencyStore
	log  zerolog.Logger
}

func NewAdvertisementService(store ports.Store, idem ports.IdempotencyStore, log zerolog.Logger) *AdvertisementService {
	return &AdvertisementService{store: store, idem: idem, log: log}
}

func (s *AdvertisementService) List(ctx context.Context, input ports.ListAdvertisementsInput) (*ports.ListAdvertisementsResult, error) {
	group := domain.Group(input.Group)
	if group != "" && !group.Valid() {
		return nil, fmt.Errorf("%w: unknown group %q", domain.ErrInvalidInput, input.Group)
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	items, total, err := s.store.Advertisements().List(ctx, ports.ListAdvertisementsFilter{
		Group: group,
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list advertisements: %w", err)
	}

	return &ports.ListAdvertisementsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

func (s *AdvertisementService) Get(ctx context.Context, id int64) (*domain.Advertisement, error) {
	return s.store.Advertisements().FindByID(ctx, id)
}

// Create posts a new advertisement authored by identity. When an idempotency
// key is given and was already used by the same author, the earlier
// advertisement is returned without side effects.
func (s *AdvertisementService) Create(ctx context.Context, identity *domain.User, input ports.CreateAdvertisementInput) (*ports.CreateAdvertisementResult, error) {
	if input.Group == "" {
		input.Group = domain.GroupSell
	}
	if err := validateAdvertisement(input.Title, input.Body, input.Group); err != nil {
		return nil, err
	}

	scope := idempotencyScope(identity)
	existing, reserved, err := s.claim(ctx, scope, input.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &ports.CreateAdvertisementResult{Advertisement: existing, AlreadyExisted: true}, nil
	}

	now := time.Now().UTC()
	adv := &domain.Advertisement{
		Title:     input.Title,
		Body:      input.Body,
		Group:     input.Group,
		IsActive:  true,
		Author:    identity.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Repositories) error {
		return tx.Advertisements().Create(ctx, adv)
	})
	if err != nil {
		s.log.Error().Err(err).Int64("author_id", identity.ID).Msg("failed to create advertisement")
		if reserved {
			if rerr := s.idem.Release(ctx, scope, input.IdempotencyKey); rerr != nil {
				s.log.Warn().Err(rerr).Str("idempotency_key", input.IdempotencyKey).Msg("failed to release idempotency key")
			}
		}
		return nil, err
	}

	if reserved {
		if err := s.idem.Complete(ctx, scope, input.IdempotencyKey, adv.ID); err != nil {
			s.log.Warn().Err(err).Str("idempotency_key", input.IdempotencyKey).Msg("failed to store idempotency key")
		}
	}

	s.log.Info().Int64("advertisement_id", adv.ID).Int64("author_id", identity.ID).Msg("advertisement created")
	return &ports.CreateAdvertisementResult{Advertisement: adv}, nil
}

func (s *AdvertisementService) Update(ctx context.Context, identity *domain.User, id int64, input ports.UpdateAdvertisementInput) (*domain.Advertisement, error) {
	var updated *domain.Advertisement
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Repositories) error {
		adv, err := tx.Advertisements().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := RequireOwnerOrAdmin(adv, identity); err != nil {
			return err
		}
		if input.Title != nil {
			adv.Title = *input.Title
		}
		if input.Body != nil {
			adv.Body = *input.Body
		}
		if input.Group != nil {
			adv.Group = *input.Group
		}
		if input.IsActive != nil {
			adv.IsActive = *input.IsActive
		}
		if err := validateAdvertisement(adv.Title, adv.Body, adv.Group); err != nil {
			return err
		}
		adv.UpdatedAt = time.Now().UTC()
		if err := tx.Advertisements().Update(ctx, adv); err != nil {
			return err
		}
		updated = adv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes the advertisement and its comments, returning what was deleted.
func (s *AdvertisementService) Delete(ctx context.Context, identity *domain.User, id int64) (*domain.Advertisement, error) {
	var deleted *domain.Advertisement
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Repositories) error {
		adv, err := tx.Advertisements().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := RequireOwnerOrAdmin(adv, identity); err != nil {
			return err
		}
		if err := tx.Advertisements().Delete(ctx, adv.ID); err != nil {
			return err
		}
		deleted = adv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("advertisement_id", id).Str("by", identity.Username).Msg("advertisement deleted")
	return deleted, nil
}

// claim reserves key for a new advertisement, or returns the advertisement
// the key already produced. A store outage is logged and the key ignored.
// When the recorded advertisement has been deleted the key is taken over.
func (s *AdvertisementService) claim(ctx context.Context, scope, key string) (*domain.Advertisement, bool, error) {
	if key == "" || s.idem == nil {
		return nil, false, nil
	}
	id, reserved, err := s.idem.Reserve(ctx, scope, key)
	switch {
	case errors.Is(err, domain.ErrIdempotencyInProgress):
		return nil, false, err
	case err != nil:
		s.log.Warn().Err(err).Str("idempotency_key", key).Msg("idempotency store unavailable, creating anyway")
		return nil, false, nil
	case reserved:
		return nil, true, nil
	}

	adv, err := s.store.Advertisements().FindByID(ctx, id)
	if errors.Is(err, domain.ErrAdvertisementNotFound) {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("idempotent replay: %w", err)
	}
	s.log.Info().Str("idempotency_key", key).Int64("advertisement_id", adv.ID).Msg("idempotent replay")
	return adv, false, nil
}

func idempotencyScope(identity *domain.User) string {
	return "adv:" + strconv.FormatInt(identity.ID, 10)
}

func validateAdvertisement(title, body string, group domain.Group) error {
	if n := len([]rune(title)); n < minTitleLen || n > maxTitleLen {
		return fmt.Errorf("%w: title must be %d to %d characters", domain.ErrInvalidInput, minTitleLen, maxTitleLen)
	}
	if len([]rune(body)) > maxBodyLen {
		return fmt.Errorf("%w: body must be at most %d characters", domain.ErrInvalidInput, maxBodyLen)
	}
	if !group.Valid() {
		return fmt.Errorf("%w: unknown group %q", domain.ErrInvalidInput, group)
	}
	return nil
}
