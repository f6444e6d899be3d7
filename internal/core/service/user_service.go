package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/adboard/board-api/internal/core/domain"
	"github.com/adboard/board-api/internal/core/ports"
)

const (
	maxFullnameLen = 50
	maxEmailLen    = 50
)

// UserService implements self-service profile operations and administrator
// account management.
type UserService struct {
	store  ports.Store
	hasher ports.PasswordHasher
	log    zerolog.Logger
}

func NewUserService(store ports.Store, hasher ports.PasswordHasher, log zerolog.Logger) *UserService {
	return &UserService{store: store, hasher: hasher, log: log}
}

func (s *UserService) Profile(ctx context.Context, identity *domain.User) (*ports.Profile, error) {
	ads, _, err := s.store.Advertisements().List(ctx, ports.ListAdvertisementsFilter{AuthorID: identity.ID})
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	return &ports.Profile{User: identity, Advertisements: ads}, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, identity *domain.User, input ports.UpdateProfileInput) (*domain.User, error) {
	if err := validateProfile(input); err != nil {
		return nil, err
	}

	var hash string
	if input.Password != nil {
		h, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		hash = h
	}

	var updated *domain.User
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Repositories) error {
		user, err := tx.Users().FindByUsername(ctx, identity.Username)
		if err != nil {
			return err
		}
		if input.Username != nil {
			user.Username = *input.Username
		}
		if hash != "" {
			user.PasswordHash = hash
		}
		if input.Fullname != nil {
			user.Fullname = *input.Fullname
		}
		if input.Email != nil {
			user.Email = *input.Email
		}
		user.UpdatedAt = time.Now().UTC()
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", updated.ID).Msg("profile updated")
	return updated, nil
}

// DeleteAccount removes the caller together with everything they authored.
func (s *UserService) DeleteAccount(ctx context.Context, identity *domain.User) error {
	return s.deleteByUsername(ctx, identity.Username)
}

func (s *UserService) List(ctx context.Context, identity *domain.User) ([]*domain.User, error) {
	if err := RequireRole(identity, domain.RoleAdmin, domain.RoleModerator); err != nil {
		return nil, err
	}
	return s.store.Users().List(ctx)
}

// AdminUpdate changes role and/or active flag of another account.
func (s *UserService) AdminUpdate(ctx context.Context, identity *domain.User, username string, input ports.AdminUpdateInput) (*domain.User, error) {
	if err := RequireRole(identity, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if input.Role != nil && !input.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, *input.Role)
	}

	var updated *domain.User
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Repositories) error {
		user, err := tx.Users().FindByUsername(ctx, username)
		if err != nil {
			return err
		}
		if input.Role != nil {
			user.Role = *input.Role
		}
		if input.IsActive != nil {
			user.IsActive = *input.IsActive
		}
		user.UpdatedAt = time.Now().UTC()
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("admin", identity.Username).
		Str("username", updated.Username).
		Str("role", string(updated.Role)).
		Bool("is_active", updated.IsActive).
		Msg("account updated by admin")
	return updated, nil
}

func (s *UserService) AdminDelete(ctx context.Context, identity *domain.User, username string) error {
	if err := RequireRole(identity, domain.RoleAdmin); err != nil {
		return err
	}
	return s.deleteByUsername(ctx, username)
}

func (s *UserService) deleteByUsername(ctx context.Context, username string) error {
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Repositories) error {
		user, err := tx.Users().FindByUsername(ctx, username)
		if err != nil {
			return err
		}
		return tx.Users().Delete(ctx, user.ID)
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("username", username).Msg("account deleted")
	return nil
}

func validateProfile(in ports.UpdateProfileInput) error {
	if in.Username != nil {
		if err := validateUsername(*in.Username); err != nil {
			return err
		}
	}
	if in.Password != nil {
		if *in.Password == "" {
			return fmt.Errorf("%w: password must not be empty", domain.ErrInvalidInput)
		}
		if err := validatePasswordLen(*in.Password); err != nil {
			return err
		}
	}
	if in.Fullname != nil && utf8.RuneCountInString(*in.Fullname) > maxFullnameLen {
		return fmt.Errorf("%w: fullname must be at most %d characters", domain.ErrInvalidInput, maxFullnameLen)
	}
	if in.Email != nil && utf8.RuneCountInString(*in.Email) > maxEmailLen {
		return fmt.Errorf("%w: email must be at most %d characters", domain.ErrInvalidInput, maxEmailLen)
	}
	return nil
}
