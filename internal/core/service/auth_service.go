package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/adboard/board-api/internal/core/domain"
	"github.com/adboard/board-api/internal/core/ports"
)

// DefaultTokenTTL is used when no positive lifetime is configured.
const DefaultTokenTTL = 30 * time.Minute

const (
	minUsernameLen = 3
	maxUsernameLen = 25
	// bcrypt rejects longer input
	maxPasswordBytes = 72
)

// AuthService implements registration, login and bearer-token resolution.
type AuthService struct {
	store    ports.Store
	hasher   ports.PasswordHasher
	tokens   ports.TokenManager
	tokenTTL time.Duration
	log      zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(store ports.Store, hasher ports.PasswordHasher, tokens ports.TokenManager, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &AuthService{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		log:      log,
	}
}

// Register creates an active USER account.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.store.Users().Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

// Authenticate checks username and password. Unknown users and wrong
// passwords both yield domain.ErrInvalidCredentials, and both pay for one
// hash comparison. The active flag is not checked here.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.store.Users().FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.compareDummy(password)
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("authenticate %q: %w", username, err)
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and issues a bearer token. Inactive accounts never
// receive a token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.AccessToken, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrInactiveAccount
	}

	token, expiresAt, err := s.tokens.Issue(user.Username, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	s.log.Debug().Str("username", user.Username).Time("expires_at", expiresAt).Msg("token issued")
	return &ports.AccessToken{
		AccessToken: token,
		TokenType:   ports.TokenTypeBearer,
		ExpiresAt:   expiresAt,
	}, nil
}

// ResolveCurrentIdentity verifies token and loads its subject. It re-reads the
// account on every call, so deactivation applies to tokens already issued.
func (s *AuthService) ResolveCurrentIdentity(ctx context.Context, token string) (*domain.User, error) {
	subject, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.store.Users().FindByUsername(ctx, subject)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrUnknownSubject
	}
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	if !user.IsActive {
		return nil, domain.ErrInactiveAccount
	}
	return user, nil
}

func (s *AuthService) compareDummy(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash("dummy-password-for-timing")
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to prepare dummy hash")
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}

func validateCredentials(username, password string) error {
	if err := validateUsername(username); err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}
	return validatePasswordLen(password)
}

func validateUsername(username string) error {
	if n := utf8.RuneCountInString(username); n < minUsernameLen || n > maxUsernameLen {
		return fmt.Errorf("%w: username must be %d to %d characters", domain.ErrInvalidInput, minUsernameLen, maxUsernameLen)
	}
	return nil
}

func validatePasswordLen(password string) error {
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidInput, maxPasswordBytes)
	}
	return nil
}
